package main

import (
	"context"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	GetAll(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, book Book) (Book, error)
	Update(ctx context.Context, id int, book Book) (Book, error)
	Delete(ctx context.Context, id int) error
	ReplaceAll(ctx context.Context, books []Book) (int, error)
	Backup(ctx context.Context) error
}

// BookService orchestrates the record store and the remote syncer. Each
// mutation updates the local store first then pushes the backing file
// best-effort: a failed push is surfaced in logs as a partial outcome but
// never rolls back the local write nor fails the originating request.
type BookService struct {
	logger  *zap.Logger
	config  *Config
	storage BookStorage
	syncer  Syncer
}

func NewBookService(logger *zap.Logger, config *Config, storage BookStorage, syncer Syncer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		storage: storage,
		syncer:  syncer,
	}
}

// syncUp pushes the backing file after a successful local mutation and
// records the exact outcome: full success or local-only success.
func (bs *BookService) syncUp(ctx context.Context, operation string) {
	if err := bs.syncer.Push(ctx); err != nil {
		bs.logger.Warn("service: local write succeeded but remote push failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return
	}
	bs.logger.Info("service: remote copy updated", zap.String("operation", operation))
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	books, err := bs.storage.GetAll(ctx)
	return books, err
}

func (bs *BookService) Create(ctx context.Context, book Book) (Book, error) {
	book, err := bs.storage.Insert(ctx, book)
	if err != nil {
		return book, err
	}
	bs.syncUp(ctx, "create")
	return book, nil
}

func (bs *BookService) Update(ctx context.Context, id int, book Book) (Book, error) {
	book, err := bs.storage.Update(ctx, id, book)
	if err != nil {
		return book, err
	}
	bs.syncUp(ctx, "update")
	return book, nil
}

func (bs *BookService) Delete(ctx context.Context, id int) error {
	if err := bs.storage.Delete(ctx, id); err != nil {
		return err
	}
	bs.syncUp(ctx, "delete")
	return nil
}

func (bs *BookService) ReplaceAll(ctx context.Context, books []Book) (int, error) {
	if err := bs.storage.ReplaceAll(ctx, books); err != nil {
		return 0, err
	}
	bs.syncUp(ctx, "replace_all")
	return len(books), nil
}

// Backup exports every record as CSV and uploads it next to the remote
// backing file. Unlike per-mutation pushes this path is synchronous and
// its failures reach the caller.
func (bs *BookService) Backup(ctx context.Context) error {
	books, err := bs.storage.GetAll(ctx)
	if err != nil {
		return err
	}
	return bs.syncer.ExportCSV(ctx, books)
}
