package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// GetAllBooks serves the full list of records ordered by identifier.
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		api.logger.Error("failed to get all books", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to get all books"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to get all books", zap.String("request.id", requestID), zap.Int("total", len(books)))
	if err = WriteJSON(w, http.StatusOK, books); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateBook registers a new record and answers with it, identifier included.
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	book := Book{}
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	err := DecodeBookRequestBody(r, &book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusBadRequest, "failed to create the book"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = ValidateBookRequestBody(&book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusBadRequest, err.Error()); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err = api.bookService.Create(r.Context(), book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to create the book"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to create book", zap.Int("book.id", book.ID), zap.String("request.id", requestID))
	if err = WriteJSON(w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// UpdateBook replaces all fields of the record designated by the path identifier.
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var book Book
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil {
		api.logger.Error("book id provided is not valid", zap.String("book.id", ps.ByName("id")), zap.String("request.id", requestID))
		if err = WriteDetail(w, http.StatusBadRequest, "book id provided is not valid"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = DecodeBookRequestBody(r, &book)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusBadRequest, "failed to update the book"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = ValidateBookRequestBody(&book)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusBadRequest, err.Error()); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err = api.bookService.Update(r.Context(), id, book)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist", zap.Int("book.id", id), zap.String("request.id", requestID))
		if err = WriteDetail(w, http.StatusNotFound, "Book not found"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to update book", zap.Int("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to update the book"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to update book", zap.Int("book.id", id), zap.String("request.id", requestID))
	if err = WriteJSON(w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteOneBook removes the record designated by the path identifier then
// renumbers the survivors. It always succeeds: an unknown identifier is a
// no-op followed by the same renumbering.
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil {
		api.logger.Error("book id provided is not valid", zap.String("book.id", ps.ByName("id")), zap.String("request.id", requestID))
		if err = WriteDetail(w, http.StatusBadRequest, "book id provided is not valid"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = api.bookService.Delete(r.Context(), id)
	if err != nil {
		api.logger.Error("failed to delete book", zap.Int("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to delete the book"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to delete book", zap.Int("book.id", id), zap.String("request.id", requestID))
	if err = WriteDetail(w, http.StatusOK, "deleted_and_renumbered"); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// SaveAllBooks discards the whole table and reloads it from the request
// body, assigning fresh sequential identifiers in the given order.
func (api *APIHandler) SaveAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var books []Book
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	err := DecodeBooksListRequestBody(r, &books)
	if err != nil {
		api.logger.Error("failed to save all books", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusBadRequest, "failed to save the books list"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	total, err := api.bookService.ReplaceAll(r.Context(), books)
	if err != nil {
		api.logger.Error("failed to save all books", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to save the books list"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to save all books", zap.Int("total", total), zap.String("request.id", requestID))
	if err = WriteJSON(w, http.StatusOK, map[string]interface{}{"detail": "saved", "total": total}); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// BackupBooks exports the whole table as CSV and uploads it into the Drive
// folder holding the database backing file. This path is synchronous and
// reports upstream failures to the caller, unlike per-mutation pushes.
func (api *APIHandler) BackupBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	err := api.bookService.Backup(r.Context())
	if errors.Is(err, ErrDriveNotConfigured) {
		api.logger.Error("backup requested without drive configuration", zap.String("request.id", requestID))
		if err = WriteDetail(w, http.StatusInternalServerError, ErrDriveNotConfigured.Error()); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to backup books", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to export and upload the backup"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to backup books", zap.String("request.id", requestID))
	if err = WriteJSON(w, http.StatusOK, map[string]interface{}{
		"detail":   "backup_uploaded",
		"filename": api.config.Database.BackupCSV,
	}); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
