package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// newTestRouter wires the full routing with real middleware stacks on top
// of mocked services.
func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	mockRepo := &MockBookStorage{
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{}, nil
		},
		InsertFunc: func(ctx context.Context, book Book) (Book, error) {
			book.ID = 1
			return book, nil
		},
		UpdateFunc: func(ctx context.Context, id int, book Book) (Book, error) {
			book.ID = id
			return book, nil
		},
		DeleteFunc: func(ctx context.Context, id int) error {
			return nil
		},
		ReplaceAllFunc: func(ctx context.Context, books []Book) error {
			return nil
		},
	}
	config := &Config{APIKey: "super-secret"}
	config.Database.BackupCSV = "books_backup.csv"
	bs := NewBookService(zap.NewNop(), config, mockRepo, okSyncer())
	api := NewAPIHandler(zap.NewNop(), config, &Statistics{}, NewMockClocker(),
		NewMockUIDHandler("cb8f2136-fae4-4200-85d9-3533c7f8c70d"), bs,
		&MockEbookService{}, &MockOAuthService{
			BeginFunc: func() (AuthSession, error) { return AuthSession{}, nil },
		})
	open, protected := api.MiddlewaresStacks()
	return api.SetupRoutes(httprouter.New(), &MiddlewareMap{open: open, protected: protected})
}

// TestSetupRoutes ensures all expected endpoints are implemented and that
// every data endpoint sits behind the shared-secret gate.
func TestSetupRoutes(t *testing.T) {
	router := newTestRouter(t)

	testCases := []struct {
		name      string
		method    string
		target    string
		protected bool
	}{
		{"index endpoint", http.MethodGet, "/", false},
		{"status endpoint", http.MethodGet, "/status", false},
		{"fetch all books endpoint", http.MethodGet, "/books", true},
		{"create book endpoint", http.MethodPost, "/books", true},
		{"update book endpoint", http.MethodPut, "/books/1", true},
		{"delete book endpoint", http.MethodDelete, "/books/1", true},
		{"save all endpoint", http.MethodPost, "/save_all", true},
		{"backup endpoint", http.MethodGet, "/backup", true},
		{"upload ebook endpoint", http.MethodPost, "/upload_ebook", true},
		{"oauth start endpoint", http.MethodGet, "/oauth_start", true},
		{"oauth finish endpoint", http.MethodGet, "/oauth_finish", true},
	}

	t.Run("without api key", func(t *testing.T) {
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.target, nil))
				if tc.protected {
					assert.Equal(t, http.StatusUnauthorized, w.Code)
					assert.JSONEq(t, `{"detail":"Invalid API key"}`, w.Body.String())
				} else {
					assert.NotEqual(t, http.StatusUnauthorized, w.Code)
					assert.NotEqual(t, http.StatusNotFound, w.Code)
				}
			})
		}
	})

	t.Run("with api key", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("X-API-Key", "super-secret")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("index redirects to status", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/status", w.Header().Get("Location"))
	})

	t.Run("unknown path gets a detail body", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"resource does not exist"}`, w.Body.String())
	})
}

// TestSetupOpsRoutes ensures ops endpoints show up only when enabled.
func TestSetupOpsRoutes(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		router := newTestRouter(t)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ops/stats", nil)
		req.Header.Set("X-API-Key", "super-secret")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("served once enabled", func(t *testing.T) {
		config := &Config{APIKey: "super-secret", OpsEndpointsEnable: true}
		api := NewAPIHandler(zap.NewNop(), config, &Statistics{}, NewMockClocker(),
			NewMockUIDHandler("cb8f2136-fae4-4200-85d9-3533c7f8c70d"), nil, nil, nil)
		open, protected := api.MiddlewaresStacks()
		router := api.SetupRoutes(httprouter.New(), &MiddlewareMap{open: open, protected: protected})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ops/stats", nil)
		req.Header.Set("X-API-Key", "super-secret")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
