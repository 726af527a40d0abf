package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	auditsvc "github.com/Paul-Starodub/fast-library/internal/audit"
	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/config"
	auditrepo "github.com/Paul-Starodub/fast-library/internal/database/audit"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/database/books"
	"github.com/Paul-Starodub/fast-library/internal/database/dbtest"
	"github.com/Paul-Starodub/fast-library/internal/database/genres"
	"github.com/Paul-Starodub/fast-library/internal/database/orders"
	"github.com/Paul-Starodub/fast-library/internal/database/profiles"
	"github.com/Paul-Starodub/fast-library/internal/database/tags"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

const testTokenKey = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	db      *gorm.DB
	router  *gin.Engine
	tokens  *auth.TokenService
	authors *authors.Repository
	audit   *auditsvc.Service
}

// newTestApp wires the full router against a throwaway sqlite database.
func newTestApp(t *testing.T, opts ...func(*RouterConfig)) *testApp {
	t.Helper()
	db := dbtest.Open(t)

	tokens, err := auth.NewTokenService(testTokenKey, 30*time.Minute, config.TokenIssuer, config.TokenAudience)
	require.NoError(t, err)

	authorRepo := authors.NewRepository(db)
	authService := auth.NewService(authorRepo, tokens)
	auditService := auditsvc.NewService(auditrepo.NewRepository(db))
	t.Cleanup(auditService.Wait)

	cfg := RouterConfig{
		Authors:            authorRepo,
		Profiles:           profiles.NewRepository(db),
		Genres:             genres.NewRepository(db),
		Books:              books.NewRepository(db),
		Tags:               tags.NewRepository(db),
		Orders:             orders.NewRepository(db),
		Hasher:             auth.Hasher{Cost: 4},
		Authenticator:      authService,
		AuthMiddleware:     auth.NewMiddleware(authService),
		Auditor:            auditService,
		AuditEvents:        auditService,
		AuditRetentionDays: 30,
		CORSAllowedOrigins: []string{"*"},
		Database:           pingerFunc(func(context.Context) error { return nil }),
		Version:            "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testApp{
		db:      db,
		router:  NewRouter(cfg),
		tokens:  tokens,
		authors: authorRepo,
		audit:   auditService,
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// request sends body (marshalled to JSON unless it is an io.Reader) and
// returns the recorded response. Header pairs follow the body.
func (a *testApp) request(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// createAuthor registers an author with password "password123" directly in
// the repository.
func (a *testApp) createAuthor(t *testing.T, username string, superuser bool) *entities.Author {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)
	author, err := a.authors.Create(context.Background(), authors.NewAuthor{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsSuperuser:  superuser,
	})
	require.NoError(t, err)
	return author
}

func (a *testApp) bearer(author *entities.Author) []string {
	token, _ := a.tokens.Issue(author.ID)
	return []string{"Authorization", "Bearer " + token}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouter_RootAndPing(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hello World"}`, w.Body.String())

	w = app.request(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestRouter_CommonHeaders(t *testing.T) {
	app := newTestApp(t)

	t.Run("generates a request id", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/ping", nil)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("keeps the client request id", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/ping", nil, RequestIDHeader, "abc-123")
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("answers CORS preflight", func(t *testing.T) {
		w := app.request(t, http.MethodOptions, "/books/", nil,
			"Origin", "http://localhost:3000",
			"Access-Control-Request-Method", "POST",
		)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_ReadOnlyMode(t *testing.T) {
	app := newTestApp(t, func(cfg *RouterConfig) { cfg.ReadOnly = true })
	app.createAuthor(t, "reader", false)

	w := app.request(t, http.MethodPost, "/genres/", map[string]any{"name": "Poetry"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, codeReadOnly, decode[ErrorResponse](t, w).Code)

	w = app.request(t, http.MethodGet, "/genres/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodPost, "/authors/login/", map[string]any{
		"username": "reader@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
