package http

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paul-Starodub/fast-library/internal/auth"
)

func TestAuthorsController_Create(t *testing.T) {
	t.Run("creates an author and hides the password", func(t *testing.T) {
		app := newTestApp(t)

		w := app.request(t, http.MethodPost, "/authors/", map[string]any{
			"username": "Jane",
			"email":    "Jane@Example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		author := decode[AuthorPrivate](t, w)
		assert.NotZero(t, author.ID)
		assert.Equal(t, "Jane", author.Username)
		assert.Equal(t, "jane@example.com", author.Email)
		assert.True(t, author.IsActive)
		assert.False(t, author.IsSuperuser)
		assert.Equal(t, "/static/profile_pics/default.jpg", author.ImagePath)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("rejects duplicates ignoring case", func(t *testing.T) {
		app := newTestApp(t)
		app.createAuthor(t, "jane", false)

		w := app.request(t, http.MethodPost, "/authors/", map[string]any{
			"username": "JANE",
			"email":    "other@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Author with this username already exists", decode[ErrorResponse](t, w).Detail)

		w = app.request(t, http.MethodPost, "/authors/", map[string]any{
			"username": "someone",
			"email":    "JANE@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Author with this email already exists", decode[ErrorResponse](t, w).Detail)
	})

	t.Run("reports invalid fields", func(t *testing.T) {
		app := newTestApp(t)

		w := app.request(t, http.MethodPost, "/authors/", map[string]any{
			"username": "jane",
			"email":    "not-an-email",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "validation failed", resp.Detail)
		assert.Equal(t, "must be a valid email address", resp.Errors["email"])
		assert.Equal(t, "must be at least 8 characters", resp.Errors["password"])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		app := newTestApp(t)

		w := app.request(t, http.MethodPost, "/authors/", `{"username":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthorsController_List(t *testing.T) {
	app := newTestApp(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		app.createAuthor(t, name, false)
	}

	w := app.request(t, http.MethodGet, "/authors/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]AuthorPublic](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "carol", list[2].Username)
	assert.NotContains(t, w.Body.String(), "email")

	w = app.request(t, http.MethodGet, "/authors/?limit=1&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[[]AuthorPublic](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Username)

	w = app.request(t, http.MethodGet, "/authors/?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorsController_Get(t *testing.T) {
	app := newTestApp(t)
	author := app.createAuthor(t, "jane", false)

	w := app.request(t, http.MethodGet, fmt.Sprintf("/authors/%d/", author.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane", decode[AuthorPublic](t, w).Username)

	w = app.request(t, http.MethodGet, "/authors/999/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Author not found", decode[ErrorResponse](t, w).Detail)

	w = app.request(t, http.MethodGet, "/authors/abc/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a positive integer", decode[ErrorResponse](t, w).Errors["id"])
}

func TestAuthorsController_Update(t *testing.T) {
	t.Run("applies only supplied fields", func(t *testing.T) {
		app := newTestApp(t)
		author := app.createAuthor(t, "jane", false)

		w := app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", author.ID), map[string]any{
			"image_file": "jane.png",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated := decode[AuthorPrivate](t, w)
		assert.Equal(t, "jane", updated.Username)
		assert.Equal(t, "jane@example.com", updated.Email)
		assert.Equal(t, "/media/profile_pics/jane.png", updated.ImagePath)

		w = app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", author.ID), `{"image_file": null}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decode[AuthorPrivate](t, w).ImageFile)
	})

	t.Run("validates supplied empty values", func(t *testing.T) {
		app := newTestApp(t)
		author := app.createAuthor(t, "jane", false)

		w := app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", author.ID), map[string]any{
			"username": "",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "must be at least 1 characters", decode[ErrorResponse](t, w).Errors["username"])

		w = app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", author.ID), `{"username": null}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a username taken by another author", func(t *testing.T) {
		app := newTestApp(t)
		app.createAuthor(t, "jane", false)
		other := app.createAuthor(t, "john", false)

		w := app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", other.ID), map[string]any{
			"username": "Jane",
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		// Keeping one's own name is not a conflict
		w = app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", other.ID), map[string]any{
			"username": "john",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("re-hashes a new password", func(t *testing.T) {
		app := newTestApp(t)
		author := app.createAuthor(t, "jane", false)

		w := app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", author.ID), map[string]any{
			"password": "another-secret",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = app.request(t, http.MethodPost, "/authors/login/", map[string]any{
			"username": "jane@example.com",
			"password": "another-secret",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("only superusers change is_active", func(t *testing.T) {
		app := newTestApp(t)
		author := app.createAuthor(t, "jane", false)
		path := fmt.Sprintf("/authors/%d/", author.ID)
		body := map[string]any{"is_active": false}

		w := app.request(t, http.MethodPatch, path, body)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Only superusers may change is_active", decode[ErrorResponse](t, w).Detail)

		w = app.request(t, http.MethodPatch, path, body, app.bearer(author)...)
		assert.Equal(t, http.StatusForbidden, w.Code)

		stored, err := app.authors.Get(context.Background(), author.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsActive)

		root := app.createAuthor(t, "root", true)
		w = app.request(t, http.MethodPatch, path, body, app.bearer(root)...)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decode[AuthorPrivate](t, w).IsActive)
	})
}

func TestAuthorsController_Delete(t *testing.T) {
	app := newTestApp(t)
	author := app.createAuthor(t, "jane", false)

	w := app.request(t, http.MethodDelete, fmt.Sprintf("/authors/%d/", author.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.request(t, http.MethodDelete, fmt.Sprintf("/authors/%d/", author.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorsController_Login(t *testing.T) {
	t.Run("issues a bearer token for a form login", func(t *testing.T) {
		app := newTestApp(t)
		author := app.createAuthor(t, "jane", false)

		w := app.request(t, http.MethodPost, "/authors/login/",
			"username=JANE%40example.com&password=password123",
			"Content-Type", "application/x-www-form-urlencoded",
		)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		token := decode[TokenResponse](t, w)
		assert.Equal(t, "bearer", token.TokenType)
		assert.Positive(t, token.ExpiresIn)

		id, err := app.tokens.Verify(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, author.ID, id)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		app := newTestApp(t)
		app.createAuthor(t, "jane", false)

		w := app.request(t, http.MethodPost, "/authors/login/", map[string]any{
			"username": "jane@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.Equal(t, "Incorrect email or password", decode[ErrorResponse](t, w).Detail)
	})

	t.Run("rejects inactive authors", func(t *testing.T) {
		app := newTestApp(t)
		author := app.createAuthor(t, "jane", false)
		root := app.createAuthor(t, "root", true)

		w := app.request(t, http.MethodPatch, fmt.Sprintf("/authors/%d/", author.ID), map[string]any{"is_active": false}, app.bearer(root)...)
		require.Equal(t, http.StatusOK, w.Code)

		w = app.request(t, http.MethodPost, "/authors/login/", map[string]any{
			"username": "jane@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Inactive author", decode[ErrorResponse](t, w).Detail)
	})

	t.Run("throttles repeated attempts", func(t *testing.T) {
		app := newTestApp(t, func(cfg *RouterConfig) {
			cfg.LoginLimiter = auth.NewKeyedRateLimiter(0.001, 2)
		})

		codes := make([]int, 0, 3)
		for range 3 {
			w := app.request(t, http.MethodPost, "/authors/login/", map[string]any{
				"username": "nobody@example.com",
				"password": "password123",
			})
			codes = append(codes, w.Code)
		}
		assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
	})
}

func TestAuthorsController_Me(t *testing.T) {
	app := newTestApp(t)
	author := app.createAuthor(t, "jane", false)

	w := app.request(t, http.MethodGet, "/authors/me/", nil, app.bearer(author)...)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[AuthorPrivate](t, w)
	assert.Equal(t, author.ID, me.ID)
	assert.Equal(t, "jane@example.com", me.Email)

	w = app.request(t, http.MethodGet, "/authors/me/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = app.request(t, http.MethodGet, "/authors/me/", nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
