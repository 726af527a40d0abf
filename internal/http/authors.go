package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
	"github.com/Paul-Starodub/fast-library/internal/validation"
)

const entityAuthor = "author"

var errActivationForbidden = apperr.Forbidden("Only superusers may change is_active")

// AuthorStore defines the author operations the controller needs.
type AuthorStore interface {
	Create(ctx context.Context, in authors.NewAuthor) (*entities.Author, error)
	List(ctx context.Context, limit, offset int) ([]entities.Author, error)
	Get(ctx context.Context, id uint) (*entities.Author, error)
	Update(ctx context.Context, id uint, changes authors.Changes) (*entities.Author, error)
	Delete(ctx context.Context, id uint) error
}

// PasswordHasher turns a plain password into the stored hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.AccessToken, error)
}

type AuthorsController struct {
	store   AuthorStore
	hasher  PasswordHasher
	authn   Authenticator
	auditor AuditLogger
}

func NewAuthorsController(store AuthorStore, hasher PasswordHasher, authn Authenticator, auditor AuditLogger) *AuthorsController {
	return &AuthorsController{store: store, hasher: hasher, authn: authn, auditor: orNoop(auditor)}
}

// Create handles POST /authors/
func (ac *AuthorsController) Create(c *gin.Context) {
	var req AuthorCreate
	if !bindJSON(c, &req) {
		return
	}

	hash, err := ac.hasher.Hash(req.Password)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	author, err := ac.store.Create(c.Request.Context(), authors.NewAuthor{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		ImageFile:    req.ImageFile,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	ac.auditor.LogCreate(actorFrom(c), entityAuthor, author.ID, author.Username)
	c.JSON(http.StatusCreated, newAuthorPrivate(author))
}

// List handles GET /authors/?limit=&offset=
func (ac *AuthorsController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	list, err := ac.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondAppError(c, err)
		return
	}

	out := make([]AuthorPublic, 0, len(list))
	for i := range list {
		out = append(out, newAuthorPublic(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /authors/:id/
func (ac *AuthorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.store.Get(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAuthorPublic(author))
}

// Update handles PATCH /authors/:id/
func (ac *AuthorsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AuthorUpdate
	if !bindJSON(c, &req) {
		return
	}
	if req.IsActive.Set {
		if caller := auth.GetAuthor(c); caller == nil || !caller.IsSuperuser {
			respondAppError(c, errActivationForbidden)
			return
		}
	}

	changes := authors.Changes{
		Username:  req.Username,
		Email:     req.Email,
		ImageFile: req.ImageFile,
		IsActive:  req.IsActive,
	}
	if password, set := req.Password.Get(); set {
		hash, err := ac.hasher.Hash(password)
		if err != nil {
			respondInternalError(c, err)
			return
		}
		changes.PasswordHash = patch.Some(hash)
	}

	author, err := ac.store.Update(c.Request.Context(), id, changes)
	if err != nil {
		respondAppError(c, err)
		return
	}

	ac.auditor.LogUpdate(actorFrom(c), entityAuthor, author.ID, author.Username)
	c.JSON(http.StatusOK, newAuthorPrivate(author))
}

// Delete handles DELETE /authors/:id/
func (ac *AuthorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.store.Delete(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}

	ac.auditor.LogDelete(actorFrom(c), entityAuthor, id, "")
	c.Status(http.StatusNoContent)
}

// Login handles POST /authors/login/ with either the OAuth2 password form
// or a JSON body.
func (ac *AuthorsController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondAppError(c, validation.FormatError(err))
		return
	}

	token, err := ac.authn.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ac.auditor.LogAuth(actorFrom(c), "login", false)
		if errors.Is(err, apperr.ErrUnauthorized) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		respondAppError(c, err)
		return
	}

	actor := actorFrom(c)
	actor.ID = token.Author.ID
	ac.auditor.LogAuth(actor, "login", true)

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(token.ExpiresAt).Seconds()),
	})
}

// Me handles GET /authors/me/. RequireAuthor has already resolved the token.
func (ac *AuthorsController) Me(c *gin.Context) {
	author := auth.GetAuthor(c)
	if author == nil {
		respondAppError(c, auth.ErrTokenRejected)
		return
	}
	c.JSON(http.StatusOK, newAuthorPrivate(author))
}
