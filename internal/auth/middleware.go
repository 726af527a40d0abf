package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

// Context keys for the authenticated author
const (
	ContextKeyAuthorID = "auth_author_id"
	ContextKeyAuthor   = "auth_author"
)

// Middleware guards routes with bearer tokens.
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuthor rejects requests without a valid bearer token.
func (m *Middleware) RequireAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		author, err := m.service.CurrentAuthor(c.Request.Context(), BearerToken(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		setAuthor(c, author)
		c.Next()
	}
}

// OptionalAuthor attaches the author when a valid token is present and lets
// anonymous requests through.
func (m *Middleware) OptionalAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			if author, err := m.service.CurrentAuthor(c.Request.Context(), token); err == nil {
				setAuthor(c, author)
			}
		}
		c.Next()
	}
}

// RequireSuperuser must run after RequireAuthor.
func (m *Middleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		author := GetAuthor(c)
		if author == nil {
			abortWithError(c, ErrTokenRejected)
			return
		}
		if !author.IsSuperuser {
			abortWithError(c, ErrNotSuperuser)
			return
		}
		c.Next()
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func setAuthor(c *gin.Context, author *entities.Author) {
	c.Set(ContextKeyAuthorID, author.ID)
	c.Set(ContextKeyAuthor, author)
}

func abortWithError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Printf("[AUTH] Failed to resolve bearer token: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error", "code": apperr.CodeInternal})
		return
	}
	if appErr.Code == apperr.CodeUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), gin.H{"detail": appErr.Message, "code": appErr.Code})
}

// GetAuthorID returns the authenticated author's ID, or 0 for anonymous requests.
func GetAuthorID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyAuthorID); exists {
		if authorID, ok := id.(uint); ok {
			return authorID
		}
	}
	return 0
}

// GetAuthor returns the authenticated author, or nil.
func GetAuthor(c *gin.Context) *entities.Author {
	if a, exists := c.Get(ContextKeyAuthor); exists {
		if author, ok := a.(*entities.Author); ok {
			return author
		}
	}
	return nil
}
