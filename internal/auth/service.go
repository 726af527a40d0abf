package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

var (
	ErrBadCredentials = apperr.Unauthorized("Incorrect email or password")
	ErrInactive       = apperr.Unauthorized("Inactive author")
	ErrTokenRejected  = apperr.Unauthorized("Invalid or expired token")
	ErrUnknownAuthor  = apperr.Unauthorized("Author not found")
	ErrNotSuperuser   = apperr.Forbidden("Superuser privileges required")
)

// AuthorFinder is the slice of the authors repository the service needs.
type AuthorFinder interface {
	Get(ctx context.Context, id uint) (*entities.Author, error)
	GetByEmail(ctx context.Context, email string) (*entities.Author, error)
}

// AccessToken is returned by a successful login.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	Author    *entities.Author
}

// Service authenticates authors by email and password and resolves bearer
// tokens back to authors.
type Service struct {
	authors AuthorFinder
	tokens  *TokenService
}

func NewService(authors AuthorFinder, tokens *TokenService) *Service {
	return &Service{authors: authors, tokens: tokens}
}

// Login checks the credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	author, err := s.authors.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := CheckPassword(password, author.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !author.IsActive {
		return nil, ErrInactive
	}

	token, expires := s.tokens.Issue(author.ID)
	return &AccessToken{Token: token, ExpiresAt: expires, Author: author}, nil
}

// CurrentAuthor resolves a bearer token to its author.
func (s *Service) CurrentAuthor(ctx context.Context, token string) (*entities.Author, error) {
	if token == "" {
		return nil, ErrTokenRejected
	}
	authorID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrTokenRejected
	}

	author, err := s.authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrUnknownAuthor
		}
		return nil, err
	}
	if !author.IsActive {
		return nil, ErrInactive
	}
	return author, nil
}
