// Package authors provides database operations for authors and their credentials.
//
// # Usage
//
//	repo := authors.NewRepository(db)
//	author, err := repo.Create(ctx, authors.NewAuthor{Username: "jane", Email: "jane@example.com", PasswordHash: hash})
package authors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

var (
	ErrNotFound          = apperr.NotFound("Author not found")
	ErrUsernameTaken     = apperr.Conflict("Author with this username already exists")
	ErrEmailTaken        = apperr.Conflict("Author with this email already exists")
	errDuplicateIdentity = apperr.Conflict("Author with this username or email already exists")
)

// NewAuthor holds the fields required to register an author.
type NewAuthor struct {
	Username     string
	Email        string
	PasswordHash string
	ImageFile    *string
	IsSuperuser  bool
}

// Changes lists the fields a partial update may touch. Only fields marked Set
// are written.
type Changes struct {
	Username     patch.Field[string]
	Email        patch.Field[string]
	PasswordHash patch.Field[string]
	ImageFile    patch.Nullable[string]
	IsActive     patch.Field[bool]
}

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create registers an author. Username and email must be unique ignoring case;
// the email is stored lowercased.
func (r *Repository) Create(ctx context.Context, in NewAuthor) (*entities.Author, error) {
	author := &entities.Author{
		Username:     in.Username,
		Email:        strings.ToLower(in.Email),
		PasswordHash: in.PasswordHash,
		ImageFile:    in.ImageFile,
		IsActive:     true,
		IsSuperuser:  in.IsSuperuser,
	}

	err := database.Transaction(ctx, r.db, errDuplicateIdentity, func(tx *gorm.DB) error {
		if err := checkIdentityFree(tx, author.Username, author.Email, 0); err != nil {
			return err
		}
		return tx.Create(author).Error
	})
	if err != nil {
		return nil, database.Wrap("create author", err)
	}
	return author, nil
}

// List returns authors ordered by username.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).
		Order("username ASC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// Get retrieves an author by ID.
func (r *Repository) Get(ctx context.Context, id uint) (*entities.Author, error) {
	return findAuthor(r.db.WithContext(ctx), id)
}

// GetByEmail retrieves an author by email, ignoring case.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get author by email: %w", err)
	}
	return &author, nil
}

// Exists reports whether an author with the given ID exists.
func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Author{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check author: %w", err)
	}
	return count > 0, nil
}

// Update applies the supplied changes. A new username or email is checked
// against every other author.
func (r *Repository) Update(ctx context.Context, id uint, changes Changes) (*entities.Author, error) {
	var author *entities.Author
	err := database.Transaction(ctx, r.db, errDuplicateIdentity, func(tx *gorm.DB) error {
		current, err := findAuthor(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if v, ok := changes.Username.Get(); ok {
			if err := checkUsernameFree(tx, v, id); err != nil {
				return err
			}
			updates["username"] = v
		}
		if v, ok := changes.Email.Get(); ok {
			v = strings.ToLower(v)
			if err := checkEmailFree(tx, v, id); err != nil {
				return err
			}
			updates["email"] = v
		}
		if v, ok := changes.PasswordHash.Get(); ok {
			updates["password_hash"] = v
		}
		if changes.ImageFile.Set {
			updates["image_file"] = changes.ImageFile.Ptr()
		}
		if v, ok := changes.IsActive.Get(); ok {
			updates["is_active"] = v
		}

		if len(updates) > 0 {
			if err := tx.Model(current).Updates(updates).Error; err != nil {
				return err
			}
		}

		author, err = findAuthor(tx, id)
		return err
	})
	if err != nil {
		return nil, database.Wrap("update author", err)
	}
	return author, nil
}

// Delete removes an author with their profile, books and orders.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	err := database.Transaction(ctx, r.db, nil, func(tx *gorm.DB) error {
		if _, err := findAuthor(tx, id); err != nil {
			return err
		}

		authorBooks := tx.Model(&entities.Book{}).Select("id").Where("author_id = ?", id)
		authorOrders := tx.Model(&entities.Order{}).Select("id").Where("author_id = ?", id)

		if err := tx.Where("order_id IN (?) OR book_id IN (?)", authorOrders, authorBooks).Delete(&entities.BookOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+entities.BookTagsTable+" WHERE book_id IN (?)", authorBooks).Error; err != nil {
			return err
		}
		for _, model := range []any{&entities.Order{}, &entities.Book{}, &entities.Profile{}} {
			if err := tx.Where("author_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entities.Author{}, id).Error
	})
	return database.Wrap("delete author", err)
}

func findAuthor(db *gorm.DB, id uint) (*entities.Author, error) {
	var author entities.Author
	err := db.First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func checkIdentityFree(tx *gorm.DB, username, email string, exceptID uint) error {
	if err := checkUsernameFree(tx, username, exceptID); err != nil {
		return err
	}
	return checkEmailFree(tx, email, exceptID)
}

func checkUsernameFree(tx *gorm.DB, username string, exceptID uint) error {
	taken, err := columnTaken(tx, "username", username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	return nil
}

func checkEmailFree(tx *gorm.DB, email string, exceptID uint) error {
	taken, err := columnTaken(tx, "email", email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func columnTaken(tx *gorm.DB, column, value string, exceptID uint) (bool, error) {
	var count int64
	query := tx.Model(&entities.Author{}).Where("LOWER("+column+") = LOWER(?)", value)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
