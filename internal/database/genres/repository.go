// Package genres provides database operations for book genres.
package genres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

var (
	ErrNotFound  = apperr.NotFound("Genre not found")
	ErrNameTaken = apperr.Conflict("Genre with this name already exists")
)

// Changes lists the genre fields a partial update may touch.
type Changes struct {
	Name patch.Field[string]
}

// Repository handles all genre database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new genres repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all genres ordered by name.
func (r *Repository) List(ctx context.Context) ([]entities.Genre, error) {
	var genres []entities.Genre
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// Get retrieves a genre by ID.
func (r *Repository) Get(ctx context.Context, id uint) (*entities.Genre, error) {
	genre, err := findGenre(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, database.Wrap("get genre", err)
	}
	return genre, nil
}

// GetWithBooks retrieves a genre with its books, each carrying its author.
func (r *Repository) GetWithBooks(ctx context.Context, id uint) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("title ASC")
		}).
		Preload("Books.Author").
		First(&genre, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get genre with books: %w", err)
	}
	if genre.Books == nil {
		genre.Books = []entities.Book{}
	}
	return &genre, nil
}

// Create adds a genre with a unique name.
func (r *Repository) Create(ctx context.Context, name string) (*entities.Genre, error) {
	genre := &entities.Genre{Name: name}
	err := database.Transaction(ctx, r.db, ErrNameTaken, func(tx *gorm.DB) error {
		if err := checkNameFree(tx, name, 0); err != nil {
			return err
		}
		return tx.Create(genre).Error
	})
	if err != nil {
		return nil, database.Wrap("create genre", err)
	}
	return genre, nil
}

// Update applies the supplied changes. A new name must not belong to another genre.
func (r *Repository) Update(ctx context.Context, id uint, changes Changes) (*entities.Genre, error) {
	var genre *entities.Genre
	err := database.Transaction(ctx, r.db, ErrNameTaken, func(tx *gorm.DB) error {
		current, err := findGenre(tx, id)
		if err != nil {
			return err
		}
		if name, ok := changes.Name.Get(); ok && name != current.Name {
			if err := checkNameFree(tx, name, id); err != nil {
				return err
			}
			if err := tx.Model(current).Update("name", name).Error; err != nil {
				return err
			}
		}
		genre, err = findGenre(tx, id)
		return err
	})
	if err != nil {
		return nil, database.Wrap("update genre", err)
	}
	return genre, nil
}

// Delete removes a genre together with its books and their associations.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	err := database.Transaction(ctx, r.db, nil, func(tx *gorm.DB) error {
		if _, err := findGenre(tx, id); err != nil {
			return err
		}

		genreBooks := tx.Model(&entities.Book{}).Select("id").Where("genre_id = ?", id)
		if err := tx.Where("book_id IN (?)", genreBooks).Delete(&entities.BookOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+entities.BookTagsTable+" WHERE book_id IN (?)", genreBooks).Error; err != nil {
			return err
		}
		if err := tx.Where("genre_id = ?", id).Delete(&entities.Book{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Genre{}, id).Error
	})
	return database.Wrap("delete genre", err)
}

func findGenre(db *gorm.DB, id uint) (*entities.Genre, error) {
	var genre entities.Genre
	err := db.First(&genre, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func checkNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	query := tx.Model(&entities.Genre{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrNameTaken
	}
	return nil
}
