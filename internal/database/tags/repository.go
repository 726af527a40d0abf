// Package tags provides database operations for tag management.
//
// Attaching tags to books lives in the books package; this package owns the
// tag rows themselves.
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	tag, err := repo.Create(ctx, "classic")
package tags

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

var (
	ErrNotFound  = apperr.NotFound("Tag not found")
	ErrNameTaken = apperr.Conflict("Tag with this name already exists")
)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all tags ordered by name.
func (r *Repository) List(ctx context.Context) ([]entities.Tag, error) {
	var tags []entities.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Get retrieves a tag by ID.
func (r *Repository) Get(ctx context.Context, id uint) (*entities.Tag, error) {
	tag, err := Find(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, database.Wrap("get tag", err)
	}
	return tag, nil
}

// Create creates a new tag.
func (r *Repository) Create(ctx context.Context, name string) (*entities.Tag, error) {
	tag := &entities.Tag{Name: name}
	err := database.Transaction(ctx, r.db, ErrNameTaken, func(tx *gorm.DB) error {
		if err := checkNameFree(tx, name, 0); err != nil {
			return err
		}
		return tx.Create(tag).Error
	})
	if err != nil {
		return nil, database.Wrap("create tag", err)
	}
	return tag, nil
}

// Rename replaces the tag name.
func (r *Repository) Rename(ctx context.Context, id uint, name string) (*entities.Tag, error) {
	var tag *entities.Tag
	err := database.Transaction(ctx, r.db, ErrNameTaken, func(tx *gorm.DB) error {
		current, err := Find(tx, id)
		if err != nil {
			return err
		}
		if err := checkNameFree(tx, name, id); err != nil {
			return err
		}
		if err := tx.Model(current).Update("name", name).Error; err != nil {
			return err
		}
		tag, err = Find(tx, id)
		return err
	})
	if err != nil {
		return nil, database.Wrap("rename tag", err)
	}
	return tag, nil
}

// Delete removes a tag and detaches it from every book.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	err := database.Transaction(ctx, r.db, nil, func(tx *gorm.DB) error {
		if _, err := Find(tx, id); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+entities.BookTagsTable+" WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Tag{}, id).Error
	})
	return database.Wrap("delete tag", err)
}

// Find loads a tag using db, which may be a transaction.
func Find(db *gorm.DB, id uint) (*entities.Tag, error) {
	var tag entities.Tag
	err := db.First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func checkNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	query := tx.Model(&entities.Tag{}).Where("name = ?", name)
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
