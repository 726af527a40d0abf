// Package profiles provides database operations for author profiles.
// An author has at most one profile.
package profiles

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

var (
	ErrNotFound = apperr.NotFound("Profile not found")
	ErrExists   = apperr.Conflict("Profile for this author already exists")
)

type NewProfile struct {
	AuthorID  uint
	FirstName *string
	LastName  *string
	Bio       *string
}

// Changes lists the profile fields a partial update may touch.
type Changes struct {
	FirstName patch.Nullable[string]
	LastName  patch.Nullable[string]
	Bio       patch.Nullable[string]
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create adds a profile for an existing author that has none yet.
func (r *Repository) Create(ctx context.Context, in NewProfile) (*entities.Profile, error) {
	var profile *entities.Profile
	err := database.Transaction(ctx, r.db, ErrExists, func(tx *gorm.DB) error {
		var authorCount int64
		if err := tx.Model(&entities.Author{}).Where("id = ?", in.AuthorID).Count(&authorCount).Error; err != nil {
			return err
		}
		if authorCount == 0 {
			return authors.ErrNotFound
		}

		var existing int64
		if err := tx.Model(&entities.Profile{}).Where("author_id = ?", in.AuthorID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrExists
		}

		created := &entities.Profile{
			AuthorID:  in.AuthorID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Bio:       in.Bio,
		}
		if err := tx.Create(created).Error; err != nil {
			return err
		}

		var err error
		profile, err = findByAuthor(tx, in.AuthorID)
		return err
	})
	if err != nil {
		return nil, database.Wrap("create profile", err)
	}
	return profile, nil
}

// List returns every profile with its author, ordered by author ID.
func (r *Repository) List(ctx context.Context) ([]entities.Profile, error) {
	var profiles []entities.Profile
	err := r.db.WithContext(ctx).Preload("Author").Order("author_id ASC").Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// GetByAuthor returns the profile owned by the given author.
func (r *Repository) GetByAuthor(ctx context.Context, authorID uint) (*entities.Profile, error) {
	profile, err := findByAuthor(r.db.WithContext(ctx), authorID)
	if err != nil {
		return nil, database.Wrap("get profile", err)
	}
	return profile, nil
}

// UpdateByAuthor applies the supplied changes to an author's profile.
func (r *Repository) UpdateByAuthor(ctx context.Context, authorID uint, changes Changes) (*entities.Profile, error) {
	var profile *entities.Profile
	err := database.Transaction(ctx, r.db, nil, func(tx *gorm.DB) error {
		current, err := findByAuthor(tx, authorID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if changes.FirstName.Set {
			updates["first_name"] = changes.FirstName.Ptr()
		}
		if changes.LastName.Set {
			updates["last_name"] = changes.LastName.Ptr()
		}
		if changes.Bio.Set {
			updates["bio"] = changes.Bio.Ptr()
		}
		if len(updates) > 0 {
			if err := tx.Model(&entities.Profile{ID: current.ID}).Updates(updates).Error; err != nil {
				return err
			}
		}

		profile, err = findByAuthor(tx, authorID)
		return err
	})
	if err != nil {
		return nil, database.Wrap("update profile", err)
	}
	return profile, nil
}

// DeleteByAuthor removes an author's profile.
func (r *Repository) DeleteByAuthor(ctx context.Context, authorID uint) error {
	result := r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&entities.Profile{})
	if result.Error != nil {
		return fmt.Errorf("delete profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func findByAuthor(db *gorm.DB, authorID uint) (*entities.Profile, error) {
	var profile entities.Profile
	err := db.Preload("Author").Where("author_id = ?", authorID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
