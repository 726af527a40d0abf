// Package books provides database operations for books and their tags.
//
// Every book read through this package carries its genre, author and tags.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.Get(ctx, 123)
package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/database/genres"
	"github.com/Paul-Starodub/fast-library/internal/database/tags"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

var (
	ErrNotFound       = apperr.NotFound("Book not found")
	ErrTitleTaken     = apperr.Conflict("Book with this title already exists")
	ErrTagAttached    = apperr.Conflict("Tag already attached to this book")
	ErrTagNotAttached = apperr.NotFound("Tag is not attached to this book")
)

// NewBook holds every base field of a book. It is used for creation and for
// full replacement.
type NewBook struct {
	Title         string
	Rating        int
	DatePublished time.Time
	ImageFile     *string
	GenreID       uint
	AuthorID      uint
}

// Changes lists the book fields a partial update may touch.
type Changes struct {
	Title         patch.Field[string]
	Rating        patch.Field[int]
	DatePublished patch.Field[time.Time]
	ImageFile     patch.Nullable[string]
	GenreID       patch.Field[uint]
	AuthorID      patch.Field[uint]
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all books ordered by title.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := withRelations(r.db.WithContext(ctx)).Order("title ASC").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get retrieves a book by its ID.
func (r *Repository) Get(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := findBook(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, database.Wrap("get book", err)
	}
	return book, nil
}

// Create adds a book. The title must be unique and the genre and author must exist.
func (r *Repository) Create(ctx context.Context, in NewBook) (*entities.Book, error) {
	var book *entities.Book
	err := database.Transaction(ctx, r.db, ErrTitleTaken, func(tx *gorm.DB) error {
		if err := checkTitleFree(tx, in.Title, 0); err != nil {
			return err
		}
		if err := checkReferences(tx, in.GenreID, in.AuthorID); err != nil {
			return err
		}

		created := &entities.Book{
			Title:         in.Title,
			Rating:        in.Rating,
			DatePublished: in.DatePublished,
			ImageFile:     in.ImageFile,
			GenreID:       in.GenreID,
			AuthorID:      in.AuthorID,
		}
		if err := tx.Omit("Genre", "Author", "Tags", "Lines").Create(created).Error; err != nil {
			return err
		}

		var err error
		book, err = findBook(tx, created.ID)
		return err
	})
	if err != nil {
		return nil, database.Wrap("create book", err)
	}
	return book, nil
}

// Replace overwrites every base field of a book. A nil ImageFile clears it.
func (r *Repository) Replace(ctx context.Context, id uint, in NewBook) (*entities.Book, error) {
	image := patch.Null[string]()
	if in.ImageFile != nil {
		image = patch.Value(*in.ImageFile)
	}
	return r.Update(ctx, id, Changes{
		Title:         patch.Some(in.Title),
		Rating:        patch.Some(in.Rating),
		DatePublished: patch.Some(in.DatePublished),
		ImageFile:     image,
		GenreID:       patch.Some(in.GenreID),
		AuthorID:      patch.Some(in.AuthorID),
	})
}

// Update applies only the supplied changes. A changed title is checked against
// every other book.
func (r *Repository) Update(ctx context.Context, id uint, changes Changes) (*entities.Book, error) {
	var book *entities.Book
	err := database.Transaction(ctx, r.db, ErrTitleTaken, func(tx *gorm.DB) error {
		current, err := findBook(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if v, ok := changes.Title.Get(); ok {
			if v != current.Title {
				if err := checkTitleFree(tx, v, id); err != nil {
					return err
				}
			}
			updates["title"] = v
		}
		if v, ok := changes.Rating.Get(); ok {
			updates["rating"] = v
		}
		if v, ok := changes.DatePublished.Get(); ok {
			updates["date_published"] = v
		}
		if changes.ImageFile.Set {
			updates["image_file"] = changes.ImageFile.Ptr()
		}
		if v, ok := changes.GenreID.Get(); ok {
			if err := checkReferences(tx, v, 0); err != nil {
				return err
			}
			updates["genre_id"] = v
		}
		if v, ok := changes.AuthorID.Get(); ok {
			if err := checkReferences(tx, 0, v); err != nil {
				return err
			}
			updates["author_id"] = v
		}

		if len(updates) > 0 {
			if err := tx.Model(&entities.Book{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}

		book, err = findBook(tx, id)
		return err
	})
	if err != nil {
		return nil, database.Wrap("update book", err)
	}
	return book, nil
}

// Delete removes a book with its tag links and order lines. Tags survive.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	err := database.Transaction(ctx, r.db, nil, func(tx *gorm.DB) error {
		if err := checkBookExists(tx, id); err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+entities.BookTagsTable+" WHERE book_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, id).Error
	})
	return database.Wrap("delete book", err)
}

// AttachTag links a tag to a book and returns the book with refreshed tags.
func (r *Repository) AttachTag(ctx context.Context, bookID, tagID uint) (*entities.Book, error) {
	var book *entities.Book
	err := database.Transaction(ctx, r.db, ErrTagAttached, func(tx *gorm.DB) error {
		if err := checkBookExists(tx, bookID); err != nil {
			return err
		}
		if _, err := tags.Find(tx, tagID); err != nil {
			return err
		}

		attached, err := isAttached(tx, bookID, tagID)
		if err != nil {
			return err
		}
		if attached {
			return ErrTagAttached
		}

		link := map[string]any{"book_id": bookID, "tag_id": tagID}
		if err := tx.Table(entities.BookTagsTable).Create(link).Error; err != nil {
			return err
		}

		book, err = findBook(tx, bookID)
		return err
	})
	if err != nil {
		return nil, database.Wrap("attach tag", err)
	}
	return book, nil
}

// DetachTag removes the link between a book and a tag.
func (r *Repository) DetachTag(ctx context.Context, bookID, tagID uint) (*entities.Book, error) {
	var book *entities.Book
	err := database.Transaction(ctx, r.db, nil, func(tx *gorm.DB) error {
		if err := checkBookExists(tx, bookID); err != nil {
			return err
		}
		if _, err := tags.Find(tx, tagID); err != nil {
			return err
		}

		result := tx.Exec("DELETE FROM "+entities.BookTagsTable+" WHERE book_id = ? AND tag_id = ?", bookID, tagID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTagNotAttached
		}

		var err error
		book, err = findBook(tx, bookID)
		return err
	})
	if err != nil {
		return nil, database.Wrap("detach tag", err)
	}
	return book, nil
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Genre").Preload("Author").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	})
}

func findBook(db *gorm.DB, id uint) (*entities.Book, error) {
	var book entities.Book
	err := withRelations(db).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if book.Tags == nil {
		book.Tags = []entities.Tag{}
	}
	return &book, nil
}

func checkBookExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func checkTitleFree(tx *gorm.DB, title string, exceptID uint) error {
	var count int64
	query := tx.Model(&entities.Book{}).Where("title = ?", title)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrTitleTaken
	}
	return nil
}

// checkReferences verifies the genre and author exist. A zero ID is skipped.
func checkReferences(tx *gorm.DB, genreID, authorID uint) error {
	if genreID != 0 {
		var count int64
		if err := tx.Model(&entities.Genre{}).Where("id = ?", genreID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return genres.ErrNotFound
		}
	}
	if authorID != 0 {
		var count int64
		if err := tx.Model(&entities.Author{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return authors.ErrNotFound
		}
	}
	return nil
}

func isAttached(tx *gorm.DB, bookID, tagID uint) (bool, error) {
	var count int64
	err := tx.Table(entities.BookTagsTable).Where("book_id = ? AND tag_id = ?", bookID, tagID).Count(&count).Error
	return count > 0, err
}
