// Package orders provides database operations for orders and their lines.
//
// Orders are created all-or-nothing: every referenced book must exist before
// the header and its lines are written in a single transaction.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

var (
	ErrNotFound      = apperr.NotFound("Order not found")
	ErrBooksNotFound = apperr.Validation("One or more books not found")
	ErrDuplicateBook = apperr.Validation("Each book may appear only once per order")
	ErrEmpty         = apperr.Validation("Order must contain at least one book")
	errDuplicateLine = apperr.Conflict("Each book may appear only once per order")
)

// Line is one requested (book, quantity) pair.
type Line struct {
	BookID   uint
	Quantity int
}

type NewOrder struct {
	AuthorID uint
	Lines    []Line
}

// Repository handles all order database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new orders repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// List returns all orders, oldest first, with their full graph loaded.
func (r *Repository) List(ctx context.Context) ([]entities.Order, error) {
	var orders []entities.Order
	err := withGraph(r.db.WithContext(ctx)).Order("orders.id ASC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id uint) (*entities.Order, error) {
	order, err := findOrder(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, database.Wrap("get order", err)
	}
	return order, nil
}

// Create places an order. The author is resolved first, then all books in one
// query; if any book is missing nothing is written.
func (r *Repository) Create(ctx context.Context, in NewOrder) (*entities.Order, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmpty
	}
	bookIDs := make([]uint, 0, len(in.Lines))
	seen := make(map[uint]struct{}, len(in.Lines))
	for _, line := range in.Lines {
		if _, dup := seen[line.BookID]; dup {
			return nil, ErrDuplicateBook
		}
		seen[line.BookID] = struct{}{}
		bookIDs = append(bookIDs, line.BookID)
	}

	var order *entities.Order
	err := database.Transaction(ctx, r.db, errDuplicateLine, func(tx *gorm.DB) error {
		var authorCount int64
		if err := tx.Model(&entities.Author{}).Where("id = ?", in.AuthorID).Count(&authorCount).Error; err != nil {
			return err
		}
		if authorCount == 0 {
			return authors.ErrNotFound
		}

		var found int64
		if err := tx.Model(&entities.Book{}).Where("id IN ?", bookIDs).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(bookIDs)) {
			return ErrBooksNotFound
		}

		header := &entities.Order{AuthorID: in.AuthorID, OrderedAt: r.now().UTC()}
		if err := tx.Omit("Author", "Lines").Create(header).Error; err != nil {
			return err
		}

		lines := make([]entities.BookOrder, 0, len(in.Lines))
		for _, line := range in.Lines {
			lines = append(lines, entities.BookOrder{BookID: line.BookID, OrderID: header.ID, Quantity: line.Quantity})
		}
		if err := tx.Omit("Book").Create(&lines).Error; err != nil {
			return err
		}

		var err error
		order, err = findOrder(tx, header.ID)
		return err
	})
	if err != nil {
		return nil, database.Wrap("create order", err)
	}
	return order, nil
}

// Delete removes an order and its lines.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	err := database.Transaction(ctx, r.db, nil, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Where("order_id = ?", id).Delete(&entities.BookOrder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Order{}, id).Error
	})
	return database.Wrap("delete order", err)
}

// withGraph eager-loads the author, the lines, and each line's book with its
// own author and genre.
func withGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("book_orders.id ASC")
		}).
		Preload("Lines.Book").
		Preload("Lines.Book.Author").
		Preload("Lines.Book.Genre")
}

func findOrder(db *gorm.DB, id uint) (*entities.Order, error) {
	var order entities.Order
	err := withGraph(db).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
