package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/database/books"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

const entityBook = "book"

// BookStore defines the book operations the controller needs.
type BookStore interface {
	List(ctx context.Context) ([]entities.Book, error)
	Get(ctx context.Context, id uint) (*entities.Book, error)
	Create(ctx context.Context, in books.NewBook) (*entities.Book, error)
	Replace(ctx context.Context, id uint, in books.NewBook) (*entities.Book, error)
	Update(ctx context.Context, id uint, changes books.Changes) (*entities.Book, error)
	Delete(ctx context.Context, id uint) error
	AttachTag(ctx context.Context, bookID, tagID uint) (*entities.Book, error)
	DetachTag(ctx context.Context, bookID, tagID uint) (*entities.Book, error)
}

type BooksController struct {
	store   BookStore
	auditor AuditLogger
}

func NewBooksController(store BookStore, auditor AuditLogger) *BooksController {
	return &BooksController{store: store, auditor: orNoop(auditor)}
}

func (req BookCreate) newBook() books.NewBook {
	return books.NewBook{
		Title:         req.Title,
		Rating:        *req.Rating,
		DatePublished: req.DatePublished.Time,
		ImageFile:     req.ImageFile,
		GenreID:       req.GenreID,
		AuthorID:      req.AuthorID,
	}
}

func (req BookUpdate) changes() books.Changes {
	changes := books.Changes{
		Title:     req.Title,
		Rating:    req.Rating,
		ImageFile: req.ImageFile,
		GenreID:   req.GenreID,
		AuthorID:  req.AuthorID,
	}
	if ts, set := req.DatePublished.Get(); set {
		changes.DatePublished = patch.Some(ts.Time)
	}
	return changes
}

// List handles GET /books/
func (bc *BooksController) List(c *gin.Context) {
	list, err := bc.store.List(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	out := make([]BookResponse, 0, len(list))
	for i := range list {
		out = append(out, newBookResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /books/:id/
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.store.Get(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookResponse(book))
}

// Create handles POST /books/
func (bc *BooksController) Create(c *gin.Context) {
	var req BookCreate
	if !bindJSON(c, &req) {
		return
	}
	book, err := bc.store.Create(c.Request.Context(), req.newBook())
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.auditor.LogCreate(actorFrom(c), entityBook, book.ID, book.Title)
	c.JSON(http.StatusCreated, newBookResponse(book))
}

// Replace handles PUT /books/:id/. Every base field is required and an
// omitted image_file clears the cover.
func (bc *BooksController) Replace(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req BookCreate
	if !bindJSON(c, &req) {
		return
	}
	book, err := bc.store.Replace(c.Request.Context(), id, req.newBook())
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.auditor.LogUpdate(actorFrom(c), entityBook, book.ID, book.Title)
	c.JSON(http.StatusOK, newBookResponse(book))
}

// Update handles PATCH /books/:id/
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req BookUpdate
	if !bindJSON(c, &req) {
		return
	}
	book, err := bc.store.Update(c.Request.Context(), id, req.changes())
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.auditor.LogUpdate(actorFrom(c), entityBook, book.ID, book.Title)
	c.JSON(http.StatusOK, newBookResponse(book))
}

// Delete handles DELETE /books/:id/
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := bc.store.Delete(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}
	bc.auditor.LogDelete(actorFrom(c), entityBook, id, "")
	c.Status(http.StatusNoContent)
}

// AttachTag handles POST /books/:id/tags/:tag_id/
func (bc *BooksController) AttachTag(c *gin.Context) {
	bookID, tagID, ok := parseBookTagParams(c)
	if !ok {
		return
	}
	book, err := bc.store.AttachTag(c.Request.Context(), bookID, tagID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.auditor.LogUpdate(actorFrom(c), entityBook, book.ID, book.Title)
	c.JSON(http.StatusCreated, newBookResponse(book))
}

// DetachTag handles DELETE /books/:id/tags/:tag_id/
func (bc *BooksController) DetachTag(c *gin.Context) {
	bookID, tagID, ok := parseBookTagParams(c)
	if !ok {
		return
	}
	book, err := bc.store.DetachTag(c.Request.Context(), bookID, tagID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.auditor.LogUpdate(actorFrom(c), entityBook, book.ID, book.Title)
	c.JSON(http.StatusOK, newBookResponse(book))
}

func parseBookTagParams(c *gin.Context) (bookID, tagID uint, ok bool) {
	if bookID, ok = parseIDParam(c, "id"); !ok {
		return 0, 0, false
	}
	if tagID, ok = parseIDParam(c, "tag_id"); !ok {
		return 0, 0, false
	}
	return bookID, tagID, true
}
