package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/database/genres"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

const entityGenre = "genre"

// GenreStore defines the genre operations the controller needs.
type GenreStore interface {
	List(ctx context.Context) ([]entities.Genre, error)
	Get(ctx context.Context, id uint) (*entities.Genre, error)
	GetWithBooks(ctx context.Context, id uint) (*entities.Genre, error)
	Create(ctx context.Context, name string) (*entities.Genre, error)
	Update(ctx context.Context, id uint, changes genres.Changes) (*entities.Genre, error)
	Delete(ctx context.Context, id uint) error
}

type GenresController struct {
	store   GenreStore
	auditor AuditLogger
}

func NewGenresController(store GenreStore, auditor AuditLogger) *GenresController {
	return &GenresController{store: store, auditor: orNoop(auditor)}
}

// List handles GET /genres/
func (gc *GenresController) List(c *gin.Context) {
	list, err := gc.store.List(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	out := make([]GenreResponse, 0, len(list))
	for i := range list {
		out = append(out, newGenreResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /genres/:id/
func (gc *GenresController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	genre, err := gc.store.Get(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGenreResponse(genre))
}

// WithBooks handles GET /genres/:id/with_books/
func (gc *GenresController) WithBooks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	genre, err := gc.store.GetWithBooks(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}

	resp := GenreWithBooksResponse{
		GenreResponse: newGenreResponse(genre),
		Books:         make([]BookSummary, 0, len(genre.Books)),
	}
	for i := range genre.Books {
		resp.Books = append(resp.Books, newBookSummary(&genre.Books[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /genres/
func (gc *GenresController) Create(c *gin.Context) {
	var req GenreCreate
	if !bindJSON(c, &req) {
		return
	}
	genre, err := gc.store.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondAppError(c, err)
		return
	}
	gc.auditor.LogCreate(actorFrom(c), entityGenre, genre.ID, genre.Name)
	c.JSON(http.StatusCreated, newGenreResponse(genre))
}

// Update handles PATCH /genres/:id/
func (gc *GenresController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req GenreUpdate
	if !bindJSON(c, &req) {
		return
	}
	genre, err := gc.store.Update(c.Request.Context(), id, genres.Changes{Name: req.Name})
	if err != nil {
		respondAppError(c, err)
		return
	}
	gc.auditor.LogUpdate(actorFrom(c), entityGenre, genre.ID, genre.Name)
	c.JSON(http.StatusOK, newGenreResponse(genre))
}

// Delete handles DELETE /genres/:id/. The genre's books go with it.
func (gc *GenresController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := gc.store.Delete(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}
	gc.auditor.LogDelete(actorFrom(c), entityGenre, id, "")
	c.Status(http.StatusNoContent)
}
