package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/entities"
)

const entityTag = "tag"

// TagStore defines the tag operations the controller needs.
type TagStore interface {
	List(ctx context.Context) ([]entities.Tag, error)
	Get(ctx context.Context, id uint) (*entities.Tag, error)
	Create(ctx context.Context, name string) (*entities.Tag, error)
	Rename(ctx context.Context, id uint, name string) (*entities.Tag, error)
	Delete(ctx context.Context, id uint) error
}

type TagsController struct {
	store   TagStore
	auditor AuditLogger
}

func NewTagsController(store TagStore, auditor AuditLogger) *TagsController {
	return &TagsController{store: store, auditor: orNoop(auditor)}
}

// List handles GET /tags/
func (tc *TagsController) List(c *gin.Context) {
	list, err := tc.store.List(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	out := make([]TagResponse, 0, len(list))
	for _, t := range list {
		out = append(out, newTagResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /tags/:id/
func (tc *TagsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tag, err := tc.store.Get(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponse(*tag))
}

// Create handles POST /tags/
func (tc *TagsController) Create(c *gin.Context) {
	var req TagCreate
	if !bindJSON(c, &req) {
		return
	}
	tag, err := tc.store.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondAppError(c, err)
		return
	}
	tc.auditor.LogCreate(actorFrom(c), entityTag, tag.ID, tag.Name)
	c.JSON(http.StatusCreated, newTagResponse(*tag))
}

// Replace handles PUT /tags/:id/. A tag only has a name, so the full
// replacement is a rename.
func (tc *TagsController) Replace(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req TagCreate
	if !bindJSON(c, &req) {
		return
	}
	tag, err := tc.store.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondAppError(c, err)
		return
	}
	tc.auditor.LogUpdate(actorFrom(c), entityTag, tag.ID, tag.Name)
	c.JSON(http.StatusOK, newTagResponse(*tag))
}

// Delete handles DELETE /tags/:id/
func (tc *TagsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := tc.store.Delete(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}
	tc.auditor.LogDelete(actorFrom(c), entityTag, id, "")
	c.Status(http.StatusNoContent)
}
