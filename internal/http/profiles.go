package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/database/profiles"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

const entityProfile = "profile"

// ProfileStore defines the profile operations the controller needs.
type ProfileStore interface {
	Create(ctx context.Context, in profiles.NewProfile) (*entities.Profile, error)
	List(ctx context.Context) ([]entities.Profile, error)
	GetByAuthor(ctx context.Context, authorID uint) (*entities.Profile, error)
	UpdateByAuthor(ctx context.Context, authorID uint, changes profiles.Changes) (*entities.Profile, error)
	DeleteByAuthor(ctx context.Context, authorID uint) error
}

type ProfilesController struct {
	store   ProfileStore
	auditor AuditLogger
}

func NewProfilesController(store ProfileStore, auditor AuditLogger) *ProfilesController {
	return &ProfilesController{store: store, auditor: orNoop(auditor)}
}

// Create handles POST /profiles/
func (pc *ProfilesController) Create(c *gin.Context) {
	var req ProfileCreate
	if !bindJSON(c, &req) {
		return
	}
	pc.create(c, profiles.NewProfile{
		AuthorID:  req.AuthorID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
}

// CreateMine handles POST /profiles/me/ for the authenticated author.
func (pc *ProfilesController) CreateMine(c *gin.Context) {
	var req ProfileMeCreate
	if !bindJSON(c, &req) {
		return
	}
	pc.create(c, profiles.NewProfile{
		AuthorID:  auth.GetAuthorID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
}

func (pc *ProfilesController) create(c *gin.Context, in profiles.NewProfile) {
	profile, err := pc.store.Create(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	pc.auditor.LogCreate(actorFrom(c), entityProfile, profile.ID, "")
	c.JSON(http.StatusCreated, newProfileResponse(profile))
}

// List handles GET /profiles/
func (pc *ProfilesController) List(c *gin.Context) {
	list, err := pc.store.List(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	out := make([]ProfileResponse, 0, len(list))
	for i := range list {
		out = append(out, newProfileResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetByAuthor handles GET /profiles/author/:author_id/
func (pc *ProfilesController) GetByAuthor(c *gin.Context) {
	authorID, ok := parseIDParam(c, "author_id")
	if !ok {
		return
	}
	pc.get(c, authorID)
}

// GetMine handles GET /profiles/me/
func (pc *ProfilesController) GetMine(c *gin.Context) {
	pc.get(c, auth.GetAuthorID(c))
}

func (pc *ProfilesController) get(c *gin.Context, authorID uint) {
	profile, err := pc.store.GetByAuthor(c.Request.Context(), authorID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// UpdateMine handles PATCH /profiles/me/
func (pc *ProfilesController) UpdateMine(c *gin.Context) {
	var req ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	profile, err := pc.store.UpdateByAuthor(c.Request.Context(), auth.GetAuthorID(c), profiles.Changes{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	pc.auditor.LogUpdate(actorFrom(c), entityProfile, profile.ID, "")
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// DeleteMine handles DELETE /profiles/me/
func (pc *ProfilesController) DeleteMine(c *gin.Context) {
	authorID := auth.GetAuthorID(c)
	if err := pc.store.DeleteByAuthor(c.Request.Context(), authorID); err != nil {
		respondAppError(c, err)
		return
	}
	pc.auditor.LogDelete(actorFrom(c), entityProfile, authorID, "")
	c.Status(http.StatusNoContent)
}
