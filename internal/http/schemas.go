package http

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin/binding"

	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
	"github.com/Paul-Starodub/fast-library/internal/validation"
)

// Request bodies are validated by gin's binding with the "binding" tag rules
// below, using JSON field names in error details.
func init() {
	v := validation.New()
	v.RegisterValuers(Timestamp{}, patch.Field[Timestamp]{})
	binding.Validator = v
}

// Timestamp accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Timestamp struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time)
}

// ValidationValue lets "required" treat the zero time as missing.
func (t Timestamp) ValidationValue() any {
	if t.IsZero() {
		return nil
	}
	return t.Time
}

// --- Authors ---

type AuthorCreate struct {
	Username  string  `json:"username" binding:"required,min=1,max=50"`
	Email     string  `json:"email" binding:"required,email,max=50"`
	Password  string  `json:"password" binding:"required,min=8,max=72"`
	ImageFile *string `json:"image_file" binding:"omitempty,min=1,max=200"`
}

type AuthorUpdate struct {
	Username  patch.Field[string]    `json:"username" binding:"omitnil,min=1,max=50"`
	Email     patch.Field[string]    `json:"email" binding:"omitnil,email,max=50"`
	Password  patch.Field[string]    `json:"password" binding:"omitnil,min=8,max=72"`
	ImageFile patch.Nullable[string] `json:"image_file" binding:"omitnil,min=1,max=200"`
	IsActive  patch.Field[bool]      `json:"is_active"` // superusers only
}

// LoginRequest accepts the OAuth2 password form (username holds the email)
// or the same fields as JSON.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthorPublic is what anyone may see about an author.
type AuthorPublic struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	ImageFile *string `json:"image_file"`
	ImagePath string  `json:"image_path"`
}

// AuthorPrivate adds account details shown to the author and on writes.
type AuthorPrivate struct {
	AuthorPublic
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

func newAuthorPublic(a *entities.Author) AuthorPublic {
	return AuthorPublic{
		ID:        a.ID,
		Username:  a.Username,
		ImageFile: a.ImageFile,
		ImagePath: a.ImagePath(),
	}
}

func newAuthorPrivate(a *entities.Author) AuthorPrivate {
	return AuthorPrivate{
		AuthorPublic: newAuthorPublic(a),
		Email:        a.Email,
		IsActive:     a.IsActive,
		IsSuperuser:  a.IsSuperuser,
	}
}

// --- Profiles ---

type ProfileCreate struct {
	AuthorID  uint    `json:"author_id" binding:"required"`
	FirstName *string `json:"first_name" binding:"omitempty,max=40"`
	LastName  *string `json:"last_name" binding:"omitempty,max=40"`
	Bio       *string `json:"bio"`
}

// ProfileMeCreate is ProfileCreate for the authenticated author.
type ProfileMeCreate struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=40"`
	LastName  *string `json:"last_name" binding:"omitempty,max=40"`
	Bio       *string `json:"bio"`
}

type ProfileUpdate struct {
	FirstName patch.Nullable[string] `json:"first_name" binding:"omitnil,max=40"`
	LastName  patch.Nullable[string] `json:"last_name" binding:"omitnil,max=40"`
	Bio       patch.Nullable[string] `json:"bio"`
}

type ProfileResponse struct {
	ID        uint          `json:"id"`
	FirstName *string       `json:"first_name"`
	LastName  *string       `json:"last_name"`
	Bio       *string       `json:"bio"`
	AuthorID  uint          `json:"author_id"`
	Author    *AuthorPublic `json:"author,omitempty"`
}

func newProfileResponse(p *entities.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
		AuthorID:  p.AuthorID,
	}
	if p.Author != nil {
		author := newAuthorPublic(p.Author)
		resp.Author = &author
	}
	return resp
}

// --- Genres ---

type GenreCreate struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

type GenreUpdate struct {
	Name patch.Field[string] `json:"name" binding:"omitnil,min=1,max=50"`
}

type GenreResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type GenreWithBooksResponse struct {
	GenreResponse
	Books []BookSummary `json:"books"`
}

func newGenreResponse(g *entities.Genre) GenreResponse {
	return GenreResponse{ID: g.ID, Name: g.Name}
}

// --- Tags ---

type TagCreate struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

type TagResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func newTagResponse(t entities.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

// --- Books ---

// BookCreate is used for POST and for the full replacement done by PUT.
type BookCreate struct {
	Title         string    `json:"title" binding:"required,min=1,max=100"`
	Rating        *int      `json:"rating" binding:"required,gte=0,lte=5"`
	DatePublished Timestamp `json:"date_published" binding:"required"`
	ImageFile     *string   `json:"image_file" binding:"omitempty,min=1,max=200"`
	GenreID       uint      `json:"genre_id" binding:"required"`
	AuthorID      uint      `json:"author_id" binding:"required"`
}

type BookUpdate struct {
	Title         patch.Field[string]    `json:"title" binding:"omitnil,min=1,max=100"`
	Rating        patch.Field[int]       `json:"rating" binding:"omitnil,gte=0,lte=5"`
	DatePublished patch.Field[Timestamp] `json:"date_published" binding:"omitnil"`
	ImageFile     patch.Nullable[string] `json:"image_file" binding:"omitnil,min=1,max=200"`
	GenreID       patch.Field[uint]      `json:"genre_id" binding:"omitnil,gte=1"`
	AuthorID      patch.Field[uint]      `json:"author_id" binding:"omitnil,gte=1"`
}

// BookSummary is a book with its author, as listed under a genre.
type BookSummary struct {
	ID            uint          `json:"id"`
	Title         string        `json:"title"`
	Rating        int           `json:"rating"`
	DatePublished time.Time     `json:"date_published"`
	ImageFile     *string       `json:"image_file"`
	ImagePath     string        `json:"image_path"`
	GenreID       uint          `json:"genre_id"`
	AuthorID      uint          `json:"author_id"`
	Author        *AuthorPublic `json:"author,omitempty"`
}

type BookResponse struct {
	BookSummary
	Genre *GenreResponse `json:"genre"`
	Tags  []TagResponse  `json:"tags"`
}

func newBookSummary(b *entities.Book) BookSummary {
	s := BookSummary{
		ID:            b.ID,
		Title:         b.Title,
		Rating:        b.Rating,
		DatePublished: b.DatePublished,
		ImageFile:     b.ImageFile,
		ImagePath:     b.ImagePath(),
		GenreID:       b.GenreID,
		AuthorID:      b.AuthorID,
	}
	if b.Author != nil {
		author := newAuthorPublic(b.Author)
		s.Author = &author
	}
	return s
}

func newBookResponse(b *entities.Book) BookResponse {
	resp := BookResponse{
		BookSummary: newBookSummary(b),
		Tags:        make([]TagResponse, 0, len(b.Tags)),
	}
	if b.Genre != nil {
		genre := newGenreResponse(b.Genre)
		resp.Genre = &genre
	}
	for _, t := range b.Tags {
		resp.Tags = append(resp.Tags, newTagResponse(t))
	}
	return resp
}

// --- Orders ---

type OrderLineIn struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gte=1"`
}

type OrderCreate struct {
	AuthorID uint          `json:"author_id" binding:"required"`
	Books    []OrderLineIn `json:"books" binding:"required,min=1,dive"`
}

type OrderLineResponse struct {
	Book     BookResponse `json:"book"`
	Quantity int          `json:"quantity"`
}

type OrderResponse struct {
	ID        uint                `json:"id"`
	Author    *AuthorPublic       `json:"author"`
	Books     []OrderLineResponse `json:"books"`
	OrderedAt time.Time           `json:"ordered_at"`
}

func newOrderResponse(o *entities.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		Books:     make([]OrderLineResponse, 0, len(o.Lines)),
		OrderedAt: o.OrderedAt,
	}
	if o.Author != nil {
		author := newAuthorPublic(o.Author)
		resp.Author = &author
	}
	for _, line := range o.Lines {
		out := OrderLineResponse{Quantity: line.Quantity}
		if line.Book != nil {
			out.Book = newBookResponse(line.Book)
		}
		resp.Books = append(resp.Books, out)
	}
	return resp
}

// --- Audit ---

type AuditEventsResponse struct {
	Events []entities.AuditEvent `json:"events"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type TaskResponse struct {
	ID     string `json:"id"`
	Queue  string `json:"queue,omitempty"`
	Status string `json:"status"`
}
