package books

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/database/dbtest"
	"github.com/Paul-Starodub/fast-library/internal/database/genres"
	"github.com/Paul-Starodub/fast-library/internal/database/tags"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

type fixture struct {
	repo   *Repository
	db     *gorm.DB
	author entities.Author
	genre  entities.Genre
}

func setupTestDB(t *testing.T) fixture {
	db := dbtest.Open(t)

	author := entities.Author{Username: "jane", Email: "jane@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Create(&author).Error)
	genre := entities.Genre{Name: "Drama"}
	require.NoError(t, db.Create(&genre).Error)

	return fixture{repo: NewRepository(db), db: db, author: author, genre: genre}
}

var published = time.Date(1603, time.January, 1, 0, 0, 0, 0, time.UTC)

func (f fixture) newBook(title string) NewBook {
	return NewBook{
		Title:         title,
		Rating:        3,
		DatePublished: published,
		GenreID:       f.genre.ID,
		AuthorID:      f.author.ID,
	}
}

func (f fixture) create(t *testing.T, title string) *entities.Book {
	t.Helper()
	book, err := f.repo.Create(context.Background(), f.newBook(title))
	require.NoError(t, err)
	return book
}

func TestRepository_Create(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	book := f.create(t, "Hamlet")
	assert.NotZero(t, book.ID)
	assert.Equal(t, 3, book.Rating)
	require.NotNil(t, book.Genre)
	assert.Equal(t, "Drama", book.Genre.Name)
	require.NotNil(t, book.Author)
	assert.Equal(t, "jane", book.Author.Username)
	assert.Empty(t, book.Tags)

	t.Run("duplicate title", func(t *testing.T) {
		_, err := f.repo.Create(ctx, f.newBook("Hamlet"))
		assert.ErrorIs(t, err, ErrTitleTaken)
	})

	t.Run("unknown genre", func(t *testing.T) {
		in := f.newBook("Othello")
		in.GenreID = 9999
		_, err := f.repo.Create(ctx, in)
		assert.ErrorIs(t, err, genres.ErrNotFound)
	})

	t.Run("unknown author", func(t *testing.T) {
		in := f.newBook("Othello")
		in.AuthorID = 9999
		_, err := f.repo.Create(ctx, in)
		assert.ErrorIs(t, err, authors.ErrNotFound)
	})

	var count int64
	require.NoError(t, f.db.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ListAndGet(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	f.create(t, "Macbeth")
	hamlet := f.create(t, "Hamlet")

	books, err := f.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Hamlet", books[0].Title)
	assert.Equal(t, "Macbeth", books[1].Title)
	require.NotNil(t, books[0].Genre)

	book, err := f.repo.Get(ctx, hamlet.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hamlet", book.Title)

	_, err = f.repo.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Update_Partial(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.create(t, "Hamlet")

	updated, err := f.repo.Update(ctx, book.ID, Changes{Rating: patch.Some(4)})
	require.NoError(t, err)

	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "Hamlet", updated.Title)
	assert.Equal(t, f.genre.ID, updated.GenreID)
	assert.Equal(t, f.author.ID, updated.AuthorID)
	assert.True(t, published.Equal(updated.DatePublished))
}

func TestRepository_Update_Title(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	hamlet := f.create(t, "Hamlet")
	f.create(t, "Macbeth")

	same, err := f.repo.Update(ctx, hamlet.ID, Changes{Title: patch.Some("Hamlet")})
	require.NoError(t, err)
	assert.Equal(t, "Hamlet", same.Title)

	_, err = f.repo.Update(ctx, hamlet.ID, Changes{Title: patch.Some("Macbeth"), Rating: patch.Some(1)})
	assert.ErrorIs(t, err, ErrTitleTaken)

	unchanged, err := f.repo.Get(ctx, hamlet.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hamlet", unchanged.Title)
	assert.Equal(t, 3, unchanged.Rating)

	_, err = f.repo.Update(ctx, 9999, Changes{Rating: patch.Some(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.repo.Update(ctx, hamlet.ID, Changes{GenreID: patch.Some(uint(9999))})
	assert.ErrorIs(t, err, genres.ErrNotFound)
}

func TestRepository_Replace(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	in := f.newBook("Hamlet")
	cover := "hamlet.jpg"
	in.ImageFile = &cover
	created, err := f.repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, created.ImageFile)

	other := entities.Genre{Name: "Tragedy"}
	require.NoError(t, f.db.Create(&other).Error)

	replacement := NewBook{
		Title:         "Hamlet, Prince of Denmark",
		Rating:        0,
		DatePublished: published.AddDate(1, 0, 0),
		GenreID:       other.ID,
		AuthorID:      f.author.ID,
	}
	replaced, err := f.repo.Replace(ctx, created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, "Hamlet, Prince of Denmark", replaced.Title)
	assert.Zero(t, replaced.Rating)
	assert.Nil(t, replaced.ImageFile)
	assert.Equal(t, other.ID, replaced.GenreID)
	require.NotNil(t, replaced.Genre)
	assert.Equal(t, "Tragedy", replaced.Genre.Name)
}

func TestRepository_Delete(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.create(t, "Hamlet")
	tagRepo := tags.NewRepository(f.db)

	for _, name := range []string{"classic", "tragedy"} {
		tag, err := tagRepo.Create(ctx, name)
		require.NoError(t, err)
		_, err = f.repo.AttachTag(ctx, book.ID, tag.ID)
		require.NoError(t, err)
	}
	order := entities.Order{AuthorID: f.author.ID, OrderedAt: time.Now(), Lines: []entities.BookOrder{{BookID: book.ID, Quantity: 2}}}
	require.NoError(t, f.db.Create(&order).Error)

	require.NoError(t, f.repo.Delete(ctx, book.ID))

	var links, lines, tagCount int64
	require.NoError(t, f.db.Table(entities.BookTagsTable).Count(&links).Error)
	require.NoError(t, f.db.Model(&entities.BookOrder{}).Count(&lines).Error)
	require.NoError(t, f.db.Model(&entities.Tag{}).Count(&tagCount).Error)
	assert.Zero(t, links)
	assert.Zero(t, lines)
	assert.Equal(t, int64(2), tagCount)

	assert.ErrorIs(t, f.repo.Delete(ctx, book.ID), ErrNotFound)
}

func TestRepository_AttachTag(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.create(t, "Hamlet")
	tag, err := tags.NewRepository(f.db).Create(ctx, "classic")
	require.NoError(t, err)

	withTag, err := f.repo.AttachTag(ctx, book.ID, tag.ID)
	require.NoError(t, err)
	require.Len(t, withTag.Tags, 1)
	assert.Equal(t, "classic", withTag.Tags[0].Name)

	t.Run("twice conflicts", func(t *testing.T) {
		_, err := f.repo.AttachTag(ctx, book.ID, tag.ID)
		assert.ErrorIs(t, err, ErrTagAttached)

		var links int64
		require.NoError(t, f.db.Table(entities.BookTagsTable).Count(&links).Error)
		assert.Equal(t, int64(1), links)
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := f.repo.AttachTag(ctx, 9999, tag.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := f.repo.AttachTag(ctx, book.ID, 9999)
		assert.ErrorIs(t, err, tags.ErrNotFound)
	})
}

func TestRepository_DetachTag(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.create(t, "Hamlet")
	tag, err := tags.NewRepository(f.db).Create(ctx, "classic")
	require.NoError(t, err)
	_, err = f.repo.AttachTag(ctx, book.ID, tag.ID)
	require.NoError(t, err)

	detached, err := f.repo.DetachTag(ctx, book.ID, tag.ID)
	require.NoError(t, err)
	assert.Empty(t, detached.Tags)

	_, err = f.repo.DetachTag(ctx, book.ID, tag.ID)
	assert.ErrorIs(t, err, ErrTagNotAttached)
}
