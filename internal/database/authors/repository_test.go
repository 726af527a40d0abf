package authors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database/dbtest"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	db := dbtest.Open(t)
	return NewRepository(db), db
}

func createAuthor(t *testing.T, repo *Repository, username, email string) *entities.Author {
	t.Helper()
	author, err := repo.Create(context.Background(), NewAuthor{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return author
}

func TestRepository_Create(t *testing.T) {
	repo, _ := setupTestDB(t)

	author := createAuthor(t, repo, "Jane", "Jane@Example.com")

	assert.NotZero(t, author.ID)
	assert.Equal(t, "Jane", author.Username)
	assert.Equal(t, "jane@example.com", author.Email)
	assert.True(t, author.IsActive)
	assert.False(t, author.IsSuperuser)
}

func TestRepository_Create_Conflicts(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	createAuthor(t, repo, "jane", "jane@example.com")

	t.Run("username differs only by case", func(t *testing.T) {
		_, err := repo.Create(ctx, NewAuthor{Username: "JANE", Email: "other@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("email differs only by case", func(t *testing.T) {
		_, err := repo.Create(ctx, NewAuthor{Username: "other", Email: "JANE@EXAMPLE.COM", PasswordHash: "x"})
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, ErrEmailTaken, err)
	})

	var count int64
	require.NoError(t, db.Model(&entities.Author{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_List(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()
	createAuthor(t, repo, "carol", "carol@example.com")
	createAuthor(t, repo, "alice", "alice@example.com")
	createAuthor(t, repo, "bob", "bob@example.com")

	all, err := repo.List(ctx, 20, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "bob", all[1].Username)
	assert.Equal(t, "carol", all[2].Username)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Username)
}

func TestRepository_Get(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()
	created := createAuthor(t, repo, "jane", "jane@example.com")

	author, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", author.Username)

	_, err = repo.Get(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	byEmail, err := repo.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	exists, err := repo.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_Update(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()
	jane := createAuthor(t, repo, "jane", "jane@example.com")
	createAuthor(t, repo, "john", "john@example.com")

	t.Run("applies only supplied fields", func(t *testing.T) {
		updated, err := repo.Update(ctx, jane.ID, Changes{
			Email:     patch.Some("Jane.Doe@Example.com"),
			ImageFile: patch.Value("jane.png"),
		})
		require.NoError(t, err)
		assert.Equal(t, "jane", updated.Username)
		assert.Equal(t, "jane.doe@example.com", updated.Email)
		assert.Equal(t, "hash", updated.PasswordHash)
		require.NotNil(t, updated.ImageFile)
		assert.Equal(t, "jane.png", *updated.ImageFile)
	})

	t.Run("keeps own username", func(t *testing.T) {
		updated, err := repo.Update(ctx, jane.ID, Changes{Username: patch.Some("JANE")})
		require.NoError(t, err)
		assert.Equal(t, "JANE", updated.Username)
	})

	t.Run("rejects another author's username", func(t *testing.T) {
		_, err := repo.Update(ctx, jane.ID, Changes{Username: patch.Some("John")})
		assert.ErrorIs(t, err, ErrUsernameTaken)

		author, err := repo.Get(ctx, jane.ID)
		require.NoError(t, err)
		assert.Equal(t, "JANE", author.Username)
	})

	t.Run("rejects another author's email", func(t *testing.T) {
		_, err := repo.Update(ctx, jane.ID, Changes{Email: patch.Some("john@example.com")})
		assert.Equal(t, ErrEmailTaken, err)
	})

	t.Run("clears image and deactivates", func(t *testing.T) {
		updated, err := repo.Update(ctx, jane.ID, Changes{
			ImageFile:    patch.Null[string](),
			IsActive:     patch.Some(false),
			PasswordHash: patch.Some("new-hash"),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.ImageFile)
		assert.False(t, updated.IsActive)
		assert.Equal(t, "new-hash", updated.PasswordHash)
	})

	t.Run("missing author", func(t *testing.T) {
		_, err := repo.Update(ctx, 9999, Changes{Username: patch.Some("ghost")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_Delete_Cascades(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	jane := createAuthor(t, repo, "jane", "jane@example.com")
	john := createAuthor(t, repo, "john", "john@example.com")

	genre := entities.Genre{Name: "Fiction"}
	require.NoError(t, db.Create(&genre).Error)
	tag := entities.Tag{Name: "classic"}
	require.NoError(t, db.Create(&tag).Error)
	janesBook := entities.Book{Title: "Jane's", GenreID: genre.ID, AuthorID: jane.ID, DatePublished: time.Now(), Tags: []entities.Tag{tag}}
	require.NoError(t, db.Create(&janesBook).Error)
	johnsBook := entities.Book{Title: "John's", GenreID: genre.ID, AuthorID: john.ID, DatePublished: time.Now()}
	require.NoError(t, db.Create(&johnsBook).Error)
	require.NoError(t, db.Create(&entities.Profile{AuthorID: jane.ID}).Error)
	require.NoError(t, db.Create(&entities.Order{AuthorID: jane.ID, OrderedAt: time.Now(), Lines: []entities.BookOrder{{BookID: johnsBook.ID, Quantity: 1}}}).Error)
	johnsOrder := entities.Order{AuthorID: john.ID, OrderedAt: time.Now(), Lines: []entities.BookOrder{
		{BookID: janesBook.ID, Quantity: 2},
		{BookID: johnsBook.ID, Quantity: 1},
	}}
	require.NoError(t, db.Create(&johnsOrder).Error)

	require.NoError(t, repo.Delete(ctx, jane.ID))

	count := func(model any, query string, args ...any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&entities.Author{}, "id = ?", jane.ID))
	assert.Zero(t, count(&entities.Profile{}, "author_id = ?", jane.ID))
	assert.Zero(t, count(&entities.Book{}, "author_id = ?", jane.ID))
	assert.Zero(t, count(&entities.Order{}, "author_id = ?", jane.ID))
	assert.Equal(t, int64(1), count(&entities.Tag{}, "id = ?", tag.ID))
	assert.Equal(t, int64(1), count(&entities.BookOrder{}, "order_id = ?", johnsOrder.ID))

	var links int64
	require.NoError(t, db.Table(entities.BookTagsTable).Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, repo.Delete(ctx, jane.ID), ErrNotFound)
}
