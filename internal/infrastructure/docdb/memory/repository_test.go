package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/core/docdb"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/infrastructure/docdb/memory"
)

func seedPosts(t *testing.T, repo docdb.Repository[models.Post]) time.Time {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []models.Post{
		{ID: "p1", OwnerID: "alice", Title: "one", Visibility: models.VisibilityPublic, CreatedAt: base},
		{ID: "p2", OwnerID: "bob", Title: "two", Visibility: models.VisibilityPublic, CreatedAt: base.Add(time.Hour)},
		{ID: "p3", OwnerID: "alice", Title: "three", Visibility: models.VisibilityPrivate, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range posts {
		require.NoError(t, repo.Add(context.Background(), &posts[i]))
	}
	return base
}

func TestRepository_GetByID(t *testing.T) {
	repo := memory.NewRepository[models.Post]("post")
	seedPosts(t, repo)

	got, err := repo.GetByID(context.Background(), "p2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "two", got.Title)

	missing, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_AddDuplicate(t *testing.T) {
	repo := memory.NewRepository[models.Post]("post")
	seedPosts(t, repo)

	err := repo.Add(context.Background(), &models.Post{ID: "p1"})
	assert.True(t, errors.Is(err, docdb.ErrDuplicate))
}

func TestRepository_FindFilterSortPage(t *testing.T) {
	repo := memory.NewRepository[models.Post]("post")
	seedPosts(t, repo)
	ctx := context.Background()

	found, err := repo.Find(ctx, docdb.Filter{"ownerId": "alice"}, &docdb.FindOptions{
		SortBy:  "createdAt",
		OrderBy: docdb.SortOrderDesc,
	})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "p3", found[0].ID)
	assert.Equal(t, "p1", found[1].ID)

	found, err = repo.Find(ctx, docdb.Filter{"visibility": models.VisibilityPublic}, &docdb.FindOptions{
		SortBy: "createdAt",
		Skip:   1,
		Limit:  5,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p2", found[0].ID)

	found, err = repo.Find(ctx, docdb.Filter{"ownerId": []string{"bob", "carol"}}, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p2", found[0].ID)

	n, err := repo.Count(ctx, docdb.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRepository_UpdateAndRemove(t *testing.T) {
	repo := memory.NewRepository[models.Post]("post")
	seedPosts(t, repo)
	ctx := context.Background()

	ok, err := repo.Update(ctx, "p1", &models.Post{ID: "p1", OwnerID: "alice", Title: "edited"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)

	ok, err = repo.Update(ctx, "nope", &models.Post{ID: "nope"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Remove(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Remove(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, repo.SaveChanges(ctx))
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo := memory.NewRepository[models.Post]("post")
	seedPosts(t, repo)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "one", again.Title)
}
