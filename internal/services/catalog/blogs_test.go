package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/catalog"
	"github.com/wayfarer/content-service/tests/testutils"
)

func TestBlogService_SlugIndex(t *testing.T) {
	mr, db, cfg := setupConfig(t)
	svc, err := catalog.NewBlogService(db.Blogs(), cfg)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, testutils.TestOwnerID, &models.Blog{Slug: "first-trip", Title: "First trip"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, mr.HGet("blog_slugs", "first-trip"))

	got, err := svc.GetBySlug(ctx, "first-trip")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Create(ctx, testutils.TestViewerID, &models.Blog{Slug: "first-trip", Title: "Copy"})
	assert.True(t, domainerrors.IsConflict(err))

	_, err = svc.Update(ctx, testutils.TestOwnerID, created.ID, &models.Blog{Slug: "renamed-trip", Title: "First trip"})
	require.NoError(t, err)
	assert.Empty(t, mr.HGet("blog_slugs", "first-trip"))

	_, err = svc.GetBySlug(ctx, "first-trip")
	assert.True(t, domainerrors.IsNotFound(err))

	got, err = svc.GetBySlug(ctx, "renamed-trip")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, testutils.TestOwnerID, created.ID))
	assert.Empty(t, mr.HGet("blog_slugs", "renamed-trip"))
}

func TestBlogService_SlugIndexRebuiltFromStore(t *testing.T) {
	mr, db, cfg := setupConfig(t)
	svc, err := catalog.NewBlogService(db.Blogs(), cfg)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, testutils.TestOwnerID, &models.Blog{Slug: "lost-index", Title: "Lost"})
	require.NoError(t, err)
	mr.Del("blog_slugs")

	got, err := svc.GetBySlug(ctx, "lost-index")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.ID, mr.HGet("blog_slugs", "lost-index"))
}

func TestBlogService_StaleIndexEntryIsIgnored(t *testing.T) {
	mr, db, cfg := setupConfig(t)
	svc, err := catalog.NewBlogService(db.Blogs(), cfg)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, testutils.TestOwnerID, &models.Blog{Slug: "real", Title: "Real"})
	require.NoError(t, err)
	mr.HSet("blog_slugs", "ghost", created.ID)

	_, err = svc.GetBySlug(ctx, "ghost")
	assert.True(t, domainerrors.IsNotFound(err))
}
