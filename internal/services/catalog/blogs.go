package catalog

import (
	"context"

	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/core/docdb"
	domainerrors "github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
)

// slugIndexKey is the hash mapping blog slugs to blog IDs.
const slugIndexKey = "blog_slugs"

// BlogService adds slug addressing to the blog catalog. Slugs resolve
// through a cached hash; the hash is a lookup aid only and every hit is
// confirmed against the loaded blog.
type BlogService struct {
	*Service[models.Blog, *models.Blog]
	slugs *cache.Typed[string]
}

// NewBlogService creates the blog service.
func NewBlogService(repo docdb.Repository[models.Blog], cfg Config) (*BlogService, error) {
	base, err := NewService[models.Blog, *models.Blog]("blog", repo, cfg)
	if err != nil {
		return nil, err
	}
	return &BlogService{
		Service: base,
		slugs:   cache.NewTyped[string](cfg.Store, cache.StringCodec{}, cache.Options{Logger: &base.logger, Observer: cfg.Observer}),
	}, nil
}

// GetBySlug returns the blog published under slug.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	id, found, err := s.slugs.HashGet(ctx, slugIndexKey, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("slug index unreadable")
	}
	if err == nil && found {
		blog, err := s.Get(ctx, id)
		if err == nil && blog.Slug == slug {
			return blog, nil
		}
		if err != nil && !domainerrors.IsNotFound(err) {
			return nil, err
		}
	}

	blogs, err := s.repo.Find(ctx, docdb.Filter{"slug": slug}, &docdb.FindOptions{Limit: 1})
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to load blog", err)
	}
	if len(blogs) == 0 {
		return nil, domainerrors.NewNotFoundError("blog", slug)
	}

	blog := blogs[0]
	s.indexSlug(ctx, blog.Slug, blog.ID)
	return blog, nil
}

// Create stores a blog after checking its slug is free.
func (s *BlogService) Create(ctx context.Context, viewer string, blog *models.Blog) (*models.Blog, error) {
	if err := s.ensureSlugFree(ctx, blog.Slug, ""); err != nil {
		return nil, err
	}
	created, err := s.Service.Create(ctx, viewer, blog)
	if err != nil {
		return nil, err
	}
	s.indexSlug(ctx, created.Slug, created.ID)
	return created, nil
}

// Update replaces a blog and moves its slug index entry.
func (s *BlogService) Update(ctx context.Context, viewer, id string, blog *models.Blog) (*models.Blog, error) {
	if err := s.ensureSlugFree(ctx, blog.Slug, id); err != nil {
		return nil, err
	}
	previous, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.Service.Update(ctx, viewer, id, blog)
	if err != nil {
		return nil, err
	}
	if previous.Slug != updated.Slug {
		s.unindexSlug(ctx, previous.Slug)
	}
	s.indexSlug(ctx, updated.Slug, updated.ID)
	return updated, nil
}

// Delete removes a blog and its slug index entry.
func (s *BlogService) Delete(ctx context.Context, viewer, id string) error {
	previous, err := s.owned(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.Service.Delete(ctx, viewer, id); err != nil {
		return err
	}
	s.unindexSlug(ctx, previous.Slug)
	return nil
}

func (s *BlogService) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	if slug == "" {
		return nil
	}
	existing, err := s.repo.Find(ctx, docdb.Filter{"slug": slug}, &docdb.FindOptions{Limit: 1})
	if err != nil {
		return domainerrors.NewInternalError("failed to check blog slug", err)
	}
	if len(existing) > 0 && existing[0].ID != selfID {
		return domainerrors.NewConflictError("slug already in use", slug)
	}
	return nil
}

func (s *BlogService) indexSlug(ctx context.Context, slug, id string) {
	if _, err := s.slugs.HashSet(ctx, slugIndexKey, map[string]string{slug: id}); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("failed to index blog slug")
	}
}

func (s *BlogService) unindexSlug(ctx context.Context, slug string) {
	if _, err := s.slugs.HashDelete(ctx, slugIndexKey, slug); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("failed to drop blog slug from index")
	}
}
