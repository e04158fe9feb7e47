package posts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wayfarer/content-service/internal/core/docdb"
	domainerrors "github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/invalidation"
)

// CreatePostInput holds the fields of a new post.
type CreatePostInput struct {
	Title      string
	Body       string
	MediaRef   string
	Tags       []string
	Visibility models.Visibility
	LocationID string
}

// UpdatePostInput holds the fields to change. Nil fields are left as is.
type UpdatePostInput struct {
	Title      *string
	Body       *string
	MediaRef   *string
	Tags       []string
	Visibility *models.Visibility
	LocationID *string
}

// Get returns a post with its aggregates as seen by viewer and records the
// view. Posts the viewer may not see are reported as not found.
func (s *Service) Get(ctx context.Context, viewer, id string) (*models.PostView, error) {
	post, err := s.loadVisible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	s.recordView(ctx, viewer, id)

	view, err := s.view(ctx, viewer, post)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// List returns one page of public posts.
func (s *Service) List(ctx context.Context, viewer string, q models.ListQuery) (*models.Page[models.PostView], error) {
	q = q.Normalize()
	key := listingKey(q, viewer, s.now(), s.listingBucket)
	filter := docdb.Filter{"visibility": string(models.VisibilityPublic)}
	return s.listing(ctx, key, viewer, filter, q)
}

// ListByOwner returns one page of ownerID's posts that viewer may see.
func (s *Service) ListByOwner(ctx context.Context, viewer, ownerID string, q models.ListQuery) (*models.Page[models.PostView], error) {
	if ownerID == "" {
		return nil, domainerrors.NewValidationError("owner is required", "")
	}
	q = q.Normalize()

	filter := docdb.Filter{"ownerId": ownerID}
	switch {
	case viewer == ownerID:
	case viewer == "":
		filter["visibility"] = string(models.VisibilityPublic)
	default:
		follows, err := s.isFollowing(ctx, viewer, ownerID)
		if err != nil {
			return nil, err
		}
		if follows {
			filter["visibility"] = []string{string(models.VisibilityPublic), string(models.VisibilityFollowers)}
		} else {
			filter["visibility"] = string(models.VisibilityPublic)
		}
	}

	key := ownerListingKey(ownerID, q, viewer, s.now(), s.listingBucket)
	return s.listing(ctx, key, viewer, filter, q)
}

// Feed returns one page of posts by the users viewer follows.
func (s *Service) Feed(ctx context.Context, viewer string, q models.ListQuery) (*models.Page[models.PostView], error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError("a viewer is required for the feed")
	}
	q = q.Normalize()
	key := feedKey(viewer, q, s.now(), s.listingBucket)

	page, err := s.listings.Load(ctx, key, func(ctx context.Context) (*models.Page[models.PostView], error) {
		followees, err := s.follows.Find(ctx, docdb.Filter{"followerId": viewer}, nil)
		if err != nil {
			return nil, domainerrors.NewInternalError("failed to load follows", err)
		}
		if len(followees) == 0 {
			return &models.Page[models.PostView]{Items: []models.PostView{}, Page: q.Page, PageSize: q.PageSize}, nil
		}

		owners := make([]string, 0, len(followees))
		for _, f := range followees {
			owners = append(owners, f.FolloweeID)
		}
		filter := docdb.Filter{
			"ownerId":    owners,
			"visibility": []string{string(models.VisibilityPublic), string(models.VisibilityFollowers)},
		}
		return s.fetchPage(ctx, viewer, filter, q)
	})
	if err != nil {
		return nil, err
	}
	return s.signPage(page), nil
}

// Create stores a new post owned by viewer and writes it through to the cache.
func (s *Service) Create(ctx context.Context, viewer string, input CreatePostInput) (*models.PostView, error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError("a viewer is required to create posts")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, domainerrors.NewValidationError("title is required", "")
	}
	if input.Visibility == "" {
		input.Visibility = models.VisibilityPublic
	}
	if !validVisibility(input.Visibility) {
		return nil, domainerrors.NewValidationError("invalid visibility", string(input.Visibility))
	}

	now := s.now().UTC()
	post := &models.Post{
		ID:         uuid.NewString(),
		OwnerID:    viewer,
		Title:      input.Title,
		Body:       input.Body,
		MediaRef:   input.MediaRef,
		Tags:       input.Tags,
		Visibility: input.Visibility,
		LocationID: input.LocationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.posts.Add(ctx, post); err != nil {
		return nil, domainerrors.NewInternalError("failed to create post", err)
	}
	if err := s.posts.SaveChanges(ctx); err != nil {
		return nil, domainerrors.NewInternalError("failed to save post", err)
	}

	if err := s.entities.Set(ctx, postKey(post.ID), *post); err != nil {
		s.logger.Warn().Err(err).Str("postId", post.ID).Msg("failed to write post through to cache")
	}
	s.invalidate(ctx, "post", post.ID, viewer, "create", invalidation.Plan{
		Patterns: listingPatterns(viewer),
	})

	return s.sign(models.PostView{Post: *post}), nil
}

// Update changes a post owned by viewer.
func (s *Service) Update(ctx context.Context, viewer, id string, input UpdatePostInput) (*models.PostView, error) {
	post, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, domainerrors.NewValidationError("title cannot be empty", "")
		}
		post.Title = *input.Title
	}
	if input.Body != nil {
		post.Body = *input.Body
	}
	if input.MediaRef != nil {
		post.MediaRef = *input.MediaRef
	}
	if input.Tags != nil {
		post.Tags = input.Tags
	}
	if input.Visibility != nil {
		if !validVisibility(*input.Visibility) {
			return nil, domainerrors.NewValidationError("invalid visibility", string(*input.Visibility))
		}
		post.Visibility = *input.Visibility
	}
	if input.LocationID != nil {
		post.LocationID = *input.LocationID
	}
	post.UpdatedAt = s.now().UTC()

	updated, err := s.posts.Update(ctx, id, post)
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to update post", err)
	}
	if !updated {
		return nil, domainerrors.NewNotFoundError("post", id)
	}
	if err := s.posts.SaveChanges(ctx); err != nil {
		return nil, domainerrors.NewInternalError("failed to save post", err)
	}

	s.invalidate(ctx, "post", id, post.OwnerID, "update", invalidation.Plan{
		Keys:     []string{postKey(id)},
		Patterns: listingPatterns(post.OwnerID),
	})

	return s.view(ctx, viewer, post)
}

// Delete removes a post owned by viewer together with its comments and likes.
func (s *Service) Delete(ctx context.Context, viewer, id string) error {
	post, err := s.owned(ctx, viewer, id)
	if err != nil {
		return err
	}

	removed, err := s.posts.Remove(ctx, id)
	if err != nil {
		return domainerrors.NewInternalError("failed to delete post", err)
	}
	if !removed {
		return domainerrors.NewNotFoundError("post", id)
	}

	keys := []string{postKey(id), likeCountKey(id), commentCountKey(id), viewersKey(id)}

	likes, err := s.likes.Find(ctx, docdb.Filter{"postId": id}, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("postId", id).Msg("failed to load likes of deleted post")
	}
	for _, like := range likes {
		if _, err := s.likes.Remove(ctx, like.ID); err != nil {
			s.logger.Warn().Err(err).Str("likeId", like.ID).Msg("failed to delete like of deleted post")
		}
		keys = append(keys, likedKey(like.UserID, id))
	}

	comments, err := s.comments.Find(ctx, docdb.Filter{"postId": id}, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("postId", id).Msg("failed to load comments of deleted post")
	}
	for _, comment := range comments {
		if _, err := s.comments.Remove(ctx, comment.ID); err != nil {
			s.logger.Warn().Err(err).Str("commentId", comment.ID).Msg("failed to delete comment of deleted post")
		}
	}

	if err := s.posts.SaveChanges(ctx); err != nil {
		return domainerrors.NewInternalError("failed to save post deletion", err)
	}

	s.invalidate(ctx, "post", id, post.OwnerID, "delete", invalidation.Plan{
		Keys:     keys,
		Patterns: append(listingPatterns(post.OwnerID), commentsPattern(id)),
	})
	return nil
}

// RecentlyViewed returns the posts viewer opened most recently, newest first.
func (s *Service) RecentlyViewed(ctx context.Context, viewer string, limit int64) ([]models.PostView, error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError("a viewer is required for recently viewed posts")
	}
	if limit <= 0 || limit > s.recentlyViewed {
		limit = s.recentlyViewed
	}

	ids, err := s.recent.ListRange(ctx, recentKey(viewer), 0, s.recentlyViewed-1)
	if err != nil {
		s.logger.Error().Err(err).Str("viewer", viewer).Msg("recently viewed list unreadable")
		return []models.PostView{}, nil
	}

	views := make([]models.PostView, 0, limit)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if int64(len(views)) >= limit {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		post, err := s.loadVisible(ctx, viewer, id)
		if domainerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view, err := s.view(ctx, viewer, post)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// load returns the post from cache or the store, or a not found error.
func (s *Service) load(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.entities.Load(ctx, postKey(id), func(ctx context.Context) (*models.Post, error) {
		return s.posts.GetByID(ctx, id)
	})
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to load post", err)
	}
	if post == nil {
		return nil, domainerrors.NewNotFoundError("post", id)
	}
	return post, nil
}

// loadVisible returns the post if viewer may see it.
func (s *Service) loadVisible(ctx context.Context, viewer, id string) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch post.Visibility {
	case models.VisibilityPublic:
		return post, nil
	case models.VisibilityFollowers:
		if viewer == post.OwnerID {
			return post, nil
		}
		if viewer != "" {
			follows, err := s.isFollowing(ctx, viewer, post.OwnerID)
			if err != nil {
				return nil, err
			}
			if follows {
				return post, nil
			}
		}
	default:
		if viewer == post.OwnerID {
			return post, nil
		}
	}
	return nil, domainerrors.NewNotFoundError("post", id)
}

// owned reads the post from the authoritative store and checks ownership.
func (s *Service) owned(ctx context.Context, viewer, id string) (*models.Post, error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError("a viewer is required to modify posts")
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to load post", err)
	}
	if post == nil {
		return nil, domainerrors.NewNotFoundError("post", id)
	}
	if post.OwnerID != viewer {
		return nil, domainerrors.NewForbiddenError("only the owner can modify this post")
	}
	return post, nil
}

// view decorates post with its aggregates and a freshly signed media URL.
func (s *Service) view(ctx context.Context, viewer string, post *models.Post) (*models.PostView, error) {
	view, err := s.aggregates(ctx, viewer, post)
	if err != nil {
		return nil, err
	}
	return s.sign(*view), nil
}

// aggregates loads counts and the viewer's like flag concurrently.
func (s *Service) aggregates(ctx context.Context, viewer string, post *models.Post) (*models.PostView, error) {
	view := &models.PostView{Post: *post}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.likeCount(ctx, post.ID)
		view.LikeCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.commentCount(ctx, post.ID)
		view.CommentCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.viewers.SetLength(ctx, viewersKey(post.ID))
		if err != nil {
			s.logger.Error().Err(err).Str("postId", post.ID).Msg("viewer set unreadable")
		}
		view.ViewerCount = n
		return nil
	})
	if viewer != "" {
		g.Go(func() error {
			liked, err := s.isLiked(ctx, viewer, post.ID)
			view.LikedByMe = liked
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// recordView adds viewer to the post's unique viewers and to the head of
// the viewer's recently viewed list. Both are cache-only and best effort.
func (s *Service) recordView(ctx context.Context, viewer, postID string) {
	if viewer == "" {
		return
	}

	if _, err := s.viewers.SetAdd(ctx, viewersKey(postID), viewer); err != nil {
		s.logger.Warn().Err(err).Str("postId", postID).Msg("failed to record post viewer")
	}

	key := recentKey(viewer)
	if _, err := s.recent.ListPush(ctx, key, postID); err != nil {
		s.logger.Warn().Err(err).Str("viewer", viewer).Msg("failed to record recently viewed post")
		return
	}
	// Room for duplicates, which reads skip.
	if err := s.recent.Store().ListTrim(ctx, key, 0, 2*s.recentlyViewed-1); err != nil {
		s.logger.Warn().Err(err).Str("viewer", viewer).Msg("failed to trim recently viewed posts")
	}
	if _, err := s.recent.Store().Expire(ctx, key, s.flagTTL); err != nil {
		s.logger.Warn().Err(err).Str("viewer", viewer).Msg("failed to refresh recently viewed expiry")
	}
}

func (s *Service) listing(ctx context.Context, key, viewer string, filter docdb.Filter, q models.ListQuery) (*models.Page[models.PostView], error) {
	page, err := s.listings.Load(ctx, key, func(ctx context.Context) (*models.Page[models.PostView], error) {
		return s.fetchPage(ctx, viewer, filter, q)
	})
	if err != nil {
		return nil, err
	}
	return s.signPage(page), nil
}

// fetchPage reads one page from the store and decorates every item. Media
// URLs are left empty so the cached page holds no signed URL.
func (s *Service) fetchPage(ctx context.Context, viewer string, filter docdb.Filter, q models.ListQuery) (*models.Page[models.PostView], error) {
	order := docdb.SortOrderDesc
	if q.Sort == models.SortOldest {
		order = docdb.SortOrderAsc
	}

	found, err := s.posts.Find(ctx, filter, &docdb.FindOptions{
		Limit:   int64(q.PageSize),
		Skip:    int64(q.Offset()),
		SortBy:  "createdAt",
		OrderBy: order,
	})
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to list posts", err)
	}
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to count posts", err)
	}

	items := make([]models.PostView, len(found))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, post := range found {
		g.Go(func() error {
			view, err := s.aggregates(gctx, viewer, post)
			if err != nil {
				return err
			}
			items[i] = *view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Page[models.PostView]{Items: items, Page: q.Page, PageSize: q.PageSize, Total: total}, nil
}

// signPage returns a copy of page with fresh media URLs.
func (s *Service) signPage(page *models.Page[models.PostView]) *models.Page[models.PostView] {
	out := *page
	out.Items = make([]models.PostView, len(page.Items))
	for i, item := range page.Items {
		out.Items[i] = *s.sign(item)
	}
	return &out
}

// sign fills the media URL. Signing failures leave the URL empty.
func (s *Service) sign(view models.PostView) *models.PostView {
	view.MediaURL = ""
	if view.MediaRef == "" {
		return &view
	}
	url, _, err := s.signer.Sign(view.MediaRef)
	if err != nil {
		s.logger.Error().Err(err).Str("postId", view.ID).Msg("failed to sign media url")
		return &view
	}
	view.MediaURL = url
	return &view
}

func validVisibility(v models.Visibility) bool {
	switch v {
	case models.VisibilityPublic, models.VisibilityFollowers, models.VisibilityPrivate:
		return true
	}
	return false
}
