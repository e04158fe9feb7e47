package posts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/wayfarer/content-service/internal/core/docdb"
	domainerrors "github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/invalidation"
)

// LikeState is the outcome of a like or unlike.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// Like records that viewer likes the post. Liking twice is a no-op.
//
// The database decides whether the like exists. The cached flag is then
// rewritten to that answer; if the rewrite fails the flag is invalidated
// instead so a stale flag is never left behind.
func (s *Service) Like(ctx context.Context, viewer, postID string) (*LikeState, error) {
	return s.setLiked(ctx, viewer, postID, true)
}

// Unlike removes viewer's like from the post. Unliking twice is a no-op.
func (s *Service) Unlike(ctx context.Context, viewer, postID string) (*LikeState, error) {
	return s.setLiked(ctx, viewer, postID, false)
}

func (s *Service) setLiked(ctx context.Context, viewer, postID string, liked bool) (*LikeState, error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError("a viewer is required to like posts")
	}
	if !models.ValidUserID(viewer) {
		return nil, domainerrors.NewValidationError("invalid viewer", viewer)
	}
	post, err := s.loadVisible(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}

	changed, err := s.writeLike(ctx, viewer, postID, liked)
	if err != nil {
		return nil, err
	}

	action := "unlike"
	delta := int64(-1)
	if liked {
		action = "like"
		delta = 1
	}

	var plan invalidation.Plan
	if err := s.liked.Store(ctx, likedKey(viewer, postID), liked); err != nil {
		s.logger.Warn().Err(err).Str("viewer", viewer).Str("postId", postID).Msg("failed to store like flag, invalidating it")
		plan.Keys = []string{likedKey(viewer, postID)}
	}
	if changed {
		plan.Deltas = []invalidation.Delta{{Key: likeCountKey(postID), By: delta}}
		plan.Patterns = listingPatterns(post.OwnerID)
	}
	s.invalidate(ctx, "like", models.LikeID(viewer, postID), post.OwnerID, action, plan)

	count, err := s.likeCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikeCount: count}, nil
}

// writeLike applies the like to the database. Returns false if the
// database already held the requested state.
func (s *Service) writeLike(ctx context.Context, viewer, postID string, liked bool) (bool, error) {
	id := models.LikeID(viewer, postID)

	if !liked {
		removed, err := s.likes.Remove(ctx, id)
		if err != nil {
			return false, domainerrors.NewInternalError("failed to unlike post", err)
		}
		if err := s.likes.SaveChanges(ctx); err != nil {
			return false, domainerrors.NewInternalError("failed to save unlike", err)
		}
		return removed, nil
	}

	err := s.likes.Add(ctx, &models.Like{
		ID:        id,
		PostID:    postID,
		UserID:    viewer,
		CreatedAt: s.now().UTC(),
	})
	if isDuplicate(err) {
		return false, nil
	}
	if err != nil {
		return false, domainerrors.NewInternalError("failed to like post", err)
	}
	if err := s.likes.SaveChanges(ctx); err != nil {
		return false, domainerrors.NewInternalError("failed to save like", err)
	}
	return true, nil
}

// AddComment attaches a comment by viewer to the post.
func (s *Service) AddComment(ctx context.Context, viewer, postID, body string) (*models.Comment, error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError("a viewer is required to comment")
	}
	if strings.TrimSpace(body) == "" {
		return nil, domainerrors.NewValidationError("comment body is required", "")
	}
	post, err := s.loadVisible(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  viewer,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Add(ctx, comment); err != nil {
		return nil, domainerrors.NewInternalError("failed to add comment", err)
	}
	if err := s.comments.SaveChanges(ctx); err != nil {
		return nil, domainerrors.NewInternalError("failed to save comment", err)
	}

	s.invalidate(ctx, "comment", comment.ID, post.OwnerID, "create", invalidation.Plan{
		Deltas:   []invalidation.Delta{{Key: commentCountKey(postID), By: 1}},
		Patterns: append(listingPatterns(post.OwnerID), commentsPattern(postID)),
	})
	return comment, nil
}

// DeleteComment removes a comment. The comment's author and the post's
// owner may delete it.
func (s *Service) DeleteComment(ctx context.Context, viewer, postID, commentID string) error {
	if viewer == "" {
		return domainerrors.NewUnauthorizedError("a viewer is required to delete comments")
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return domainerrors.NewInternalError("failed to load comment", err)
	}
	if comment == nil || comment.PostID != postID {
		return domainerrors.NewNotFoundError("comment", commentID)
	}
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if viewer != comment.AuthorID && viewer != post.OwnerID {
		return domainerrors.NewForbiddenError("only the author or the post owner can delete this comment")
	}

	removed, err := s.comments.Remove(ctx, commentID)
	if err != nil {
		return domainerrors.NewInternalError("failed to delete comment", err)
	}
	if !removed {
		return domainerrors.NewNotFoundError("comment", commentID)
	}
	if err := s.comments.SaveChanges(ctx); err != nil {
		return domainerrors.NewInternalError("failed to save comment deletion", err)
	}

	s.invalidate(ctx, "comment", commentID, post.OwnerID, "delete", invalidation.Plan{
		Deltas:   []invalidation.Delta{{Key: commentCountKey(postID), By: -1}},
		Patterns: append(listingPatterns(post.OwnerID), commentsPattern(postID)),
	})
	return nil
}

// ListComments returns one page of the post's comments.
func (s *Service) ListComments(ctx context.Context, viewer, postID string, q models.ListQuery) (*models.Page[models.Comment], error) {
	if _, err := s.loadVisible(ctx, viewer, postID); err != nil {
		return nil, err
	}
	q = q.Normalize()

	return s.commentPages.Load(ctx, commentsKey(postID, q, s.now(), s.listingBucket), func(ctx context.Context) (*models.Page[models.Comment], error) {
		order := docdb.SortOrderDesc
		if q.Sort == models.SortOldest {
			order = docdb.SortOrderAsc
		}
		filter := docdb.Filter{"postId": postID}

		found, err := s.comments.Find(ctx, filter, &docdb.FindOptions{
			Limit:   int64(q.PageSize),
			Skip:    int64(q.Offset()),
			SortBy:  "createdAt",
			OrderBy: order,
		})
		if err != nil {
			return nil, domainerrors.NewInternalError("failed to list comments", err)
		}
		total, err := s.comments.Count(ctx, filter)
		if err != nil {
			return nil, domainerrors.NewInternalError("failed to count comments", err)
		}

		items := make([]models.Comment, 0, len(found))
		for _, c := range found {
			items = append(items, *c)
		}
		return &models.Page[models.Comment]{Items: items, Page: q.Page, PageSize: q.PageSize, Total: total}, nil
	})
}

// Follow makes viewer follow followeeID. Following twice is a no-op.
func (s *Service) Follow(ctx context.Context, viewer, followeeID string) error {
	return s.setFollowing(ctx, viewer, followeeID, true)
}

// Unfollow makes viewer stop following followeeID.
func (s *Service) Unfollow(ctx context.Context, viewer, followeeID string) error {
	return s.setFollowing(ctx, viewer, followeeID, false)
}

func (s *Service) setFollowing(ctx context.Context, viewer, followeeID string, follow bool) error {
	if viewer == "" {
		return domainerrors.NewUnauthorizedError("a viewer is required to follow users")
	}
	if !models.ValidUserID(viewer) {
		return domainerrors.NewValidationError("invalid viewer", viewer)
	}
	if !models.ValidUserID(followeeID) || followeeID == viewer {
		return domainerrors.NewValidationError("invalid user to follow", followeeID)
	}

	id := models.FollowID(viewer, followeeID)
	action := "unfollow"
	if follow {
		action = "follow"
		err := s.follows.Add(ctx, &models.Follow{ID: id, FollowerID: viewer, FolloweeID: followeeID, CreatedAt: s.now().UTC()})
		if err != nil && !isDuplicate(err) {
			return domainerrors.NewInternalError("failed to follow user", err)
		}
	} else {
		if _, err := s.follows.Remove(ctx, id); err != nil {
			return domainerrors.NewInternalError("failed to unfollow user", err)
		}
	}
	if err := s.follows.SaveChanges(ctx); err != nil {
		return domainerrors.NewInternalError("failed to save follow", err)
	}

	plan := invalidation.Plan{
		Patterns: []string{feedPattern(viewer), ownerListingPattern(followeeID)},
	}
	if err := s.following.Store(ctx, followsKey(viewer, followeeID), follow); err != nil {
		s.logger.Warn().Err(err).Str("viewer", viewer).Str("followee", followeeID).Msg("failed to store follow flag, invalidating it")
		plan.Keys = []string{followsKey(viewer, followeeID)}
	}
	s.invalidate(ctx, "follow", id, followeeID, action, plan)
	return nil
}

func (s *Service) likeCount(ctx context.Context, postID string) (int64, error) {
	n, err := s.likeCounts.Load(ctx, likeCountKey(postID), func(ctx context.Context) (int64, error) {
		return s.likes.Count(ctx, docdb.Filter{"postId": postID})
	})
	if err != nil {
		return 0, domainerrors.NewInternalError("failed to count likes", err)
	}
	return n, nil
}

func (s *Service) commentCount(ctx context.Context, postID string) (int64, error) {
	n, err := s.commentCounts.Load(ctx, commentCountKey(postID), func(ctx context.Context) (int64, error) {
		return s.comments.Count(ctx, docdb.Filter{"postId": postID})
	})
	if err != nil {
		return 0, domainerrors.NewInternalError("failed to count comments", err)
	}
	return n, nil
}

func (s *Service) isLiked(ctx context.Context, viewer, postID string) (bool, error) {
	liked, err := s.liked.Load(ctx, likedKey(viewer, postID), func(ctx context.Context) (bool, error) {
		like, err := s.likes.GetByID(ctx, models.LikeID(viewer, postID))
		return like != nil, err
	})
	if err != nil {
		return false, domainerrors.NewInternalError("failed to check like", err)
	}
	return liked, nil
}

func (s *Service) isFollowing(ctx context.Context, follower, followee string) (bool, error) {
	follows, err := s.following.Load(ctx, followsKey(follower, followee), func(ctx context.Context) (bool, error) {
		f, err := s.follows.GetByID(ctx, models.FollowID(follower, followee))
		return f != nil, err
	})
	if err != nil {
		return false, domainerrors.NewInternalError("failed to check follow", err)
	}
	return follows, nil
}
