package posts

import (
	"time"

	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/domain/models"
)

// Logical key names.
const (
	postName         = "post"
	likeCountName    = "post_likes"
	commentCountName = "post_comments"
	viewersName      = "post_viewers"
	likedName        = "liked"
	followsName      = "follows"
	recentName       = "recent"
	listingName      = "posts"
	ownerListingName = "user_posts"
	feedName         = "feed"
	commentsName     = "comments"
)

// anonymous stands in for the viewer of unauthenticated requests.
const anonymous = "anon"

func postKey(id string) string {
	return cache.NewKey(postName).Str(id).String()
}

func likeCountKey(postID string) string {
	return cache.NewKey(likeCountName).Str(postID).String()
}

func commentCountKey(postID string) string {
	return cache.NewKey(commentCountName).Str(postID).String()
}

func viewersKey(postID string) string {
	return cache.NewKey(viewersName).Str(postID).String()
}

func likedKey(userID, postID string) string {
	return cache.NewKey(likedName).Str(userID).Str(postID).String()
}

func followsKey(followerID, followeeID string) string {
	return cache.NewKey(followsName).Str(followerID).Str(followeeID).String()
}

func recentKey(userID string) string {
	return cache.NewKey(recentName).Str(userID).String()
}

func viewerParam(viewer string) string {
	if viewer == "" {
		return anonymous
	}
	return viewer
}

// listingKey builds "posts:page:size:sort:viewer:bucket".
func listingKey(q models.ListQuery, viewer string, now time.Time, bucket time.Duration) string {
	return cache.NewKey(listingName).
		Int(q.Page).Int(q.PageSize).Str(string(q.Sort)).
		Str(viewerParam(viewer)).
		Bucket(now, bucket).
		String()
}

func ownerListingKey(ownerID string, q models.ListQuery, viewer string, now time.Time, bucket time.Duration) string {
	return cache.NewKey(ownerListingName).Str(ownerID).
		Int(q.Page).Int(q.PageSize).Str(string(q.Sort)).
		Str(viewerParam(viewer)).
		Bucket(now, bucket).
		String()
}

func feedKey(viewer string, q models.ListQuery, now time.Time, bucket time.Duration) string {
	return cache.NewKey(feedName).Str(viewer).
		Int(q.Page).Int(q.PageSize).Str(string(q.Sort)).
		Bucket(now, bucket).
		String()
}

func commentsKey(postID string, q models.ListQuery, now time.Time, bucket time.Duration) string {
	return cache.NewKey(commentsName).Str(postID).
		Int(q.Page).Int(q.PageSize).Str(string(q.Sort)).
		Bucket(now, bucket).
		String()
}

func ownerListingPattern(ownerID string) string {
	return cache.NewKey(ownerListingName).Str(ownerID).Pattern()
}

func feedPattern(viewer string) string {
	return cache.NewKey(feedName).Str(viewer).Pattern()
}

func commentsPattern(postID string) string {
	return cache.NewKey(commentsName).Str(postID).Pattern()
}

// listingPatterns returns every listing family a post of ownerID can
// appear in. Feeds of all followers are dropped together since followers
// are not tracked per cached page.
func listingPatterns(ownerID string) []string {
	return []string{
		cache.Pattern(listingName),
		ownerListingPattern(ownerID),
		cache.Pattern(feedName),
	}
}
