package dto

import (
	"time"

	"github.com/wayfarer/content-service/internal/domain/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse reports the service status and each dependency's status.
// Reason names the dependency that made the service unready.
type HealthResponse struct {
	Status     string            `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// PostPageResponse is one page of posts.
type PostPageResponse = models.Page[models.PostView]

// CommentPageResponse is one page of comments.
type CommentPageResponse = models.Page[models.Comment]

// RecentlyViewedResponse lists the posts the viewer opened last, newest first.
type RecentlyViewedResponse struct {
	Posts []models.PostView `json:"posts"`
}

// LikeResponse represents the state of a like after a like or unlike.
type LikeResponse struct {
	PostID    string `json:"postId"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"likeCount"`
}

// FollowResponse represents the state of a follow after a follow or unfollow.
type FollowResponse struct {
	FolloweeID string `json:"followeeId"`
	Following  bool   `json:"following"`
}

// MediaResponse describes a resolved media token.
type MediaResponse struct {
	Ref string `json:"ref"`
}

// InvalidationEventResponse is an invalidation as streamed to subscribers.
type InvalidationEventResponse struct {
	ID         string    `json:"id"`
	Origin     string    `json:"origin"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	Keys       []string  `json:"keys,omitempty"`
	Patterns   []string  `json:"patterns,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
