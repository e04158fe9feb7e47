package testutils

import (
	"time"

	"github.com/wayfarer/content-service/internal/domain/models"
)

// Test constants
const (
	TestOwnerID  = "user-owner-123"
	TestViewerID = "user-viewer-456"
	TestPostID   = "post-test-789"
)

// TestTime is the fixed creation time of fixtures.
var TestTime = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// NewTestPost creates a public test post.
func NewTestPost() *models.Post {
	return &models.Post{
		ID:         TestPostID,
		OwnerID:    TestOwnerID,
		Title:      "Test post",
		Body:       "Test post body",
		MediaRef:   "posts/" + TestPostID + "/cover.jpg",
		Visibility: models.VisibilityPublic,
		CreatedAt:  TestTime,
		UpdatedAt:  TestTime,
	}
}

