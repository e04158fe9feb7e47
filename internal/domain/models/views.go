package models

// PostView is a post together with its aggregates as seen by one viewer.
type PostView struct {
	Post
	MediaURL     string `json:"mediaUrl,omitempty"`
	LikeCount    int64  `json:"likeCount"`
	CommentCount int64  `json:"commentCount"`
	ViewerCount  int64  `json:"viewerCount"`
	LikedByMe    bool   `json:"likedByMe"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// SortOrder names a listing order.
type SortOrder string

const (
	// SortRecent orders by creation time, newest first.
	SortRecent SortOrder = "recent"
	// SortOldest orders by creation time, oldest first.
	SortOldest SortOrder = "oldest"
)

// Valid reports whether s is a known order.
func (s SortOrder) Valid() bool {
	return s == SortRecent || s == SortOldest
}

// ListQuery selects one page of a listing.
type ListQuery struct {
	Page     int
	PageSize int
	Sort     SortOrder
}

// Normalize clamps the query to sane bounds.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	if !q.Sort.Valid() {
		q.Sort = SortRecent
	}
	return q
}

// Offset returns the number of items before the page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}
