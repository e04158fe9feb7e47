// Package models contains domain models for the content service.
package models

import (
	"strings"
	"time"
)

// Visibility controls who can see a post.
type Visibility string

const (
	// VisibilityPublic posts appear in global listings and feeds.
	VisibilityPublic Visibility = "public"
	// VisibilityFollowers posts appear only in followers' feeds.
	VisibilityFollowers Visibility = "followers"
	// VisibilityPrivate posts are visible to their owner only.
	VisibilityPrivate Visibility = "private"
)

// Post is a user-authored piece of content.
type Post struct {
	ID         string     `json:"id" bson:"_id"`
	OwnerID    string     `json:"ownerId" bson:"ownerId"`
	Title      string     `json:"title" bson:"title"`
	Body       string     `json:"body,omitempty" bson:"body,omitempty"`
	MediaRef   string     `json:"mediaRef,omitempty" bson:"mediaRef,omitempty"`
	Tags       []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	Visibility Visibility `json:"visibility" bson:"visibility"`
	LocationID string     `json:"locationId,omitempty" bson:"locationId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	PostID    string    `json:"postId" bson:"postId"`
	AuthorID  string    `json:"authorId" bson:"authorId"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Like records that a user liked a post. Its ID is derived from the pair,
// so the same user cannot like a post twice.
type Like struct {
	ID        string    `json:"id" bson:"_id"`
	PostID    string    `json:"postId" bson:"postId"`
	UserID    string    `json:"userId" bson:"userId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// IDSeparator joins the parts of derived identifiers. User IDs must not
// contain it, or two different pairs could share an identifier.
const IDSeparator = "/"

// ValidUserID reports whether id can take part in a derived identifier.
func ValidUserID(id string) bool {
	return id != "" && !strings.Contains(id, IDSeparator)
}

// LikeID returns the identifier of the like of postID by userID.
func LikeID(userID, postID string) string {
	return userID + IDSeparator + postID
}

// FollowID returns the identifier of the follow of followeeID by followerID.
func FollowID(followerID, followeeID string) string {
	return followerID + IDSeparator + followeeID
}

// Follow records that Follower follows Followee.
type Follow struct {
	ID         string    `json:"id" bson:"_id"`
	FollowerID string    `json:"followerId" bson:"followerId"`
	FolloweeID string    `json:"followeeId" bson:"followeeId"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Blog is a long-form article addressed by slug.
type Blog struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Slug      string    `json:"slug" bson:"slug" validate:"required,max=120,excludesall=/?#"`
	Title     string    `json:"title" bson:"title" validate:"required,max=200"`
	Body      string    `json:"body" bson:"body"`
	CoverRef  string    `json:"coverRef,omitempty" bson:"coverRef,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Location is a place posts and reviews can refer to.
type Location struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Name      string    `json:"name" bson:"name" validate:"required,max=200"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	Latitude  float64   `json:"latitude" bson:"latitude" validate:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude" validate:"longitude"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Review rates a location.
type Review struct {
	ID         string    `json:"id" bson:"_id"`
	OwnerID    string    `json:"ownerId" bson:"ownerId"`
	LocationID string    `json:"locationId" bson:"locationId" validate:"required"`
	Rating     int       `json:"rating" bson:"rating" validate:"min=1,max=5"`
	Body       string    `json:"body,omitempty" bson:"body,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}
