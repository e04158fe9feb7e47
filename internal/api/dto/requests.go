// Package dto holds the request and response bodies of the HTTP API and
// their conversion to service inputs.
package dto

import (
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/posts"
)

// ListQueryParams holds the paging query parameters shared by all listings.
type ListQueryParams struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Sort     string `form:"sort" binding:"omitempty,oneof=recent oldest"`
}

// ToQuery converts the parameters to a normalized list query.
func (p ListQueryParams) ToQuery() models.ListQuery {
	return models.ListQuery{
		Page:     p.Page,
		PageSize: p.PageSize,
		Sort:     models.SortOrder(p.Sort),
	}.Normalize()
}

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Body       string   `json:"body" binding:"max=20000"`
	MediaRef   string   `json:"mediaRef,omitempty" binding:"omitempty,max=512"`
	Tags       []string `json:"tags,omitempty" binding:"omitempty,max=20,dive,max=40"`
	Visibility string   `json:"visibility,omitempty" binding:"omitempty,oneof=public followers private"`
	LocationID string   `json:"locationId,omitempty"`
}

// ToInput converts the request to service input.
func (r *CreatePostRequest) ToInput() posts.CreatePostInput {
	return posts.CreatePostInput{
		Title:      r.Title,
		Body:       r.Body,
		MediaRef:   r.MediaRef,
		Tags:       r.Tags,
		Visibility: models.Visibility(r.Visibility),
		LocationID: r.LocationID,
	}
}

// UpdatePostRequest represents the request body for updating a post.
// Omitted fields are left unchanged.
type UpdatePostRequest struct {
	Title      *string  `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Body       *string  `json:"body,omitempty" binding:"omitempty,max=20000"`
	MediaRef   *string  `json:"mediaRef,omitempty" binding:"omitempty,max=512"`
	Tags       []string `json:"tags,omitempty" binding:"omitempty,max=20,dive,max=40"`
	Visibility *string  `json:"visibility,omitempty" binding:"omitempty,oneof=public followers private"`
	LocationID *string  `json:"locationId,omitempty"`
}

// ToInput converts the request to service input.
func (r *UpdatePostRequest) ToInput() posts.UpdatePostInput {
	input := posts.UpdatePostInput{
		Title:      r.Title,
		Body:       r.Body,
		MediaRef:   r.MediaRef,
		Tags:       r.Tags,
		LocationID: r.LocationID,
	}
	if r.Visibility != nil {
		v := models.Visibility(*r.Visibility)
		input.Visibility = &v
	}
	return input
}

// CreateCommentRequest represents the request body for commenting on a post.
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=5000"`
}

// BlogRequest represents the request body for creating or replacing a blog.
type BlogRequest struct {
	Slug     string `json:"slug" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	CoverRef string `json:"coverRef,omitempty"`
}

// ToModel converts the request to a blog.
func (r *BlogRequest) ToModel() *models.Blog {
	return &models.Blog{Slug: r.Slug, Title: r.Title, Body: r.Body, CoverRef: r.CoverRef}
}

// LocationRequest represents the request body for creating or replacing a location.
type LocationRequest struct {
	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ToModel converts the request to a location.
func (r *LocationRequest) ToModel() *models.Location {
	return &models.Location{Name: r.Name, Address: r.Address, Latitude: r.Latitude, Longitude: r.Longitude}
}

// ReviewRequest represents the request body for creating or replacing a review.
type ReviewRequest struct {
	LocationID string `json:"locationId" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Body       string `json:"body,omitempty"`
}

// ToModel converts the request to a review.
func (r *ReviewRequest) ToModel() *models.Review {
	return &models.Review{LocationID: r.LocationID, Rating: r.Rating, Body: r.Body}
}
