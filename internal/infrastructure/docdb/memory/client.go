package memory

import (
	"context"

	"github.com/wayfarer/content-service/internal/core/docdb"
	"github.com/wayfarer/content-service/internal/domain/models"
)

// Client implements docdb.Client with in-memory repositories.
type Client struct {
	posts     *Repository[models.Post]
	comments  *Repository[models.Comment]
	likes     *Repository[models.Like]
	follows   *Repository[models.Follow]
	blogs     *Repository[models.Blog]
	locations *Repository[models.Location]
	reviews   *Repository[models.Review]
}

var _ docdb.Client = (*Client)(nil)

// NewClient creates a client with empty repositories.
func NewClient() *Client {
	return &Client{
		posts:     NewRepository[models.Post]("post"),
		comments:  NewRepository[models.Comment]("comment"),
		likes:     NewRepository[models.Like]("like"),
		follows:   NewRepository[models.Follow]("follow"),
		blogs:     NewRepository[models.Blog]("blog"),
		locations: NewRepository[models.Location]("location"),
		reviews:   NewRepository[models.Review]("review"),
	}
}

func (c *Client) Posts() docdb.Repository[models.Post]         { return c.posts }
func (c *Client) Comments() docdb.Repository[models.Comment]   { return c.comments }
func (c *Client) Likes() docdb.Repository[models.Like]         { return c.likes }
func (c *Client) Follows() docdb.Repository[models.Follow]     { return c.follows }
func (c *Client) Blogs() docdb.Repository[models.Blog]         { return c.blogs }
func (c *Client) Locations() docdb.Repository[models.Location] { return c.locations }
func (c *Client) Reviews() docdb.Repository[models.Review]     { return c.reviews }

// Ping always succeeds.
func (c *Client) Ping(context.Context) error { return nil }

// Close is a no-op.
func (c *Client) Close(context.Context) error { return nil }
