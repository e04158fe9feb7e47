// Package mongodb provides MongoDB client implementation.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wayfarer/content-service/internal/core/docdb"
	"github.com/wayfarer/content-service/internal/domain/models"
)

// Collection names.
const (
	PostsCollection     = "posts"
	CommentsCollection  = "comments"
	LikesCollection     = "likes"
	FollowsCollection   = "follows"
	BlogsCollection     = "blogs"
	LocationsCollection = "locations"
	ReviewsCollection   = "reviews"
)

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client    *mongo.Client
	database  *mongo.Database
	posts     *Repository[models.Post]
	comments  *Repository[models.Comment]
	likes     *Repository[models.Like]
	follows   *Repository[models.Follow]
	blogs     *Repository[models.Blog]
	locations *Repository[models.Location]
	reviews   *Repository[models.Review]
}

var _ docdb.Client = (*Client)(nil)

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI          string
	DatabaseName string
}

// NewClient creates a new MongoDB client.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return newClient(client, client.Database(config.DatabaseName)), nil
}

func newClient(client *mongo.Client, db *mongo.Database) *Client {
	coll := func(name string) *Collection { return NewCollection(db.Collection(name)) }

	return &Client{
		client:    client,
		database:  db,
		posts:     NewRepository[models.Post]("post", coll(PostsCollection)),
		comments:  NewRepository[models.Comment]("comment", coll(CommentsCollection)),
		likes:     NewRepository[models.Like]("like", coll(LikesCollection)),
		follows:   NewRepository[models.Follow]("follow", coll(FollowsCollection)),
		blogs:     NewRepository[models.Blog]("blog", coll(BlogsCollection)),
		locations: NewRepository[models.Location]("location", coll(LocationsCollection)),
		reviews:   NewRepository[models.Review]("review", coll(ReviewsCollection)),
	}
}

// Posts returns the posts repository.
func (c *Client) Posts() docdb.Repository[models.Post] { return c.posts }

// Comments returns the comments repository.
func (c *Client) Comments() docdb.Repository[models.Comment] { return c.comments }

// Likes returns the likes repository.
func (c *Client) Likes() docdb.Repository[models.Like] { return c.likes }

// Follows returns the follows repository.
func (c *Client) Follows() docdb.Repository[models.Follow] { return c.follows }

// Blogs returns the blogs repository.
func (c *Client) Blogs() docdb.Repository[models.Blog] { return c.blogs }

// Locations returns the locations repository.
func (c *Client) Locations() docdb.Repository[models.Location] { return c.locations }

// Reviews returns the reviews repository.
func (c *Client) Reviews() docdb.Repository[models.Review] { return c.reviews }

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes listings and counters rely on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		collection string
		unique     bool
		keys       []string
	}{
		{PostsCollection, false, []string{"ownerId", "createdAt"}},
		{PostsCollection, false, []string{"visibility", "createdAt"}},
		{CommentsCollection, false, []string{"postId", "createdAt"}},
		{LikesCollection, false, []string{"postId"}},
		{FollowsCollection, true, []string{"followerId", "followeeId"}},
		{BlogsCollection, true, []string{"slug"}},
		{ReviewsCollection, false, []string{"locationId", "createdAt"}},
	}

	for _, idx := range indexes {
		if err := NewCollection(c.database.Collection(idx.collection)).EnsureIndex(ctx, idx.unique, idx.keys...); err != nil {
			return fmt.Errorf("failed to ensure %s indexes: %w", idx.collection, err)
		}
	}
	return nil
}
