package docdb

import (
	"context"

	"github.com/wayfarer/content-service/internal/domain/models"
)

// Client defines the interface for a document database client.
type Client interface {
	// Posts returns the posts repository.
	Posts() Repository[models.Post]

	// Comments returns the comments repository.
	Comments() Repository[models.Comment]

	// Likes returns the likes repository.
	Likes() Repository[models.Like]

	// Follows returns the follows repository.
	Follows() Repository[models.Follow]

	// Blogs returns the blogs repository.
	Blogs() Repository[models.Blog]

	// Locations returns the locations repository.
	Locations() Repository[models.Location]

	// Reviews returns the reviews repository.
	Reviews() Repository[models.Review]

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
