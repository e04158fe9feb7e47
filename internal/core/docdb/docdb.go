// Package docdb defines the document database interfaces.
package docdb

import (
	"context"
)

// SingleResult represents the result of a FindOne operation.
type SingleResult interface {
	// Decode decodes the result into the provided interface.
	Decode(v interface{}) error
	// Err returns any error from the operation.
	Err() error
}

// Cursor represents a cursor over query results.
type Cursor interface {
	// All decodes all remaining documents.
	All(ctx context.Context, results interface{}) error
	// Close closes the cursor.
	Close(ctx context.Context) error
}

// CollectionFindOptions are the driver-level options of a Find.
type CollectionFindOptions struct {
	Limit int64
	Skip  int64
	Sort  interface{}
}

// Collection is the raw document collection used by repositories.
type Collection interface {
	// InsertOne inserts a single document.
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)

	// FindOne finds a single document.
	FindOne(ctx context.Context, filter interface{}) SingleResult

	// Find finds multiple documents.
	Find(ctx context.Context, filter interface{}, opts *CollectionFindOptions) (Cursor, error)

	// ReplaceOne replaces a single document and returns the matched count.
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}) (int64, error)

	// DeleteOne deletes a single document and returns the deleted count.
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)

	// CountDocuments counts documents matching the filter.
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)

	// EnsureIndex creates an ascending index over keys if it does not exist.
	EnsureIndex(ctx context.Context, unique bool, keys ...string) error
}
