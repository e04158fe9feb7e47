package docdb

import (
	"context"
	"errors"
)

// ErrDuplicate is returned by Add when an entity with the same identity exists.
var ErrDuplicate = errors.New("docdb: duplicate entity")

// Filter matches entities by field equality. Values that are slices match
// any of their elements.
type Filter map[string]interface{}

// SortOrder represents the sort direction.
type SortOrder string

const (
	// SortOrderAsc represents ascending order.
	SortOrderAsc SortOrder = "asc"
	// SortOrderDesc represents descending order.
	SortOrderDesc SortOrder = "desc"
)

// FindOptions contains paging and ordering for Find.
type FindOptions struct {
	Limit   int64
	Skip    int64
	SortBy  string
	OrderBy SortOrder
}

// Repository is the authoritative store of one entity type.
type Repository[T any] interface {
	// Find returns the entities matching filter.
	Find(ctx context.Context, filter Filter, opts *FindOptions) ([]*T, error)

	// Count returns how many entities match filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// GetByID returns the entity or nil if it does not exist.
	GetByID(ctx context.Context, id string) (*T, error)

	// Add inserts a new entity.
	Add(ctx context.Context, entity *T) error

	// Update replaces the entity stored under id. Returns false if none existed.
	Update(ctx context.Context, id string, entity *T) (bool, error)

	// Remove deletes the entity stored under id. Returns false if none existed.
	Remove(ctx context.Context, id string) (bool, error)

	// SaveChanges flushes pending writes.
	SaveChanges(ctx context.Context) error
}
