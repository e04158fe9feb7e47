package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wayfarer/content-service/internal/core/docdb"
)

// Repository implements docdb.Repository over one collection. Writes are
// applied immediately, so SaveChanges has nothing to flush.
type Repository[T any] struct {
	collection docdb.Collection
	name       string
}

// NewRepository creates a repository over collection.
func NewRepository[T any](name string, collection docdb.Collection) *Repository[T] {
	return &Repository[T]{collection: collection, name: name}
}

// Find returns the entities matching filter.
func (r *Repository[T]) Find(ctx context.Context, filter docdb.Filter, opts *docdb.FindOptions) ([]*T, error) {
	cursor, err := r.collection.Find(ctx, toBSON(filter), findOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", r.name, err)
	}
	defer cursor.Close(ctx)

	results := make([]*T, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.name, err)
	}
	return results, nil
}

// Count returns how many entities match filter.
func (r *Repository[T]) Count(ctx context.Context, filter docdb.Filter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.name, err)
	}
	return n, nil
}

// GetByID returns the entity or nil if it does not exist.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", r.name, id, err)
	}
	return &entity, nil
}

// Add inserts a new entity.
func (r *Repository[T]) Add(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("%s cannot be nil", r.name)
	}
	if _, err := r.collection.InsertOne(ctx, entity); err != nil {
		return fmt.Errorf("failed to add %s: %w", r.name, err)
	}
	return nil
}

// Update replaces the entity stored under id.
func (r *Repository[T]) Update(ctx context.Context, id string, entity *T) (bool, error) {
	if entity == nil {
		return false, fmt.Errorf("%s cannot be nil", r.name)
	}
	matched, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, entity)
	if err != nil {
		return false, fmt.Errorf("failed to update %s %s: %w", r.name, id, err)
	}
	return matched > 0, nil
}

// Remove deletes the entity stored under id.
func (r *Repository[T]) Remove(ctx context.Context, id string) (bool, error) {
	deleted, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to remove %s %s: %w", r.name, id, err)
	}
	return deleted > 0, nil
}

// SaveChanges is a no-op; every write is already durable when it returns.
func (r *Repository[T]) SaveChanges(context.Context) error {
	return nil
}

func toBSON(filter docdb.Filter) bson.M {
	m := bson.M{}
	for field, value := range filter {
		if values, ok := value.([]string); ok {
			m[field] = bson.M{"$in": values}
			continue
		}
		m[field] = value
	}
	return m
}

func findOptions(opts *docdb.FindOptions) *docdb.CollectionFindOptions {
	if opts == nil {
		return nil
	}

	out := &docdb.CollectionFindOptions{Limit: opts.Limit, Skip: opts.Skip}
	if opts.SortBy != "" {
		direction := 1
		if opts.OrderBy == docdb.SortOrderDesc {
			direction = -1
		}
		out.Sort = bson.D{{Key: opts.SortBy, Value: direction}, {Key: "_id", Value: direction}}
	}
	return out
}
