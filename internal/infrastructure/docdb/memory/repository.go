// Package memory provides an in-process document store with the same
// field semantics as the MongoDB implementation. Entities are kept as BSON
// documents, so struct tags decide field names exactly as they do in MongoDB.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wayfarer/content-service/internal/core/docdb"
)

// Repository implements docdb.Repository in memory.
type Repository[T any] struct {
	mu   sync.RWMutex
	name string
	docs map[string][]byte
}

var _ docdb.Repository[struct{}] = (*Repository[struct{}])(nil)

// NewRepository creates an empty repository.
func NewRepository[T any](name string) *Repository[T] {
	return &Repository[T]{name: name, docs: make(map[string][]byte)}
}

// Find returns the entities matching filter.
func (r *Repository[T]) Find(ctx context.Context, filter docdb.Filter, opts *docdb.FindOptions) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want, err := normalize(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid %s filter: %w", r.name, err)
	}

	r.mu.RLock()
	matched := make([]bson.M, 0)
	for _, raw := range r.docs {
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			r.mu.RUnlock()
			return nil, fmt.Errorf("failed to decode %s: %w", r.name, err)
		}
		if matches(doc, want) {
			matched = append(matched, doc)
		}
	}
	r.mu.RUnlock()

	sortDocs(matched, opts)
	matched = page(matched, opts)

	results := make([]*T, 0, len(matched))
	for _, doc := range matched {
		entity, err := decode[T](doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", r.name, err)
		}
		results = append(results, entity)
	}
	return results, nil
}

// Count returns how many entities match filter.
func (r *Repository[T]) Count(ctx context.Context, filter docdb.Filter) (int64, error) {
	found, err := r.Find(ctx, filter, nil)
	if err != nil {
		return 0, err
	}
	return int64(len(found)), nil
}

// GetByID returns the entity or nil if it does not exist.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	raw, ok := r.docs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var entity T
	if err := bson.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", r.name, id, err)
	}
	return &entity, nil
}

// Add inserts a new entity.
func (r *Repository[T]) Add(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("%s cannot be nil", r.name)
	}
	raw, id, err := encode(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[id]; exists {
		return fmt.Errorf("failed to add %s: %w", r.name, docdb.ErrDuplicate)
	}
	r.docs[id] = raw
	return nil
}

// Update replaces the entity stored under id.
func (r *Repository[T]) Update(ctx context.Context, id string, entity *T) (bool, error) {
	if entity == nil {
		return false, fmt.Errorf("%s cannot be nil", r.name)
	}
	raw, _, err := encode(entity)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", r.name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[id]; !exists {
		return false, nil
	}
	r.docs[id] = raw
	return true, nil
}

// Remove deletes the entity stored under id.
func (r *Repository[T]) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[id]; !exists {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

// SaveChanges is a no-op.
func (r *Repository[T]) SaveChanges(context.Context) error {
	return nil
}

func encode[T any](entity *T) ([]byte, string, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return nil, "", err
	}
	id, ok := bson.Raw(raw).Lookup("_id").StringValueOK()
	if !ok || id == "" {
		return nil, "", fmt.Errorf("entity has no string _id")
	}
	return raw, id, nil
}

func decode[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var entity T
	if err := bson.Unmarshal(raw, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// normalize passes filter values through BSON so named string types and
// slices compare equal to what stored documents hold.
func normalize(filter docdb.Filter) (bson.M, error) {
	if len(filter) == 0 {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(bson.M(filter))
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(doc, filter bson.M) bool {
	for field, want := range filter {
		got := doc[field]
		if set, ok := want.(primitive.A); ok {
			if !containsValue(set, got) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func containsValue(set primitive.A, v interface{}) bool {
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

func sortDocs(docs []bson.M, opts *docdb.FindOptions) {
	field := "_id"
	desc := false
	if opts != nil && opts.SortBy != "" {
		field = opts.SortBy
		desc = opts.OrderBy == docdb.SortOrderDesc
	}

	sort.SliceStable(docs, func(i, j int) bool {
		c := compare(docs[i][field], docs[j][field])
		if c == 0 {
			c = compare(docs[i]["_id"], docs[j]["_id"])
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b interface{}) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp(x, y)
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmp(x, y)
		}
	case int32:
		if y, ok := b.(int32); ok {
			return cmp(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp(x, y)
		}
	}
	return 0
}

func cmp[V string | primitive.DateTime | int32 | int64 | float64](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func page(docs []bson.M, opts *docdb.FindOptions) []bson.M {
	if opts == nil {
		return docs
	}
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(docs)) {
			return []bson.M{}
		}
		docs = docs[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(docs)) {
		docs = docs[:opts.Limit]
	}
	return docs
}
