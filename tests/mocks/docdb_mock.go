package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wayfarer/content-service/internal/core/docdb"
	"github.com/wayfarer/content-service/internal/domain/models"
)

// MockCollection is a mock implementation of docdb.Collection.
type MockCollection struct {
	mock.Mock
}

// InsertOne inserts a single document.
func (m *MockCollection) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	args := m.Called(ctx, document)
	return args.Get(0), args.Error(1)
}

// FindOne finds a single document.
func (m *MockCollection) FindOne(ctx context.Context, filter interface{}) docdb.SingleResult {
	args := m.Called(ctx, filter)
	return args.Get(0).(docdb.SingleResult)
}

// Find finds multiple documents.
func (m *MockCollection) Find(ctx context.Context, filter interface{}, opts *docdb.CollectionFindOptions) (docdb.Cursor, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(docdb.Cursor), args.Error(1)
}

// ReplaceOne replaces a single document.
func (m *MockCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}) (int64, error) {
	args := m.Called(ctx, filter, replacement)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteOne deletes a single document.
func (m *MockCollection) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// CountDocuments counts documents matching the filter.
func (m *MockCollection) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// EnsureIndex creates an index.
func (m *MockCollection) EnsureIndex(ctx context.Context, unique bool, keys ...string) error {
	args := m.Called(ctx, unique, keys)
	return args.Error(0)
}

// MockSingleResult is a mock implementation of docdb.SingleResult.
type MockSingleResult struct {
	mock.Mock
}

// Decode decodes the result.
func (m *MockSingleResult) Decode(v interface{}) error {
	args := m.Called(v)
	return args.Error(0)
}

// Err returns the result error.
func (m *MockSingleResult) Err() error {
	args := m.Called()
	return args.Error(0)
}

// MockCursor is a mock implementation of docdb.Cursor.
type MockCursor struct {
	mock.Mock
}

// All decodes all remaining documents.
func (m *MockCursor) All(ctx context.Context, results interface{}) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

// Close closes the cursor.
func (m *MockCursor) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRepository is a mock implementation of docdb.Repository.
type MockRepository[T any] struct {
	mock.Mock
}

// Find returns the entities matching filter.
func (m *MockRepository[T]) Find(ctx context.Context, filter docdb.Filter, opts *docdb.FindOptions) ([]*T, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*T), args.Error(1)
}

// Count returns how many entities match filter.
func (m *MockRepository[T]) Count(ctx context.Context, filter docdb.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// GetByID returns the entity with the given id.
func (m *MockRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// Add inserts a new entity.
func (m *MockRepository[T]) Add(ctx context.Context, entity *T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

// Update replaces an entity.
func (m *MockRepository[T]) Update(ctx context.Context, id string, entity *T) (bool, error) {
	args := m.Called(ctx, id, entity)
	return args.Bool(0), args.Error(1)
}

// Remove deletes an entity.
func (m *MockRepository[T]) Remove(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// SaveChanges flushes pending writes.
func (m *MockRepository[T]) SaveChanges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDocDBClient is a mock implementation of docdb.Client.
type MockDocDBClient struct {
	mock.Mock
	PostsRepo     *MockRepository[models.Post]
	CommentsRepo  *MockRepository[models.Comment]
	LikesRepo     *MockRepository[models.Like]
	FollowsRepo   *MockRepository[models.Follow]
	BlogsRepo     *MockRepository[models.Blog]
	LocationsRepo *MockRepository[models.Location]
	ReviewsRepo   *MockRepository[models.Review]
}

// NewMockDocDBClient creates a new MockDocDBClient.
func NewMockDocDBClient() *MockDocDBClient {
	return &MockDocDBClient{
		PostsRepo:     &MockRepository[models.Post]{},
		CommentsRepo:  &MockRepository[models.Comment]{},
		LikesRepo:     &MockRepository[models.Like]{},
		FollowsRepo:   &MockRepository[models.Follow]{},
		BlogsRepo:     &MockRepository[models.Blog]{},
		LocationsRepo: &MockRepository[models.Location]{},
		ReviewsRepo:   &MockRepository[models.Review]{},
	}
}

// Posts returns the posts repository.
func (m *MockDocDBClient) Posts() docdb.Repository[models.Post] { return m.PostsRepo }

// Comments returns the comments repository.
func (m *MockDocDBClient) Comments() docdb.Repository[models.Comment] { return m.CommentsRepo }

// Likes returns the likes repository.
func (m *MockDocDBClient) Likes() docdb.Repository[models.Like] { return m.LikesRepo }

// Follows returns the follows repository.
func (m *MockDocDBClient) Follows() docdb.Repository[models.Follow] { return m.FollowsRepo }

// Blogs returns the blogs repository.
func (m *MockDocDBClient) Blogs() docdb.Repository[models.Blog] { return m.BlogsRepo }

// Locations returns the locations repository.
func (m *MockDocDBClient) Locations() docdb.Repository[models.Location] { return m.LocationsRepo }

// Reviews returns the reviews repository.
func (m *MockDocDBClient) Reviews() docdb.Repository[models.Review] { return m.ReviewsRepo }

// Ping checks the database connection.
func (m *MockDocDBClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the database connection.
func (m *MockDocDBClient) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
