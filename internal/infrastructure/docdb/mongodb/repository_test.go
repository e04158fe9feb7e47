package mongodb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wayfarer/content-service/internal/core/docdb"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/infrastructure/docdb/mongodb"
	"github.com/wayfarer/content-service/tests/mocks"
)

func TestRepository_GetByID_Found(t *testing.T) {
	coll := &mocks.MockCollection{}
	result := &mocks.MockSingleResult{}
	repo := mongodb.NewRepository[models.Post]("post", coll)
	ctx := context.Background()

	coll.On("FindOne", ctx, bson.M{"_id": "p1"}).Return(result)
	result.On("Decode", mock.AnythingOfType("*models.Post")).Run(func(args mock.Arguments) {
		p := args.Get(0).(*models.Post)
		p.ID = "p1"
		p.Title = "hello"
	}).Return(nil)

	got, err := repo.GetByID(ctx, "p1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Title)
	coll.AssertExpectations(t)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	coll := &mocks.MockCollection{}
	result := &mocks.MockSingleResult{}
	repo := mongodb.NewRepository[models.Post]("post", coll)
	ctx := context.Background()

	coll.On("FindOne", ctx, bson.M{"_id": "missing"}).Return(result)
	result.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	got, err := repo.GetByID(ctx, "missing")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_GetByID_Error(t *testing.T) {
	coll := &mocks.MockCollection{}
	result := &mocks.MockSingleResult{}
	repo := mongodb.NewRepository[models.Post]("post", coll)
	ctx := context.Background()

	coll.On("FindOne", ctx, bson.M{"_id": "p1"}).Return(result)
	result.On("Decode", mock.Anything).Return(errors.New("connection reset"))

	_, err := repo.GetByID(ctx, "p1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get post p1")
}

func TestRepository_FindTranslatesFilterAndOptions(t *testing.T) {
	coll := &mocks.MockCollection{}
	cursor := &mocks.MockCursor{}
	repo := mongodb.NewRepository[models.Post]("post", coll)
	ctx := context.Background()

	expectedFilter := bson.M{
		"ownerId":    bson.M{"$in": []string{"a", "b"}},
		"visibility": models.VisibilityPublic,
	}
	expectedOpts := &docdb.CollectionFindOptions{
		Limit: 20,
		Skip:  40,
		Sort:  bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	}

	coll.On("Find", ctx, expectedFilter, expectedOpts).Return(cursor, nil)
	cursor.On("All", ctx, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]*models.Post)
		*out = []*models.Post{{ID: "p1"}, {ID: "p2"}}
	}).Return(nil)
	cursor.On("Close", ctx).Return(nil)

	got, err := repo.Find(ctx, docdb.Filter{
		"ownerId":    []string{"a", "b"},
		"visibility": models.VisibilityPublic,
	}, &docdb.FindOptions{Limit: 20, Skip: 40, SortBy: "createdAt", OrderBy: docdb.SortOrderDesc})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	coll.AssertExpectations(t)
	cursor.AssertExpectations(t)
}

func TestRepository_UpdateAndRemove(t *testing.T) {
	coll := &mocks.MockCollection{}
	repo := mongodb.NewRepository[models.Post]("post", coll)
	ctx := context.Background()
	post := &models.Post{ID: "p1"}

	coll.On("ReplaceOne", ctx, bson.M{"_id": "p1"}, post).Return(int64(1), nil)
	coll.On("DeleteOne", ctx, bson.M{"_id": "p1"}).Return(int64(0), nil)

	ok, err := repo.Update(ctx, "p1", post)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Remove(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, repo.SaveChanges(ctx))
}

func TestRepository_AddAndCount(t *testing.T) {
	coll := &mocks.MockCollection{}
	repo := mongodb.NewRepository[models.Comment]("comment", coll)
	ctx := context.Background()
	comment := &models.Comment{ID: "c1", PostID: "p1"}

	coll.On("InsertOne", ctx, comment).Return("c1", nil)
	coll.On("CountDocuments", ctx, bson.M{"postId": "p1"}).Return(int64(3), nil)

	require.NoError(t, repo.Add(ctx, comment))

	n, err := repo.Count(ctx, docdb.Filter{"postId": "p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.Error(t, repo.Add(ctx, nil))
}
