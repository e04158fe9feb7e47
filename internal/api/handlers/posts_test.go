package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/api/dto"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/tests/testutils"
)

func createPost(t *testing.T, e *env, owner, visibility string) models.PostView {
	t.Helper()
	w := testutils.PerformRequest(e.router, "POST", base+"/posts", dto.CreatePostRequest{
		Title:      "Sunrise over the harbour",
		Body:       "Worth the early start",
		MediaRef:   "posts/harbour.jpg",
		Visibility: visibility,
	}, as(owner))
	testutils.AssertStatusCode(t, http.StatusCreated, w)

	var view models.PostView
	testutils.ParseJSONResponse(t, w, &view)
	return view
}

func TestPostsHandler_CreatePost_RequiresViewer(t *testing.T) {
	e := newEnv(t)

	w := testutils.PerformRequest(e.router, "POST", base+"/posts", dto.CreatePostRequest{Title: "hello"}, nil)

	testutils.AssertStatusCode(t, http.StatusUnauthorized, w)
	var response dto.ErrorResponse
	testutils.ParseJSONResponse(t, w, &response)
	assert.Equal(t, "UNAUTHORIZED", response.Code)
}

func TestPostsHandler_CreatePost_InvalidBody(t *testing.T) {
	e := newEnv(t)

	w := testutils.PerformRequest(e.router, "POST", base+"/posts", map[string]string{"body": "no title"}, as(testutils.TestOwnerID))

	testutils.AssertStatusCode(t, http.StatusBadRequest, w)
}

func TestPostsHandler_CreateAndGet(t *testing.T) {
	e := newEnv(t)
	created := createPost(t, e, testutils.TestOwnerID, "public")

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testutils.TestOwnerID, created.OwnerID)
	assert.True(t, strings.HasPrefix(created.MediaURL, mediaBase+"/"))

	w := testutils.PerformRequest(e.router, "GET", base+"/posts/"+created.ID, nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)

	var got models.PostView
	testutils.ParseJSONResponse(t, w, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Sunrise over the harbour", got.Title)
	assert.Equal(t, int64(1), got.ViewerCount)
}

func TestPostsHandler_GetPost_PrivateIsNotFound(t *testing.T) {
	e := newEnv(t)
	created := createPost(t, e, testutils.TestOwnerID, "private")

	w := testutils.PerformRequest(e.router, "GET", base+"/posts/"+created.ID, nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusNotFound, w)

	w = testutils.PerformRequest(e.router, "GET", base+"/posts/"+created.ID, nil, as(testutils.TestOwnerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)
}

func TestPostsHandler_ListPosts(t *testing.T) {
	e := newEnv(t)
	createPost(t, e, testutils.TestOwnerID, "public")
	createPost(t, e, testutils.TestOwnerID, "private")

	w := testutils.PerformRequest(e.router, "GET", base+"/posts?page=1&pageSize=10", nil, nil)
	testutils.AssertStatusCode(t, http.StatusOK, w)

	var page dto.PostPageResponse
	testutils.ParseJSONResponse(t, w, &page)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 10, page.PageSize)
}

func TestPostsHandler_ListPosts_InvalidQuery(t *testing.T) {
	e := newEnv(t)

	w := testutils.PerformRequest(e.router, "GET", base+"/posts?pageSize=500", nil, nil)
	testutils.AssertStatusCode(t, http.StatusBadRequest, w)

	w = testutils.PerformRequest(e.router, "GET", base+"/posts?sort=popular", nil, nil)
	testutils.AssertStatusCode(t, http.StatusBadRequest, w)
}

func TestPostsHandler_UpdatePost(t *testing.T) {
	e := newEnv(t)
	created := createPost(t, e, testutils.TestOwnerID, "public")
	title := "Sunset instead"

	w := testutils.PerformRequest(e.router, "PATCH", base+"/posts/"+created.ID, dto.UpdatePostRequest{Title: &title}, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusForbidden, w)

	w = testutils.PerformRequest(e.router, "PATCH", base+"/posts/"+created.ID, dto.UpdatePostRequest{Title: &title}, as(testutils.TestOwnerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)

	w = testutils.PerformRequest(e.router, "GET", base+"/posts/"+created.ID, nil, nil)
	var got models.PostView
	testutils.ParseJSONResponse(t, w, &got)
	assert.Equal(t, title, got.Title)
}

func TestPostsHandler_DeletePost(t *testing.T) {
	e := newEnv(t)
	created := createPost(t, e, testutils.TestOwnerID, "public")

	w := testutils.PerformRequest(e.router, "DELETE", base+"/posts/"+created.ID, nil, as(testutils.TestOwnerID))
	testutils.AssertStatusCode(t, http.StatusNoContent, w)

	w = testutils.PerformRequest(e.router, "GET", base+"/posts/"+created.ID, nil, nil)
	testutils.AssertStatusCode(t, http.StatusNotFound, w)
}

func TestPostsHandler_LikeAndUnlike(t *testing.T) {
	e := newEnv(t)
	created := createPost(t, e, testutils.TestOwnerID, "public")
	path := base + "/posts/" + created.ID + "/like"

	for i := 0; i < 2; i++ {
		w := testutils.PerformRequest(e.router, "POST", path, nil, as(testutils.TestViewerID))
		testutils.AssertStatusCode(t, http.StatusOK, w)

		var state dto.LikeResponse
		testutils.ParseJSONResponse(t, w, &state)
		assert.True(t, state.Liked)
		assert.Equal(t, int64(1), state.LikeCount, "liking twice counts once")
	}

	w := testutils.PerformRequest(e.router, "GET", base+"/posts/"+created.ID, nil, as(testutils.TestViewerID))
	var view models.PostView
	testutils.ParseJSONResponse(t, w, &view)
	assert.True(t, view.LikedByMe)

	w = testutils.PerformRequest(e.router, "DELETE", path, nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)
	var state dto.LikeResponse
	testutils.ParseJSONResponse(t, w, &state)
	assert.False(t, state.Liked)
	assert.Equal(t, int64(0), state.LikeCount)
}

func TestPostsHandler_Comments(t *testing.T) {
	e := newEnv(t)
	created := createPost(t, e, testutils.TestOwnerID, "public")
	path := base + "/posts/" + created.ID + "/comments"

	w := testutils.PerformRequest(e.router, "POST", path, dto.CreateCommentRequest{Body: "Lovely light"}, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusCreated, w)
	var comment models.Comment
	testutils.ParseJSONResponse(t, w, &comment)

	w = testutils.PerformRequest(e.router, "GET", path, nil, nil)
	testutils.AssertStatusCode(t, http.StatusOK, w)
	var page dto.CommentPageResponse
	testutils.ParseJSONResponse(t, w, &page)
	assert.Equal(t, int64(1), page.Total)

	w = testutils.PerformRequest(e.router, "DELETE", path+"/"+comment.ID, nil, as("user-stranger"))
	testutils.AssertStatusCode(t, http.StatusForbidden, w)

	w = testutils.PerformRequest(e.router, "DELETE", path+"/"+comment.ID, nil, as(testutils.TestOwnerID))
	testutils.AssertStatusCode(t, http.StatusNoContent, w)

	w = testutils.PerformRequest(e.router, "GET", base+"/posts/"+created.ID, nil, nil)
	var view models.PostView
	testutils.ParseJSONResponse(t, w, &view)
	assert.Equal(t, int64(0), view.CommentCount)
}

func TestPostsHandler_FollowAndFeed(t *testing.T) {
	e := newEnv(t)
	created := createPost(t, e, testutils.TestOwnerID, "followers")

	w := testutils.PerformRequest(e.router, "GET", base+"/me/feed", nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)
	var page dto.PostPageResponse
	testutils.ParseJSONResponse(t, w, &page)
	assert.Empty(t, page.Items)

	w = testutils.PerformRequest(e.router, "POST", base+"/users/"+testutils.TestOwnerID+"/follow", nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)
	var follow dto.FollowResponse
	testutils.ParseJSONResponse(t, w, &follow)
	assert.True(t, follow.Following)

	w = testutils.PerformRequest(e.router, "GET", base+"/me/feed", nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)
	testutils.ParseJSONResponse(t, w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)

	w = testutils.PerformRequest(e.router, "GET", base+"/users/"+testutils.TestOwnerID+"/posts", nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)
	testutils.ParseJSONResponse(t, w, &page)
	assert.Len(t, page.Items, 1)

	w = testutils.PerformRequest(e.router, "DELETE", base+"/users/"+testutils.TestOwnerID+"/follow", nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)

	w = testutils.PerformRequest(e.router, "GET", base+"/users/"+testutils.TestOwnerID+"/posts", nil, as(testutils.TestViewerID))
	testutils.ParseJSONResponse(t, w, &page)
	assert.Empty(t, page.Items)
}

func TestPostsHandler_Follow_Self(t *testing.T) {
	e := newEnv(t)

	w := testutils.PerformRequest(e.router, "POST", base+"/users/"+testutils.TestViewerID+"/follow", nil, as(testutils.TestViewerID))

	testutils.AssertStatusCode(t, http.StatusBadRequest, w)
}

func TestPostsHandler_Feed_RequiresViewer(t *testing.T) {
	e := newEnv(t)

	w := testutils.PerformRequest(e.router, "GET", base+"/me/feed", nil, nil)

	testutils.AssertStatusCode(t, http.StatusUnauthorized, w)
}

func TestPostsHandler_RecentlyViewed(t *testing.T) {
	e := newEnv(t)
	first := createPost(t, e, testutils.TestOwnerID, "public")
	second := createPost(t, e, testutils.TestOwnerID, "public")

	testutils.PerformRequest(e.router, "GET", base+"/posts/"+first.ID, nil, as(testutils.TestViewerID))
	testutils.PerformRequest(e.router, "GET", base+"/posts/"+second.ID, nil, as(testutils.TestViewerID))

	w := testutils.PerformRequest(e.router, "GET", base+"/me/recent?limit=1", nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusOK, w)

	var response dto.RecentlyViewedResponse
	testutils.ParseJSONResponse(t, w, &response)
	require.Len(t, response.Posts, 1)
	assert.Equal(t, second.ID, response.Posts[0].ID)

	w = testutils.PerformRequest(e.router, "GET", base+"/me/recent?limit=zero", nil, as(testutils.TestViewerID))
	testutils.AssertStatusCode(t, http.StatusBadRequest, w)
}

func TestRoutes_UnknownPath(t *testing.T) {
	e := newEnv(t)

	w := testutils.PerformRequest(e.router, "GET", base+"/nope", nil, nil)

	testutils.AssertStatusCode(t, http.StatusNotFound, w)
	var response dto.ErrorResponse
	testutils.ParseJSONResponse(t, w, &response)
	assert.Equal(t, "NOT_FOUND", response.Code)
}
