// Package testutils holds the fixtures, the miniredis-backed store and the
// gin request helpers shared by package tests.
package testutils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/api/middleware"
)

// SetupTestRouter returns an empty gin engine in test mode.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// newRequest builds a request whose body, when given, is encoded as JSON.
func newRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewTestContextWithRequest returns a gin context for calling a handler
// directly, bypassing routing and middleware.
func NewTestContextWithRequest(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newRequest(method, path, body)
	return c, w
}

// SetPathParams sets the route parameters a handler reads with c.Param.
func SetPathParams(c *gin.Context, params map[string]string) {
	c.Params = c.Params[:0]
	for key, value := range params {
		c.Params = append(c.Params, gin.Param{Key: key, Value: value})
	}
}

// SetViewer makes the request act for userID.
func SetViewer(c *gin.Context, userID string) {
	c.Request.Header.Set(middleware.ViewerHeader, userID)
}

// PerformRequest sends a request through router and records the response.
func PerformRequest(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	req := newRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ParseJSONResponse decodes the recorded body into v.
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

// AssertStatusCode fails the test now when the status differs, printing the
// body, which usually holds the error code.
func AssertStatusCode(t *testing.T, expected int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, expected, w.Code, "unexpected status code: %s", w.Body.String())
}
