package sse_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/api/sse"
)

type noFlush struct{ http.ResponseWriter }

func TestWriter_Frames(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := sse.NewWriter(rec)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	require.NoError(t, w.WriteEvent(sse.EventReady, "invalidations"))
	require.NoError(t, w.WriteJSONWithID(sse.EventInvalidation, "evt-1", map[string]string{"entity": "post"}))
	require.NoError(t, w.WriteEventWithID(sse.EventInvalidation, "evt-2", "line one\nline two"))
	require.NoError(t, w.WriteHeartbeat())

	assert.Equal(t,
		"event: ready\ndata: invalidations\n\n"+
			"id: evt-1\nevent: invalidation\ndata: {\"entity\":\"post\"}\n\n"+
			"id: evt-2\nevent: invalidation\ndata: line one\ndata: line two\n\n"+
			": ping\n\n",
		rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestWriter_RequiresFlusher(t *testing.T) {
	_, err := sse.NewWriter(noFlush{httptest.NewRecorder()})
	assert.ErrorIs(t, err, sse.ErrStreamingUnsupported)
}
