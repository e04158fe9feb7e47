// Package sse writes Server-Sent Events frames to a gin response.
package sse

import (
	"bufio"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// EventType is the value of a frame's event field.
type EventType string

const (
	// EventReady is sent once the stream is subscribed. Its data is the
	// channel name.
	EventReady EventType = "ready"
	// EventInvalidation carries one applied invalidation.
	EventInvalidation EventType = "invalidation"
)

// ErrStreamingUnsupported is returned for response writers that cannot flush.
var ErrStreamingUnsupported = errors.New("sse: response writer does not support flushing")

// Writer writes frames and flushes each one immediately.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter sets the event-stream headers on w.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteEvent writes a frame without an id.
func (w *Writer) WriteEvent(event EventType, data string) error {
	return w.frame("", event, data)
}

// WriteEventWithID writes a frame whose id clients echo as Last-Event-ID.
func (w *Writer) WriteEventWithID(event EventType, id, data string) error {
	return w.frame(id, event, data)
}

// WriteJSONWithID writes v encoded as JSON.
func (w *Writer) WriteJSONWithID(event EventType, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.frame(id, event, string(data))
}

// WriteHeartbeat writes a comment frame that keeps idle proxies from
// closing the stream.
func (w *Writer) WriteHeartbeat() error {
	if _, err := w.w.Write([]byte(": ping\n\n")); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}

// frame writes one frame. Each line of data gets its own data field so
// embedded newlines survive.
func (w *Writer) frame(id string, event EventType, data string) error {
	var b strings.Builder
	if id != "" {
		b.WriteString("id: " + id + "\n")
	}
	b.WriteString("event: " + string(event) + "\n")
	sc := bufio.NewScanner(strings.NewReader(data))
	wrote := false
	for sc.Scan() {
		b.WriteString("data: " + sc.Text() + "\n")
		wrote = true
	}
	if !wrote {
		b.WriteString("data: \n")
	}
	b.WriteString("\n")

	if _, err := w.w.Write([]byte(b.String())); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}
