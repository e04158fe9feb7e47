package cache

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Codec converts one concrete type to and from its stored payload.
// The codec is chosen by the caller at compile time; nothing in this
// package inspects values at runtime to pick an encoding.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// StringCodec stores strings as-is.
type StringCodec struct{}

func (StringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }

func (StringCodec) Decode(data []byte) (string, error) { return string(data), nil }

// IntCodec stores ints in base-10 text so they stay usable as raw counters.
type IntCodec struct{}

func (IntCodec) Encode(v int) ([]byte, error) { return strconv.AppendInt(nil, int64(v), 10), nil }

func (IntCodec) Decode(data []byte) (int, error) {
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("decode int: %w", err)
	}
	return n, nil
}

// Int64Codec stores int64 values in base-10 text.
type Int64Codec struct{}

func (Int64Codec) Encode(v int64) ([]byte, error) { return strconv.AppendInt(nil, v, 10), nil }

func (Int64Codec) Decode(data []byte) (int64, error) {
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode int64: %w", err)
	}
	return n, nil
}

// Float64Codec stores floats in their shortest round-tripping text form.
type Float64Codec struct{}

func (Float64Codec) Encode(v float64) ([]byte, error) {
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

func (Float64Codec) Decode(data []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return 0, fmt.Errorf("decode float64: %w", err)
	}
	return f, nil
}

// BoolCodec stores booleans as "true"/"false".
type BoolCodec struct{}

func (BoolCodec) Encode(v bool) ([]byte, error) { return strconv.AppendBool(nil, v), nil }

func (BoolCodec) Decode(data []byte) (bool, error) {
	b, err := strconv.ParseBool(string(data))
	if err != nil {
		return false, fmt.Errorf("decode bool: %w", err)
	}
	return b, nil
}

// TimeCodec stores timestamps as RFC 3339 text with nanoseconds and the
// zone offset of the value. Zone names are not kept: a decoded time carries
// a fixed zone with the same offset, or UTC.
type TimeCodec struct{}

func (TimeCodec) Encode(v time.Time) ([]byte, error) {
	return []byte(v.Format(time.RFC3339Nano)), nil
}

func (TimeCodec) Decode(data []byte) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, fmt.Errorf("decode time: %w", err)
	}
	return t, nil
}

// JSONOptions configures a JSONCodec. It is copied into the codec at
// construction and never changes afterwards.
type JSONOptions struct {
	// DisallowUnknownFields rejects payloads written by a newer schema.
	// Leave false to tolerate added fields across versions.
	DisallowUnknownFields bool

	// UseNumber decodes numbers into interface{} fields as json.Number.
	UseNumber bool

	// EscapeHTML escapes <, > and & inside strings.
	EscapeHTML bool
}

// DefaultJSONOptions tolerates unknown fields and keeps HTML unescaped.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{}
}

// JSONCodec stores structured values as JSON documents. Field names and
// null omission come from the type's struct tags.
type JSONCodec[T any] struct {
	opts JSONOptions
}

// NewJSONCodec creates a JSON codec for T.
func NewJSONCodec[T any](opts JSONOptions) JSONCodec[T] {
	return JSONCodec[T]{opts: opts}
}

var jsonNull = []byte("null")

// Encode marshals v. A value that marshals to null is refused with ErrNilValue.
func (c JSONCodec[T]) Encode(v T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(c.opts.EscapeHTML)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")
	if bytes.Equal(data, jsonNull) {
		return nil, ErrNilValue
	}
	return data, nil
}

// Decode unmarshals data into a new T.
func (c JSONCodec[T]) Decode(data []byte) (T, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if c.opts.UseNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(&v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}
