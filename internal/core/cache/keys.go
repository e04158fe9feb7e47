package cache

import (
	"strconv"
	"strings"
	"time"
)

// Separator joins the segments of a cache key.
const Separator = ":"

// emptyParam stands in for an empty parameter so that a missing value never
// shifts the remaining segments.
const emptyParam = "~"

// paramEscaper keeps parameter values from introducing separators or glob
// metacharacters into a key. '%' is escaped first so escapes are unambiguous.
var paramEscaper = strings.NewReplacer(
	"%", "%25",
	":", "%3A",
	"*", "%2A",
	"?", "%3F",
	"[", "%5B",
	"]", "%5D",
	"\\", "%5C",
	"~", "%7E",
)

// Key builds a deterministic cache key from a logical name and ordered
// parameters. Parameters are escaped, so two different parameter lists
// never produce the same key.
//
//	cache.NewKey("posts").Int(1).Int(20).Str("recent").Str("anon").Bucket(now, time.Hour).String()
//	// "posts:1:20:recent:anon:2024010110"
type Key struct {
	parts []string
}

// NewKey starts a key for the given logical name.
func NewKey(name string) *Key {
	return &Key{parts: []string{escapeParam(name)}}
}

// Str appends a string parameter.
func (k *Key) Str(s string) *Key {
	k.parts = append(k.parts, escapeParam(s))
	return k
}

// Int appends an integer parameter.
func (k *Key) Int(i int) *Key {
	k.parts = append(k.parts, strconv.Itoa(i))
	return k
}

// Int64 appends an int64 parameter.
func (k *Key) Int64(i int64) *Key {
	k.parts = append(k.parts, strconv.FormatInt(i, 10))
	return k
}

// Bool appends a boolean parameter.
func (k *Key) Bool(b bool) *Key {
	k.parts = append(k.parts, strconv.FormatBool(b))
	return k
}

// Bucket appends t truncated to granularity, in UTC. Keys built in different
// windows differ, so an old window becomes unreachable even if its TTL write
// was lost.
func (k *Key) Bucket(t time.Time, granularity time.Duration) *Key {
	k.parts = append(k.parts, TimeBucket(t, granularity))
	return k
}

// String returns the joined key.
func (k *Key) String() string {
	return strings.Join(k.parts, Separator)
}

// Pattern returns a glob matching every key that extends this key's segments.
func (k *Key) Pattern() string {
	return k.String() + Separator + "*"
}

// Pattern returns the family glob for a logical name: "name:*".
func Pattern(name string) string {
	return NewKey(name).Pattern()
}

// TimeBucket formats t truncated to granularity. Granularities of a day or
// more render as yyyymmdd, of an hour or more as yyyymmddhh, anything finer
// as yyyymmddhhmm.
func TimeBucket(t time.Time, granularity time.Duration) string {
	t = t.UTC()
	if granularity > 0 {
		t = t.Truncate(granularity)
	}
	switch {
	case granularity >= 24*time.Hour:
		return t.Format("20060102")
	case granularity >= time.Hour:
		return t.Format("2006010215")
	default:
		return t.Format("200601021504")
	}
}

func escapeParam(s string) string {
	if s == "" {
		return emptyParam
	}
	return paramEscaper.Replace(s)
}
