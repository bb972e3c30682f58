// Package objectstore is the read-only client side of the key-addressed blob
// store that holds library content. Backends: S3-compatible buckets, a local
// directory, and an in-memory map.
package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound means the key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrNotModified means GetOptions.IfNoneMatch matched the current ETag.
	ErrNotModified = errors.New("object not modified")
	// ErrInvalidRange means the requested byte range cannot be satisfied.
	ErrInvalidRange = errors.New("invalid byte range")
)

// Store is the subset of an object store the library needs.
type Store interface {
	// List returns one page of keys under opts.Prefix in lexical order.
	List(ctx context.Context, opts ListOptions) (*ListPage, error)
	// Get opens the object at key. The caller must close Object.Body.
	Get(ctx context.Context, key string, opts GetOptions) (*Object, error)
}

type ListOptions struct {
	Prefix            string
	MaxKeys           int32  // 0 => backend default (1000)
	ContinuationToken string // empty => first page
}

type ListPage struct {
	Objects   []ObjectInfo
	Truncated bool
	NextToken string // set when Truncated
}

// Keys returns the keys of the page in listing order.
func (p *ListPage) Keys() []string {
	keys := make([]string, len(p.Objects))
	for i, o := range p.Objects {
		keys[i] = o.Key
	}
	return keys
}

// ObjectInfo carries the object's identity and stored HTTP metadata.
type ObjectInfo struct {
	Key                string
	Size               int64
	ETag               string // always quoted
	LastModified       time.Time
	ContentType        string // empty when nothing was stored
	ContentDisposition string
	ContentLanguage    string
}

type GetOptions struct {
	Range       *ByteRange // nil => whole object
	IfNoneMatch string     // quoted ETag, or empty
}

type Object struct {
	Info ObjectInfo
	Body io.ReadCloser
	// Range is set when only part of the object is in Body.
	Range *ContentRange
}

// ContentLength is the number of bytes Body will yield.
func (o *Object) ContentLength() int64 {
	if o.Range != nil {
		return o.Range.Length()
	}
	return o.Info.Size
}

const defaultMaxKeys = 1000

// QuoteETag wraps an entity tag in double quotes unless it already is (or is weak).
func QuoteETag(tag string) string {
	if tag == "" || strings.HasPrefix(tag, `"`) || strings.HasPrefix(tag, `W/"`) {
		return tag
	}
	return `"` + tag + `"`
}

// ETagMatches reports whether an If-None-Match header value matches etag.
func ETagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == want {
			return true
		}
	}
	return false
}
