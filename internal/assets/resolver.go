// Package assets serves covers and documents straight from the object store.
package assets

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
)

const (
	// DefaultMaxAge is the Cache-Control max-age for published assets.
	DefaultMaxAge = 24 * time.Hour
	// FallbackContentType is used when nothing better is known.
	FallbackContentType = "application/octet-stream"

	sniffLen = 3072
)

// byExtension is consulted when the object carries no usable content type.
var byExtension = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Options are the conditional/partial request parameters for Resolve.
type Options struct {
	Range       *objectstore.ByteRange
	IfNoneMatch string
}

// Asset is a resolved object ready to be written to a response.
type Asset struct {
	Key                string
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLanguage    string
	ETag               string
	LastModified       time.Time
	CacheControl       string
	Size               int64                     // full object size
	Range              *objectstore.ContentRange // nil => whole object
}

// ContentLength is the number of bytes Body yields.
func (a *Asset) ContentLength() int64 {
	if a.Range != nil {
		return a.Range.Length()
	}
	return a.Size
}

type Resolver struct {
	store        objectstore.Store
	cacheControl string
	logger       logger.Logger
}

func NewResolver(store objectstore.Store, maxAge time.Duration, log logger.Logger) *Resolver {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Resolver{
		store:        store,
		cacheControl: fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second)),
		logger:       log,
	}
}

// CacheControl is the directive attached to every resolved asset.
func (r *Resolver) CacheControl() string { return r.cacheControl }

// Resolve looks key up as-is. Errors are the objectstore sentinels:
// ErrNotFound, ErrNotModified and ErrInvalidRange, or a backend failure.
func (r *Resolver) Resolve(ctx context.Context, key string, opts Options) (*Asset, error) {
	if key == "" || strings.HasSuffix(key, "/") {
		return nil, fmt.Errorf("%w: %q", objectstore.ErrNotFound, key)
	}

	obj, err := r.store.Get(ctx, key, objectstore.GetOptions{
		Range:       opts.Range,
		IfNoneMatch: opts.IfNoneMatch,
	})
	if err != nil {
		return nil, err
	}

	a := &Asset{
		Key:                key,
		Body:               obj.Body,
		ContentDisposition: obj.Info.ContentDisposition,
		ContentLanguage:    obj.Info.ContentLanguage,
		ETag:               obj.Info.ETag,
		LastModified:       obj.Info.LastModified,
		CacheControl:       r.cacheControl,
		Size:               obj.Info.Size,
		Range:              obj.Range,
	}
	a.ContentType = r.contentType(a, obj.Info.ContentType)
	return a, nil
}

// contentType prefers stored metadata, then the extension table, then a
// sniff of the first bytes when the whole object is being served.
func (r *Resolver) contentType(a *Asset, stored string) string {
	if ct := usable(stored); ct != "" {
		return ct
	}
	if ct, ok := byExtension[strings.ToLower(path.Ext(a.Key))]; ok {
		return ct
	}
	if a.Range != nil {
		return FallbackContentType
	}

	br := bufio.NewReaderSize(a.Body, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		r.logger.Debug("content sniff failed", logger.String("key", a.Key), logger.Error(err))
	}
	a.Body = struct {
		io.Reader
		io.Closer
	}{br, a.Body}
	if len(head) == 0 {
		return FallbackContentType
	}
	return mimetype.Detect(head).String()
}

// usable drops the generic types S3 clients stamp on untyped uploads, so an
// object stored as application/octet-stream is served with its extension or
// sniffed type. R2's writeHttpMetadata would pass the stored value through
// unchanged; this resolver intentionally does not.
func usable(ct string) string {
	ct = strings.TrimSpace(ct)
	base, _, _ := strings.Cut(ct, ";")
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "", "application/octet-stream", "binary/octet-stream":
		return ""
	}
	return ct
}
