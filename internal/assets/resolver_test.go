package assets

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
)

const pngMagic = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func read(t *testing.T, a *Asset) string {
	t.Helper()
	defer a.Body.Close()
	data, err := io.ReadAll(a.Body)
	require.NoError(t, err)
	return string(data)
}

func TestResolveContentType(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("library/economist/2026/2026-01-20/document.pdf", []byte("%PDF-1.7"), "")
	store.Put("library/economist/2026/2026-01-20/cover.jpg", []byte("jpg"), "binary/octet-stream")
	store.Put("library/economist/2026/2026-01-20/cover.PNG", []byte(pngMagic), "")
	store.Put("library/economist/2026/2026-01-20/cover.webp", []byte("webp"), "image/webp")
	store.Put("library/economist/2026/2026-01-20/notes", []byte(pngMagic), "application/octet-stream")
	store.Put("library/economist/2026/2026-01-20/empty", nil, "")

	r := NewResolver(store, 0, logger.Nop())

	tests := []struct {
		key  string
		want string
	}{
		{"library/economist/2026/2026-01-20/document.pdf", "application/pdf"},
		{"library/economist/2026/2026-01-20/cover.jpg", "image/jpeg"},
		{"library/economist/2026/2026-01-20/cover.PNG", "image/png"},
		{"library/economist/2026/2026-01-20/cover.webp", "image/webp"},
		{"library/economist/2026/2026-01-20/notes", "image/png"},
		{"library/economist/2026/2026-01-20/empty", FallbackContentType},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			a, err := r.Resolve(context.Background(), tt.key, Options{})
			require.NoError(t, err)
			defer a.Body.Close()
			require.Equal(t, tt.want, a.ContentType)
		})
	}
}

func TestResolveSniffKeepsBody(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("blob", []byte(pngMagic+"tail"), "")

	a, err := NewResolver(store, 0, logger.Nop()).Resolve(context.Background(), "blob", Options{})
	require.NoError(t, err)
	require.Equal(t, "image/png", a.ContentType)
	require.Equal(t, pngMagic+"tail", read(t, a))
}

func TestResolveHeaders(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("library/economist/2026/2026-01-20/document.pdf", []byte("%PDF-1.7 body"), "")

	a, err := NewResolver(store, 24*time.Hour, logger.Nop()).
		Resolve(context.Background(), "library/economist/2026/2026-01-20/document.pdf", Options{})
	require.NoError(t, err)

	require.Equal(t, "public, max-age=86400", a.CacheControl)
	require.NotEmpty(t, a.ETag)
	require.Equal(t, byte('"'), a.ETag[0])
	require.Equal(t, int64(13), a.ContentLength())
	require.Nil(t, a.Range)
	require.Equal(t, "%PDF-1.7 body", read(t, a))
}

func TestResolveRange(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("doc.bin", []byte("0123456789"), "")
	r := NewResolver(store, 0, logger.Nop())

	a, err := r.Resolve(context.Background(), "doc.bin", Options{Range: &objectstore.ByteRange{Start: 2, End: 5}})
	require.NoError(t, err)
	require.Equal(t, FallbackContentType, a.ContentType)
	require.Equal(t, int64(10), a.Size)
	require.Equal(t, int64(4), a.ContentLength())
	require.Equal(t, "bytes 2-5/10", a.Range.Header())
	require.Equal(t, "2345", read(t, a))

	_, err = r.Resolve(context.Background(), "doc.bin", Options{Range: &objectstore.ByteRange{Start: 50, End: -1}})
	require.ErrorIs(t, err, objectstore.ErrInvalidRange)
}

func TestResolveNotModified(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("cover.jpg", []byte("jpg"), "")
	r := NewResolver(store, 0, logger.Nop())

	a, err := r.Resolve(context.Background(), "cover.jpg", Options{})
	require.NoError(t, err)
	a.Body.Close()

	_, err = r.Resolve(context.Background(), "cover.jpg", Options{IfNoneMatch: a.ETag})
	require.ErrorIs(t, err, objectstore.ErrNotModified)
}

func TestResolveNotFound(t *testing.T) {
	store := objectstore.NewMemory()
	r := NewResolver(store, 0, logger.Nop())

	for _, key := range []string{"", "library/", "library/economist/2026/2026-01-20/cover.jpg"} {
		_, err := r.Resolve(context.Background(), key, Options{})
		require.ErrorIs(t, err, objectstore.ErrNotFound, key)
	}
}

func TestResolveBackendError(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("cover.jpg", []byte("jpg"), "")
	boom := errors.New("boom")
	store.FailGet("cover.jpg", boom)

	_, err := NewResolver(store, 0, logger.Nop()).Resolve(context.Background(), "cover.jpg", Options{})
	require.ErrorIs(t, err, boom)
	require.False(t, errors.Is(err, objectstore.ErrNotFound))
}

func TestUsable(t *testing.T) {
	require.Equal(t, "", usable(""))
	require.Equal(t, "", usable("application/octet-stream"))
	require.Equal(t, "", usable("Binary/Octet-Stream; charset=binary"))
	require.Equal(t, "image/jpeg", usable(" image/jpeg "))
}
