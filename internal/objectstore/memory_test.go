package objectstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, obj *Object) []byte {
	t.Helper()
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	return data
}

func TestMemoryListPagination(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, k := range []string{"library/a", "library/b", "library/c", "other/x"} {
		m.Put(k, []byte(k), "")
	}

	first, err := m.List(ctx, ListOptions{Prefix: "library/", MaxKeys: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"library/a", "library/b"}, first.Keys())
	require.True(t, first.Truncated)

	second, err := m.List(ctx, ListOptions{Prefix: "library/", MaxKeys: 2, ContinuationToken: first.NextToken})
	require.NoError(t, err)
	require.Equal(t, []string{"library/c"}, second.Keys())
	require.False(t, second.Truncated)
}

func TestMemoryGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put("k", []byte("0123456789"), "text/plain")

	obj, err := m.Get(ctx, "k", GetOptions{})
	require.NoError(t, err)
	require.Equal(t, "text/plain", obj.Info.ContentType)
	require.Equal(t, int64(10), obj.ContentLength())
	require.Equal(t, []byte("0123456789"), readAll(t, obj))

	ranged, err := m.Get(ctx, "k", GetOptions{Range: &ByteRange{Start: 2, End: 4}})
	require.NoError(t, err)
	require.Equal(t, &ContentRange{Start: 2, End: 4, Total: 10}, ranged.Range)
	require.Equal(t, []byte("234"), readAll(t, ranged))

	_, err = m.Get(ctx, "k", GetOptions{IfNoneMatch: obj.Info.ETag})
	require.ErrorIs(t, err, ErrNotModified)

	_, err = m.Get(ctx, "k", GetOptions{Range: &ByteRange{Start: 50, End: -1}})
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = m.Get(ctx, "missing", GetOptions{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFaults(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put("k", []byte("v"), "")

	boom := errors.New("boom")
	m.FailList(boom)
	_, err := m.List(ctx, ListOptions{})
	require.ErrorIs(t, err, boom)
	m.FailList(nil)

	m.FailGet("k", boom)
	_, err = m.Get(ctx, "k", GetOptions{})
	require.ErrorIs(t, err, boom)
	m.FailGet("k", nil)

	_, err = m.Get(ctx, "k", GetOptions{})
	require.NoError(t, err)
}
