package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, key, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestFSListAndGet(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "library/economist/2026/2026-01-20/meta.json", `{"title":"T"}`)
	writeFile(t, root, "library/economist/2026/2026-01-20/cover.jpg", "jpg")
	writeFile(t, root, "library-old/x.txt", "x")
	writeFile(t, root, "README.md", "readme")

	s, err := NewFS(root)
	require.NoError(t, err)

	page, err := s.List(ctx, ListOptions{Prefix: "library/"})
	require.NoError(t, err)
	require.Equal(t, []string{
		"library/economist/2026/2026-01-20/cover.jpg",
		"library/economist/2026/2026-01-20/meta.json",
	}, page.Keys())

	all, err := s.List(ctx, ListOptions{MaxKeys: 2})
	require.NoError(t, err)
	require.True(t, all.Truncated)
	require.Len(t, all.Objects, 2)

	obj, err := s.Get(ctx, "library/economist/2026/2026-01-20/cover.jpg", GetOptions{})
	require.NoError(t, err)
	require.Equal(t, []byte("jpg"), readAll(t, obj))
	require.NotEmpty(t, obj.Info.ETag)
	require.Equal(t, byte('"'), obj.Info.ETag[0])

	_, err = s.Get(ctx, "library/economist/2026/2026-01-20/document.pdf", GetOptions{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFSRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeFile(t, parent, "secret.txt", "nope")

	s, err := NewFS(root)
	require.NoError(t, err)

	for _, key := range []string{"../secret.txt", "library/../../secret.txt", "/etc/passwd"} {
		_, err := s.Get(ctx, key, GetOptions{})
		require.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestFSMissingPrefixDirectory(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	page, err := s.List(context.Background(), ListOptions{Prefix: "library/"})
	require.NoError(t, err)
	require.Empty(t, page.Objects)
}
