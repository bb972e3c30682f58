package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiic/library/internal/config"
	"github.com/hiic/library/internal/domain"
	"github.com/hiic/library/internal/objectstore"
)

func testOpener(store objectstore.Store) Opener {
	return func(context.Context) (objectstore.Store, *config.Config, error) {
		return store, &config.Config{Namespace: "library", FetchConcurrency: 4, ListPageSize: 1000, ListAllPages: true}, nil
	}
}

func seeded() *objectstore.Memory {
	store := objectstore.NewMemory()
	store.Put("library/economist/2026/2026-01-20/meta.json",
		[]byte(`{"title":"The World Ahead","issueNumber":"9431","publishDate":"2026-01-20","summary":"s","keyTakeaways":["a"]}`), "")
	store.Put("library/economist/2026/2026-01-20/cover.jpg", []byte("jpg"), "")
	store.Put("library/barrons/2026/2026-01-05/meta.json",
		[]byte(`{"title":"Barron's","issueNumber":"1","publishDate":"2026-01-05","summary":"s","keyTakeaways":[]}`), "")
	store.Put("library/barrons/2026/2026-01-12/meta.json", []byte(`not json`), "")
	store.Put("elsewhere/readme.txt", []byte("x"), "")
	return store
}

func run(t *testing.T, store objectstore.Store, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(testOpener(store))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, seeded(), "--format", "yaml", "catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCatalogText(t *testing.T) {
	out, err := run(t, seeded(), "catalog")
	require.NoError(t, err)

	assert.Contains(t, out, "The World Ahead")
	assert.Contains(t, out, "skipped library/barrons/2026/2026-01-12/meta.json (invalid_json)")
	assert.Contains(t, out, "2 issues, 1 skipped, 4 keys listed")
	assert.Less(t, bytes.Index([]byte(out), []byte("economist")), bytes.Index([]byte(out), []byte("barrons")),
		"newest issue first")
}

func TestCatalogJSON(t *testing.T) {
	out, err := run(t, seeded(), "--format", "json", "catalog")
	require.NoError(t, err)

	var resp catalogOutput
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Issues, 2)
	assert.Equal(t, "economist", resp.Issues[0].SourceID)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, domain.SkipInvalidJSON, resp.Skipped[0].Reason)
	assert.False(t, resp.Truncated)
}

func TestCatalogListFailure(t *testing.T) {
	store := seeded()
	store.FailList(errors.New("access denied"))
	_, err := run(t, store, "catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestKeys(t *testing.T) {
	out, err := run(t, seeded(), "keys")
	require.NoError(t, err)
	assert.NotContains(t, out, "elsewhere/readme.txt")
	assert.Contains(t, out, "library/economist/2026/2026-01-20/cover.jpg")

	out, err = run(t, seeded(), "--format", "json", "keys", "--prefix", "")
	require.NoError(t, err)
	var resp keysOutput
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Keys, 5)
}

func TestKeysAllPages(t *testing.T) {
	store := objectstore.NewMemory()
	for _, k := range []string{"library/a", "library/b", "library/c"} {
		store.Put(k, []byte(k), "")
	}
	opener := func(context.Context) (objectstore.Store, *config.Config, error) {
		return pagedStore{store}, &config.Config{Namespace: "library"}, nil
	}

	buf := &bytes.Buffer{}
	cmd := NewRootCommand(opener)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"keys"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "library/a\n... more keys, use --all\n", buf.String())

	buf.Reset()
	cmd = NewRootCommand(opener)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"keys", "--all"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "library/a\nlibrary/b\nlibrary/c\n", buf.String())
}

// pagedStore forces one key per page.
type pagedStore struct{ *objectstore.Memory }

func (p pagedStore) List(ctx context.Context, opts objectstore.ListOptions) (*objectstore.ListPage, error) {
	opts.MaxKeys = 1
	return p.Memory.List(ctx, opts)
}

func TestCheck(t *testing.T) {
	out, err := run(t, seeded(), "check", "library/economist/2026/2026-01-20/meta.json")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ economist/2026-01-20 "The World Ahead"`)
	assert.Contains(t, out, "✓ library/economist/2026/2026-01-20/cover.jpg")
	assert.Contains(t, out, "✗ library/economist/2026/2026-01-20/document.pdf")
}

func TestCheckSkipped(t *testing.T) {
	tests := []struct {
		key    string
		reason domain.SkipReason
	}{
		{"library/barrons/2026/2026-01-12/meta.json", domain.SkipInvalidJSON},
		{"library/barrons/2026/2026-01-19/meta.json", domain.SkipMissingObject},
		{"library/barrons/meta.json", domain.SkipMissingObject},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			out, err := run(t, seeded(), "--format", "json", "check", tt.key)
			require.ErrorIs(t, err, ErrCheckFailed)

			var resp checkOutput
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Skipped)
			assert.Equal(t, tt.reason, resp.Skipped.Reason)
		})
	}
}

func TestCheckMalformedKey(t *testing.T) {
	store := seeded()
	store.Put("library/barrons/2026-01-05/meta.json", []byte(`{}`), "")
	out, err := run(t, store, "check", "library/barrons/2026-01-05/meta.json")
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, out, "malformed_key")
}
