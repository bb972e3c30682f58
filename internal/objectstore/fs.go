package objectstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// FS serves a local directory laid out exactly like the bucket
// (library/<sourceId>/<year>/<issueId>/meta.json ...). It is meant for
// development against the operator's staging folder.
type FS struct {
	root string
}

func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve fs root %s: %w", root, err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat fs root %s: %w", abs, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("fs root %s is not a directory", abs)
	}
	return &FS{root: abs}, nil
}

func (s *FS) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	// Walk only the directory that can contain the prefix.
	startDir := "."
	if i := strings.LastIndex(opts.Prefix, "/"); i > 0 {
		startDir = opts.Prefix[:i]
	}
	start, err := s.localPath(startDir)
	if err != nil {
		return &ListPage{}, nil
	}

	var infos []ObjectInfo
	err = filepath.WalkDir(start, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, opts.Prefix) || key <= opts.ContinuationToken {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, s.info(key, fi))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", start, err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	limit := int(opts.MaxKeys)
	if limit <= 0 {
		limit = defaultMaxKeys
	}
	page := &ListPage{Objects: infos}
	if len(infos) > limit {
		page.Objects = infos[:limit]
		page.Truncated = true
		page.NextToken = infos[limit-1].Key
	}
	return page, nil
}

func (s *FS) Get(ctx context.Context, key string, opts GetOptions) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.localPath(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return serveSeeker(s.info(key, fi), f, f, opts)
}

// localPath maps a store key to a path under root, refusing escapes.
func (s *FS) localPath(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" {
		return s.root, nil
	}
	local := filepath.FromSlash(clean)
	if !filepath.IsLocal(local) || clean != strings.TrimSuffix(key, "/") {
		return "", fmt.Errorf("key %q is not a local path", key)
	}
	return filepath.Join(s.root, local), nil
}

// info builds metadata without reading content; the ETag fingerprints
// key, size and modification time.
func (s *FS) info(key string, fi fs.FileInfo) ObjectInfo {
	h := blake3.New()
	_, _ = h.Write([]byte(key + "\x00" +
		strconv.FormatInt(fi.Size(), 10) + "\x00" +
		strconv.FormatInt(fi.ModTime().UnixNano(), 10)))
	sum := h.Sum(nil)
	return ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		ETag:         QuoteETag(hex.EncodeToString(sum[:16])),
		LastModified: fi.ModTime().UTC(),
	}
}
