package objectstore

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// Memory is an in-process Store. It backs tests and local experiments and
// supports fault injection on listing and per-key reads.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject

	listErr error
	getErrs map[string]error

	// OnGet, when set, runs at the start of every Get outside the lock.
	OnGet func(key string)
}

type memObject struct {
	data []byte
	info ObjectInfo
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]memObject),
		getErrs: make(map[string]error),
	}
}

// Put stores data at key. contentType may be empty.
func (m *Memory) Put(key string, data []byte, contentType string) {
	sum := blake3.Sum256(data)
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{
		data: buf,
		info: ObjectInfo{
			Key:          key,
			Size:         int64(len(buf)),
			ETag:         QuoteETag(hex.EncodeToString(sum[:16])),
			LastModified: time.Now().UTC().Truncate(time.Second),
			ContentType:  contentType,
		},
	}
}

// Delete removes key if present.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

// FailList makes every List call return err (nil clears it).
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// FailGet makes Get on key return err (nil clears it).
func (m *Memory) FailGet(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.getErrs, key)
		return
	}
	m.getErrs[key] = err
}

func (m *Memory) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, opts.Prefix) && k > opts.ContinuationToken {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	limit := int(opts.MaxKeys)
	if limit <= 0 {
		limit = defaultMaxKeys
	}

	page := &ListPage{}
	if len(keys) > limit {
		keys = keys[:limit]
		page.Truncated = true
		page.NextToken = keys[len(keys)-1]
	}
	page.Objects = make([]ObjectInfo, len(keys))
	for i, k := range keys {
		page.Objects[i] = m.objects[k].info
	}
	return page, nil
}

func (m *Memory) Get(ctx context.Context, key string, opts GetOptions) (*Object, error) {
	if m.OnGet != nil {
		m.OnGet(key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	obj, ok := m.objects[key]
	getErr := m.getErrs[key]
	m.mu.RUnlock()

	if getErr != nil {
		return nil, getErr
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return serveSeeker(obj.info, bytes.NewReader(obj.data), io.NopCloser(nil), opts)
}

type readCloser struct {
	io.Reader
	io.Closer
}

// serveSeeker applies conditional and range options to a seekable body.
// c is closed when an error is returned.
func serveSeeker(info ObjectInfo, r io.ReadSeeker, c io.Closer, opts GetOptions) (*Object, error) {
	if ETagMatches(opts.IfNoneMatch, info.ETag) {
		_ = c.Close()
		return nil, ErrNotModified
	}
	if opts.Range == nil {
		return &Object{Info: info, Body: readCloser{Reader: r, Closer: c}}, nil
	}
	cr, err := opts.Range.Resolve(info.Size)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if _, err := r.Seek(cr.Start, io.SeekStart); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("seek: %w", err)
	}
	return &Object{
		Info:  info,
		Body:  readCloser{Reader: io.LimitReader(r, cr.Length()), Closer: c},
		Range: &cr,
	}, nil
}
