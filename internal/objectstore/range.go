package objectstore

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteRange is a single range from a "Range: bytes=..." header.
// Exactly one form is used: Start..End (End < 0 means open-ended), or Suffix.
type ByteRange struct {
	Start  int64
	End    int64
	Suffix int64 // last N bytes; Start/End ignored when > 0
}

// ContentRange is a range resolved against the object's total size.
type ContentRange struct {
	Start int64
	End   int64 // inclusive
	Total int64
}

func (c ContentRange) Length() int64 { return c.End - c.Start + 1 }

// Header renders the Content-Range response header value.
func (c ContentRange) Header() string {
	return fmt.Sprintf("bytes %d-%d/%d", c.Start, c.End, c.Total)
}

// ParseRange parses a Range header. It returns nil, nil when the header is
// empty or names several ranges: serving the full representation is always
// an acceptable answer to a multi-range request.
func ParseRange(header string) (*ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, fmt.Errorf("%w: unsupported unit in %q", ErrInvalidRange, header)
	}
	if strings.Contains(spec, ",") {
		return nil, nil
	}
	first, last, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, header)
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRange, header)
		}
		return &ByteRange{Suffix: n}, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, header)
	}
	end := int64(-1)
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRange, header)
		}
	}
	return &ByteRange{Start: start, End: end}, nil
}

// Resolve clamps the range to an object of the given size.
func (r ByteRange) Resolve(size int64) (ContentRange, error) {
	if size <= 0 {
		return ContentRange{}, ErrInvalidRange
	}
	if r.Suffix > 0 {
		n := r.Suffix
		if n > size {
			n = size
		}
		return ContentRange{Start: size - n, End: size - 1, Total: size}, nil
	}
	if r.Start >= size {
		return ContentRange{}, ErrInvalidRange
	}
	end := r.End
	if end < 0 || end >= size {
		end = size - 1
	}
	return ContentRange{Start: r.Start, End: end, Total: size}, nil
}

// String renders the range as a request header value ("bytes=0-99").
func (r ByteRange) String() string {
	switch {
	case r.Suffix > 0:
		return fmt.Sprintf("bytes=-%d", r.Suffix)
	case r.End < 0:
		return fmt.Sprintf("bytes=%d-", r.Start)
	default:
		return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
	}
}

// parseContentRange reads "bytes 0-99/1000" as returned by S3.
func parseContentRange(v string) (*ContentRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(v), "bytes ")
	if !ok {
		return nil, fmt.Errorf("unexpected content range %q", v)
	}
	span, total, ok := strings.Cut(spec, "/")
	if !ok {
		return nil, fmt.Errorf("unexpected content range %q", v)
	}
	first, last, ok := strings.Cut(span, "-")
	if !ok {
		return nil, fmt.Errorf("unexpected content range %q", v)
	}
	var cr ContentRange
	var err error
	if cr.Start, err = strconv.ParseInt(first, 10, 64); err != nil {
		return nil, fmt.Errorf("content range start: %w", err)
	}
	if cr.End, err = strconv.ParseInt(last, 10, 64); err != nil {
		return nil, fmt.Errorf("content range end: %w", err)
	}
	if total == "*" {
		cr.Total = -1
	} else if cr.Total, err = strconv.ParseInt(total, 10, 64); err != nil {
		return nil, fmt.Errorf("content range total: %w", err)
	}
	return &cr, nil
}
