package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hiic/library/internal/assets"
	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
	"github.com/hiic/library/internal/utils"
)

const assetsSegment = "/assets/"

// Asset streams one object. The key is the escaped request path after
// "<base>/assets/", percent-decoded exactly once.
func Asset(d deps.Deps) http.HandlerFunc {
	prefix := d.BasePath + assetsSegment

	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := assetKey(r, prefix)
		if !ok {
			fileNotFound(w)
			return
		}

		opts := assets.Options{IfNoneMatch: r.Header.Get("If-None-Match")}
		if rng, err := objectstore.ParseRange(r.Header.Get("Range")); err != nil {
			d.Logger.Debug("ignoring malformed range", logger.String("range", r.Header.Get("Range")))
		} else if r.Header.Get("If-Range") == "" {
			opts.Range = rng
		}

		a, err := d.Assets.Resolve(r.Context(), key, opts)
		switch {
		case err == nil:
		case errors.Is(err, objectstore.ErrNotFound):
			fileNotFound(w)
			return
		case errors.Is(err, objectstore.ErrNotModified):
			w.Header().Set("Cache-Control", d.Assets.CacheControl())
			if etag := r.Header.Get("If-None-Match"); !strings.Contains(etag, ",") && etag != "*" {
				w.Header().Set("ETag", etag)
			}
			w.WriteHeader(http.StatusNotModified)
			return
		case errors.Is(err, objectstore.ErrInvalidRange):
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			_, _ = w.Write([]byte("Range Not Satisfiable"))
			return
		default:
			d.Logger.Error("asset fetch failed", logger.String("key", key), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		defer utils.CloseLogged(a.Body, d.Logger, key)

		h := w.Header()
		h.Set("Content-Type", a.ContentType)
		if a.ContentDisposition != "" {
			h.Set("Content-Disposition", a.ContentDisposition)
		}
		if a.ContentLanguage != "" {
			h.Set("Content-Language", a.ContentLanguage)
		}
		if a.ETag != "" {
			h.Set("ETag", a.ETag)
		}
		if !a.LastModified.IsZero() {
			h.Set("Last-Modified", a.LastModified.UTC().Format(http.TimeFormat))
		}
		h.Set("Cache-Control", a.CacheControl)
		h.Set("Accept-Ranges", "bytes")
		h.Set("Content-Length", strconv.FormatInt(a.ContentLength(), 10))

		status := http.StatusOK
		if a.Range != nil {
			h.Set("Content-Range", a.Range.Header())
			status = http.StatusPartialContent
		}
		w.WriteHeader(status)

		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, a.Body); err != nil {
			d.Logger.Debug("asset stream interrupted", logger.String("key", key), logger.Error(err))
		}
	}
}

// assetKey extracts the object key from the escaped path so that an encoded
// "/" (%2F) or "%" (%25) inside a segment survives as a literal character.
func assetKey(r *http.Request, prefix string) (string, bool) {
	raw, ok := strings.CutPrefix(r.URL.EscapedPath(), prefix)
	if !ok || raw == "" {
		return "", false
	}
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func fileNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("File Not Found"))
}
