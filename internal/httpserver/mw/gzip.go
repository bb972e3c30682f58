package mw

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Gzip compresses JSON responses above 1 KiB. Mounted on /index and /debug only.
func Gzip() func(http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.ContentTypes([]string{"application/json"}),
	)
	if err != nil {
		panic(fmt.Sprintf("gzip middleware: %v", err))
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}
}
