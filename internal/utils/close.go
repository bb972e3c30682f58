package utils

import (
	"io"

	"github.com/hiic/library/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs any error at DEBUG with the given key.
func CloseLogged(c io.Closer, log logger.Logger, key string) {
	if err := c.Close(); err != nil {
		log.Debug("failed to close", logger.String("key", key), logger.Error(err))
	}
}
