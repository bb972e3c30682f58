package app

import (
	"context"
	"fmt"

	"github.com/hiic/library/internal/catalog"
	"github.com/hiic/library/internal/config"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
)

// OpenStore returns the object store backend selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
	switch cfg.Store {
	case config.StoreS3:
		s, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Profile:         cfg.S3Profile,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open s3 bucket %s: %w", cfg.S3Bucket, err)
		}
		return s, nil
	case config.StoreFS:
		s, err := objectstore.NewFS(cfg.FSRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to open fs store %s: %w", cfg.FSRoot, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// NewAssembler builds the catalog assembler from cfg.
func NewAssembler(store objectstore.Store, cfg *config.Config, log logger.Logger) *catalog.Assembler {
	return catalog.NewAssembler(store, catalog.Options{
		Namespace:   cfg.Namespace,
		Concurrency: cfg.FetchConcurrency,
		PageSize:    int32(cfg.ListPageSize),
		AllPages:    cfg.ListAllPages,
	}, log)
}
