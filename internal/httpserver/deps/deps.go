package deps

import (
	"context"
	"time"

	"github.com/hiic/library/internal/assets"
	"github.com/hiic/library/internal/catalog"
	"github.com/hiic/library/internal/domain"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
	redisstore "github.com/hiic/library/internal/store/redis"
	"github.com/hiic/library/internal/version"
)

// CatalogBuilder assembles a fresh catalog per call.
type CatalogBuilder interface {
	Build(ctx context.Context) (*catalog.Catalog, error)
}

// AuditLedger exposes the last recorded audit.
type AuditLedger interface {
	LastAudit(ctx context.Context) (*redisstore.AuditSummary, error)
	Skipped(ctx context.Context) ([]domain.SkippedKey, error)
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Build           version.Info
	BasePath        string            // "/api/library", or "" for root
	Store           objectstore.Store // read-only object store
	Catalog         CatalogBuilder    // rebuilt on every /index request
	Assets          *assets.Resolver  // serves /assets
	Ledger          AuditLedger       // nil when Redis is not configured
	AuditTrigger    chan struct{}     // nil => /audit not mounted
	CatalogTimeout  time.Duration     // 0 => request lifetime only
	CatalogMaxAge   time.Duration     // Cache-Control on /index
	DebugEnabled    bool              // mount /debug
	AllowedHosts    []string          // Host headers allowed to access the server
	AllowedCIDRS    []string          // IPs allowed to access operational endpoints
	TrustProxy      bool              // right-most X-Forwarded-For hop is the client
	AssetRateBurst  int               // 0 => no rate limit on /assets
	AssetRatePerMin int               // refill per IP per minute
}
