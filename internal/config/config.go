package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreS3 = "s3"
	StoreFS = "fs"
)

type Config struct {
	ListenAddr      string        // ex: ":8787"
	ShutdownTimeout time.Duration // ex: 10s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	BasePath  string // fixed prefix of the HTTP surface (ex: "/api/library")
	Namespace string // first key segment under which library content lives

	// Object store
	Store          string // "s3" | "fs"
	S3Bucket       string
	S3Region       string
	S3Endpoint     string // optional, for R2/MinIO style endpoints
	S3Profile      string // optional shared config profile
	S3AccessKeyID  string // optional static credentials
	S3SecretKey    string // optional static credentials
	S3UsePathStyle bool
	FSRoot         string // root directory for the fs backend

	// Catalog
	FetchConcurrency int           // bounded fan-out for metadata fetches
	ListPageSize     int           // keys per listing call
	ListAllPages     bool          // follow continuation tokens
	CatalogTimeout   time.Duration // per-request assembly budget
	CatalogMaxAge    time.Duration // Cache-Control max-age on /index
	AssetMaxAge      time.Duration // Cache-Control max-age on /assets

	// Operations
	DebugEnabled    bool
	AuditInterval   time.Duration // 0 disables the periodic audit
	AssetRateBurst  int           // 0 disables the asset rate limit
	AssetRatePerMin int

	// Redis (optional skip ledger)
	RedisAddr           string        // empty => ledger disabled
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	LedgerTTL           time.Duration // expiry of the skip ledger

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict operational endpoints to specific IPs
	TrustProxy   bool     // true => right-most X-Forwarded-For hop is the client (only behind a proxy)
}

// fileValues holds the optional YAML layer. Real environment variables win.
var fileValues map[string]string

func Load() *Config {
	if path := os.Getenv("LIBRARY_CONFIG_FILE"); path != "" {
		values, err := loadFile(path)
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: %v", err))
		}
		fileValues = values
	}

	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("LIBRARY_LISTEN_ADDR", ":8787"),
		ShutdownTimeout: mustDuration("LIBRARY_SHUTDOWN_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("LIBRARY_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LIBRARY_PRETTY_LOG", false),

		BasePath:  normalizeBasePath(getenv("LIBRARY_BASE_PATH", "/api/library")),
		Namespace: strings.Trim(getenv("LIBRARY_NAMESPACE", "library"), "/"),

		// Object store
		Store:          strings.ToLower(getenv("LIBRARY_STORE", StoreS3)),
		S3Region:       getenv("LIBRARY_S3_REGION", "auto"),
		S3Endpoint:     getenv("LIBRARY_S3_ENDPOINT", ""),
		S3Profile:      getenv("LIBRARY_S3_PROFILE", ""),
		S3AccessKeyID:  getenv("LIBRARY_S3_ACCESS_KEY_ID", ""),
		S3SecretKey:    getenv("LIBRARY_S3_SECRET_ACCESS_KEY", ""),
		S3UsePathStyle: mustBool("LIBRARY_S3_PATH_STYLE", false),
		FSRoot:         getenv("LIBRARY_FS_ROOT", "./library-content"),

		// Catalog
		FetchConcurrency: getenvInt("LIBRARY_FETCH_CONCURRENCY", 16),
		ListPageSize:     getenvInt("LIBRARY_LIST_PAGE_SIZE", 1000),
		ListAllPages:     mustBool("LIBRARY_LIST_ALL_PAGES", true),
		CatalogTimeout:   mustDuration("LIBRARY_CATALOG_TIMEOUT", 20*time.Second),
		CatalogMaxAge:    mustDuration("LIBRARY_CATALOG_MAX_AGE", 5*time.Minute),
		AssetMaxAge:      mustDuration("LIBRARY_ASSET_MAX_AGE", 24*time.Hour),

		// Operations
		DebugEnabled:    mustBool("LIBRARY_DEBUG_ENABLED", true),
		AuditInterval:   mustDuration("LIBRARY_AUDIT_INTERVAL", 15*time.Minute),
		AssetRateBurst:  getenvInt("LIBRARY_ASSET_RATE_BURST", 0),
		AssetRatePerMin: getenvInt("LIBRARY_ASSET_RATE_PER_MIN", 120),

		// Redis settings
		RedisAddr:           getenv("LIBRARY_REDIS_ADDR", ""),
		RedisUser:           getenv("LIBRARY_REDIS_USERNAME", ""),
		RedisPassword:       getenv("LIBRARY_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LIBRARY_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		LedgerTTL:           mustDuration("LIBRARY_LEDGER_TTL", 24*time.Hour),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LIBRARY_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LIBRARY_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LIBRARY_TRUST_PROXY", false),
	}

	switch cfg.Store {
	case StoreS3:
		cfg.S3Bucket = requireEnv("LIBRARY_S3_BUCKET")
	case StoreFS:
	default:
		panic(fmt.Sprintf("❌ FATAL: LIBRARY_STORE must be %q or %q, got %q", StoreS3, StoreFS, cfg.Store))
	}

	if cfg.Namespace == "" {
		panic("❌ FATAL: LIBRARY_NAMESPACE must not be empty")
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}
	if cfg.ListPageSize < 1 || cfg.ListPageSize > 1000 {
		cfg.ListPageSize = 1000
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cfgCopy := *c
	if cfgCopy.RedisPassword != "" {
		cfgCopy.RedisPassword = "***REDACTED***"
	}
	if cfgCopy.S3SecretKey != "" {
		cfgCopy.S3SecretKey = "***REDACTED***"
	}
	if cfgCopy.S3AccessKeyID != "" {
		cfgCopy.S3AccessKeyID = "***REDACTED***"
	}
	return cfgCopy
}

// loadFile reads a flat KEY: value YAML document.
func loadFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var values map[string]string
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return values, nil
}

// helpers
func lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fileValues[key]
}

func getenv(key, def string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := lookup(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := lookup(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// normalizeBasePath returns "/a/b" for inputs like "a/b/", "/a/b" or "". Root is "".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
