package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetters(t *testing.T) {
	t.Setenv("LIBRARY_TEST_DURATION", "90s")
	t.Setenv("LIBRARY_TEST_DURATION_BAD", "soon")
	t.Setenv("LIBRARY_TEST_BOOL", "false")
	t.Setenv("LIBRARY_TEST_BOOL_BAD", "nope")
	t.Setenv("LIBRARY_TEST_INT", "12")
	t.Setenv("LIBRARY_TEST_INT_BAD", "twelve")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"duration set", mustDuration("LIBRARY_TEST_DURATION", time.Second), 90 * time.Second},
		{"duration invalid", mustDuration("LIBRARY_TEST_DURATION_BAD", time.Second), time.Second},
		{"duration missing", mustDuration("LIBRARY_TEST_DURATION_MISSING", 5*time.Minute), 5 * time.Minute},
		{"bool set", mustBool("LIBRARY_TEST_BOOL", true), false},
		{"bool invalid", mustBool("LIBRARY_TEST_BOOL_BAD", true), true},
		{"bool missing", mustBool("LIBRARY_TEST_BOOL_MISSING", false), false},
		{"int set", getenvInt("LIBRARY_TEST_INT", 1), 12},
		{"int invalid", getenvInt("LIBRARY_TEST_INT_BAD", 1), 1},
		{"string default", getenv("LIBRARY_TEST_STRING_MISSING", "library"), "library"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestRequireEnvPanics(t *testing.T) {
	t.Setenv("LIBRARY_TEST_REQUIRED", "bucket")
	if got := requireEnv("LIBRARY_TEST_REQUIRED"); got != "bucket" {
		t.Fatalf("requireEnv() = %q", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("requireEnv() should panic on a missing variable")
		}
	}()
	requireEnv("LIBRARY_TEST_REQUIRED_MISSING")
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{
			name:     "single value",
			value:    "value1",
			expected: []string{"value1"},
		},
		{
			name:     "multiple values",
			value:    "value1, value2, value3",
			expected: []string{"value1", "value2", "value3"},
		},
		{
			name:     "quoted values and blanks",
			value:    `"10.0.0.0/8", ,'127.0.0.1'`,
			expected: []string{"10.0.0.0/8", "127.0.0.1"},
		},
		{
			name:     "empty",
			value:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() length = %v, want %v", len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "/api/library", expected: "/api/library"},
		{in: "api/library/", expected: "/api/library"},
		{in: "/", expected: ""},
		{in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeBasePath(tt.in); got != tt.expected {
				t.Errorf("normalizeBasePath(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestFileLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	content := "LIBRARY_NAMESPACE: magazines\nLIBRARY_FETCH_CONCURRENCY: \"4\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	values, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}

	fileValues = values
	defer func() { fileValues = nil }()

	if got := getenv("LIBRARY_NAMESPACE", "library"); got != "magazines" {
		t.Errorf("getenv() from file = %q, want %q", got, "magazines")
	}

	t.Setenv("LIBRARY_NAMESPACE", "override")
	if got := getenv("LIBRARY_NAMESPACE", "library"); got != "override" {
		t.Errorf("environment should win over file, got %q", got)
	}

	if got := getenvInt("LIBRARY_FETCH_CONCURRENCY", 16); got != 4 {
		t.Errorf("getenvInt() from file = %d, want 4", got)
	}
}

func TestLoadFSStore(t *testing.T) {
	t.Setenv("LIBRARY_STORE", "fs")
	t.Setenv("LIBRARY_FS_ROOT", t.TempDir())
	t.Setenv("LIBRARY_BASE_PATH", "api/library/")
	t.Setenv("LIBRARY_LIST_PAGE_SIZE", "5000")
	t.Setenv("LIBRARY_FETCH_CONCURRENCY", "0")

	cfg := Load()

	if cfg.BasePath != "/api/library" {
		t.Errorf("BasePath = %q, want /api/library", cfg.BasePath)
	}
	if cfg.Namespace != "library" {
		t.Errorf("Namespace = %q, want library", cfg.Namespace)
	}
	if cfg.ListPageSize != 1000 {
		t.Errorf("ListPageSize = %d, want clamp to 1000", cfg.ListPageSize)
	}
	if cfg.FetchConcurrency != 1 {
		t.Errorf("FetchConcurrency = %d, want floor of 1", cfg.FetchConcurrency)
	}
	if cfg.CatalogMaxAge != 5*time.Minute || cfg.AssetMaxAge != 24*time.Hour {
		t.Errorf("unexpected cache ages: %v / %v", cfg.CatalogMaxAge, cfg.AssetMaxAge)
	}
}

func TestLoadS3RequiresBucket(t *testing.T) {
	t.Setenv("LIBRARY_STORE", "s3")
	t.Setenv("LIBRARY_S3_BUCKET", "")

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked without LIBRARY_S3_BUCKET")
		}
	}()
	Load()
}

func TestRedacted(t *testing.T) {
	cfg := &Config{RedisPassword: "secret", S3SecretKey: "key", S3AccessKeyID: "id"}
	red := cfg.Redacted()
	if red.RedisPassword == "secret" || red.S3SecretKey == "key" || red.S3AccessKeyID == "id" {
		t.Errorf("Redacted() leaked secrets: %+v", red)
	}
	if cfg.RedisPassword != "secret" {
		t.Errorf("Redacted() must not mutate the original")
	}
}
