package testsupport

import (
	"path/filepath"
	"testing"

	"otakurganizer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Logging goes nowhere and the hash vectorizer is selected.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CatalogDir = filepath.Join(base, "catalog")
	cfgVal.Paths.LogDir = ""
	cfgVal.Paths.TargetRoot = filepath.Join(base, "library")
	cfgVal.Embedding.Provider = config.ProviderHash
	cfgVal.Embedding.Dimensions = 64
	cfgVal.Embedding.Concurrency = 4

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithTargetRoot overrides the organize target root.
func WithTargetRoot(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.TargetRoot = path
	}
}

// WithoutSubtitles disables subtitle association during scans.
func WithoutSubtitles() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.IncludeSubtitles = false
	}
}

// WithAI enables the suggestion provider against baseURL.
func WithAI(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AI.Enabled = true
		b.cfg.AI.APIKey = "test-key"
		b.cfg.AI.BaseURL = baseURL
		b.cfg.AI.RateLimitRequests = 1000
		b.cfg.AI.RateLimitWindowSeconds = 1
	}
}

// WithOnlineMetadata enables Jikan lookups against baseURL.
func WithOnlineMetadata(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metadata.OnlineEnabled = true
		b.cfg.Metadata.BaseURL = baseURL
		b.cfg.Metadata.RateLimitPerSecond = 1000
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CatalogDir)
}

// MediaDir returns a per-config directory for fixture media files.
func MediaDir(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "media")
}
