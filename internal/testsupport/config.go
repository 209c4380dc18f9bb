package testsupport

import (
	"path/filepath"
	"testing"

	"factflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Paths.APIToken = "test-token"
	cfgVal.Identity.CacheTTLSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIToken sets the bearer token accepted by the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithIdentityCacheTTL enables actor caching for the given number of seconds.
func WithIdentityCacheTTL(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Identity.CacheTTLSeconds = seconds
	}
}

// WithRateLimit overrides the per-client API rate limit. A zero rate disables it.
func WithRateLimit(perSecond float64, burst int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.RateLimitPerSecond = perSecond
		b.cfg.API.RateLimitBurst = burst
	}
}

// WithBusyRetry overrides the SQLite busy retry budget in milliseconds.
func WithBusyRetry(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.BusyRetryMaxElapsedMS = ms
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
