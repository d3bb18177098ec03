package testsupport

import (
	"path/filepath"
	"testing"

	"ocrsub/internal/config"
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
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithMinSentenceMS overrides the minimum cue duration.
func WithMinSentenceMS(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Segmentation.MinSentenceTimeMS = ms
	}
}

// WithHistory toggles the run history database.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithStride overrides the recognizer sampling stride.
func WithStride(stride int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sampling.Stride = stride
	}
}

// WithRulesFile writes a YAML correction table under the temp directory and
// points the config at it.
func WithRulesFile(body string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.baseDir, "rules.yaml")
		WriteText(b.t, target, body)
		b.cfg.Normalize.RulesFile = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
