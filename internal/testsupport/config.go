package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelkit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Binaries default to names that cannot resolve so a test never runs the
// host's ffmpeg by accident; use WithStubbedTools to provide fakes.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Tools.FFmpegBinary = filepath.Join(base, "missing", "ffmpeg")
	cfgVal.Tools.FFprobeBinary = filepath.Join(base, "missing", "ffprobe")
	cfgVal.Tools.TimeoutSeconds = 5

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

// WithCacheDisabled turns the capability cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithStubbedTools writes the given shell scripts as ffmpeg and ffprobe and
// points the config at them. An empty script keeps the default stub.
func WithStubbedTools(ffmpegScript, ffprobeScript string) ConfigOption {
	return func(b *configBuilder) {
		if ffmpegScript == "" {
			ffmpegScript = FFmpegStub
		}
		if ffprobeScript == "" {
			ffprobeScript = FFprobeStub
		}
		binDir := filepath.Join(b.baseDir, "bin")
		b.cfg.Tools.FFmpegBinary = WriteScript(b.t, filepath.Join(binDir, "ffmpeg"), ffmpegScript)
		b.cfg.Tools.FFprobeBinary = WriteScript(b.t, filepath.Join(binDir, "ffprobe"), ffprobeScript)
	}
}

// WriteScript writes an executable script to path and returns path.
func WriteScript(t testing.TB, path, script string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
