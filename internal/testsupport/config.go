package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shorts/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Reachability probing is disabled so tests never touch the network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.ArtifactDir = filepath.Join(base, "media")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Metrics.Textfile = filepath.Join(base, "state", "metrics.prom")
	cfgVal.Reachability.Enabled = false

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

// WithArtifactBaseURL sets the public URL prefix for locally stored artifacts.
func WithArtifactBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Artifacts.BaseURL = url
	}
}

// WithMaxConcurrentJobs caps the job runner.
func WithMaxConcurrentJobs(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.MaxConcurrentJobs = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the pipeline's external binaries
// are stubbed. Each stub exits 0 without output.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg", "ffprobe"}
		}
		scripts := make(map[string]string, len(names))
		for _, name := range names {
			scripts[name] = "exit 0"
		}
		installStubs(b, scripts)
	}
}

// WithScript installs a stub named name whose body is a /bin/sh script.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		installStubs(b, map[string]string{name: body})
	}
}

func installStubs(b *configBuilder, scripts map[string]string) {
	b.t.Helper()
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	for name, body := range scripts {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", name, err)
		}
	}

	current := os.Getenv("PATH")
	prefix := binDir + string(os.PathListSeparator)
	if len(current) >= len(prefix) && current[:len(prefix)] == prefix {
		return
	}
	b.t.Setenv("PATH", prefix+current)
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// BinDir returns the directory holding stub binaries for cfg.
func BinDir(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "bin")
}
