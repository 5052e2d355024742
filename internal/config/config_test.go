package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shorts/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantScratch := filepath.Join(tempHome, ".local", "share", "shorts", "scratch")
	if cfg.Paths.ScratchDir != wantScratch {
		t.Fatalf("unexpected scratch dir: got %q want %q", cfg.Paths.ScratchDir, wantScratch)
	}
	if cfg.DatabasePath() != filepath.Join(tempHome, ".local", "share", "shorts", "jobs.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Fetcher.Format != "mp4/bestaudio/best" {
		t.Fatalf("unexpected fetcher format: %q", cfg.Fetcher.Format)
	}
	if cfg.Fetcher.SocketTimeout != 10 || cfg.Fetcher.Retries != 2 {
		t.Fatalf("unexpected fetcher timeouts: %+v", cfg.Fetcher)
	}
	if cfg.Transcoder.TargetWidth != 1080 || cfg.Transcoder.TargetHeight != 1920 {
		t.Fatalf("unexpected target size: %dx%d", cfg.Transcoder.TargetWidth, cfg.Transcoder.TargetHeight)
	}
	if cfg.ReachabilityAddress() != "www.youtube.com:443" {
		t.Fatalf("unexpected reachability address: %q", cfg.ReachabilityAddress())
	}
	if cfg.Artifacts.Backend != config.ArtifactBackendLocal {
		t.Fatalf("expected local artifact backend, got %q", cfg.Artifacts.Backend)
	}
	if got := cfg.Overlay.Fonts["Pacifico"]; got != "/usr/share/fonts/truetype/freefont/FreeSerif.ttf" {
		t.Fatalf("unexpected Pacifico font path: %q", got)
	}
	if cfg.Metrics.Textfile != filepath.Join(tempHome, ".local", "share", "shorts", "metrics.prom") {
		t.Fatalf("unexpected metrics textfile: %q", cfg.Metrics.Textfile)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "shorts.toml")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Transcoder struct {
			Preset string `toml:"preset"`
			CRF    int    `toml:"crf"`
		} `toml:"transcoder"`
		Overlay struct {
			Fonts map[string]string `toml:"fonts"`
		} `toml:"overlay"`
		Workflow struct {
			MaxConcurrentJobs int `toml:"max_concurrent_jobs"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Transcoder.Preset = "fast"
	custom.Transcoder.CRF = 23
	custom.Overlay.Fonts = map[string]string{"Roboto": "/opt/fonts/Roboto.ttf"}
	custom.Workflow.MaxConcurrentJobs = 3
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Transcoder.Preset != "fast" || cfg.Transcoder.CRF != 23 {
		t.Fatalf("expected transcoder overrides, got %+v", cfg.Transcoder)
	}
	if cfg.SocketPath() != filepath.Join(tempDir, "state", "shorts.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.SocketPath())
	}
	if cfg.Overlay.Fonts["Roboto"] != "/opt/fonts/Roboto.ttf" {
		t.Fatalf("expected Roboto override, got %q", cfg.Overlay.Fonts["Roboto"])
	}
	if cfg.Overlay.Fonts["Arial"] == "" {
		t.Fatal("expected default fonts to survive a partial override")
	}
	if cfg.Workflow.MaxConcurrentJobs != 3 {
		t.Fatalf("expected max concurrent jobs 3, got %d", cfg.Workflow.MaxConcurrentJobs)
	}
}

func TestDotEnvSuppliesArtifactCredentials(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(t.TempDir())
	configPath := filepath.Join(tempDir, "shorts.toml")
	contents := "[artifacts]\nbackend = \"s3\"\n[artifacts.s3]\nbucket = \"clips\"\nregion = \"us-east-1\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	env := "AWS_ACCESS_KEY_ID=from-dotenv\nAWS_SECRET_ACCESS_KEY=secret-dotenv\n"
	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	os.Unsetenv("AWS_ACCESS_KEY_ID")
	os.Unsetenv("AWS_SECRET_ACCESS_KEY")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Artifacts.S3.AccessKeyID != "from-dotenv" {
		t.Fatalf("expected access key from .env, got %q", cfg.Artifacts.S3.AccessKeyID)
	}
	if cfg.Artifacts.S3.SecretAccessKey != "secret-dotenv" {
		t.Fatalf("expected secret from .env, got %q", cfg.Artifacts.S3.SecretAccessKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.StateDir, "shorts") {
		t.Fatalf("expected state dir to contain shorts, got %q", cfg.Paths.StateDir)
	}
	if cfg.Fetcher.OutputTemplate != "%(id)s.%(ext)s" {
		t.Fatalf("unexpected sample output template %q", cfg.Fetcher.OutputTemplate)
	}
	if len(cfg.Overlay.Fonts) != 5 {
		t.Fatalf("expected five sample fonts, got %d", len(cfg.Overlay.Fonts))
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"socket timeout", func(c *config.Config) { c.Fetcher.SocketTimeout = 0 }},
		{"template without fields", func(c *config.Config) { c.Fetcher.OutputTemplate = "video.mp4" }},
		{"odd target width", func(c *config.Config) { c.Transcoder.TargetWidth = 1081 }},
		{"zero target height", func(c *config.Config) { c.Transcoder.TargetHeight = 0 }},
		{"crf range", func(c *config.Config) { c.Transcoder.CRF = 60 }},
		{"jpeg quality", func(c *config.Config) { c.Preview.JPEGQuality = 0 }},
		{"reachability port", func(c *config.Config) { c.Reachability.Port = 70000 }},
		{"unknown backend", func(c *config.Config) { c.Artifacts.Backend = "ftp" }},
		{"s3 without bucket", func(c *config.Config) { c.Artifacts.Backend = config.ArtifactBackendS3 }},
		{"s3 half credentials", func(c *config.Config) {
			c.Artifacts.Backend = config.ArtifactBackendS3
			c.Artifacts.S3.Bucket = "b"
			c.Artifacts.S3.Region = "r"
			c.Artifacts.S3.AccessKeyID = "id"
		}},
		{"gcs without bucket", func(c *config.Config) { c.Artifacts.Backend = config.ArtifactBackendGCS }},
		{"negative concurrency", func(c *config.Config) { c.Workflow.MaxConcurrentJobs = -1 }},
		{"shutdown timeout", func(c *config.Config) { c.Workflow.ShutdownTimeout = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
