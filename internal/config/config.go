package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ScratchDir  string `toml:"scratch_dir"`
	ArtifactDir string `toml:"artifact_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// Fetcher contains configuration for the yt-dlp source fetcher.
type Fetcher struct {
	Binary         string `toml:"binary"`
	Format         string `toml:"format"`
	OutputTemplate string `toml:"output_template"`
	SocketTimeout  int    `toml:"socket_timeout"`
	Retries        int    `toml:"retries"`
}

// Transcoder contains ffmpeg/ffprobe settings and the output frame size.
type Transcoder struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	VideoCodec    string `toml:"video_codec"`
	Preset        string `toml:"preset"`
	CRF           int    `toml:"crf"`
	AudioCodec    string `toml:"audio_codec"`
	TargetWidth   int    `toml:"target_width"`
	TargetHeight  int    `toml:"target_height"`
}

// Overlay contains font file locations for the text overlay.
type Overlay struct {
	DefaultFontPath string            `toml:"default_font_path"`
	Fonts           map[string]string `toml:"fonts"`
}

// Preview contains settings for still-frame previews.
type Preview struct {
	// MaxWidth downsizes preview frames wider than this. Zero keeps the source size.
	MaxWidth    int `toml:"max_width"`
	JPEGQuality int `toml:"jpeg_quality"`
}

// Reachability controls the pre-flight connectivity probe run before a job is accepted.
type Reachability struct {
	Enabled        bool   `toml:"enabled"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// S3 contains configuration for the S3 artifact backend.
type S3 struct {
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Prefix          string `toml:"prefix"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// GCS contains configuration for the Google Cloud Storage artifact backend.
type GCS struct {
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	CredentialsFile string `toml:"credentials_file"`
}

// Artifacts selects where finished shorts are stored.
type Artifacts struct {
	Backend string `toml:"backend"` // local, s3, gcs
	BaseURL string `toml:"base_url"`
	S3      S3     `toml:"s3"`
	GCS     GCS    `toml:"gcs"`
}

// Workflow contains job runner limits.
type Workflow struct {
	MaxConcurrentJobs int `toml:"max_concurrent_jobs"`
	ShutdownTimeout   int `toml:"shutdown_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics controls the Prometheus textfile export.
type Metrics struct {
	Enabled  bool   `toml:"enabled"`
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for shorts.
//
// Configuration sections by subsystem:
//   - Paths: scratch, artifact, state, and log directories
//   - Fetcher: yt-dlp invocation
//   - Transcoder: ffmpeg/ffprobe invocation and target frame size
//   - Overlay: font files for drawtext
//   - Preview: still-frame preview sizing
//   - Reachability: source platform connectivity probe
//   - Artifacts: local, S3, or GCS storage of finished shorts
//   - Workflow: job concurrency and shutdown
//   - Logging: log format and level
//   - Metrics: Prometheus textfile export
type Config struct {
	Paths        Paths        `toml:"paths"`
	Fetcher      Fetcher      `toml:"fetcher"`
	Transcoder   Transcoder   `toml:"transcoder"`
	Overlay      Overlay      `toml:"overlay"`
	Preview      Preview      `toml:"preview"`
	Reachability Reachability `toml:"reachability"`
	Artifacts    Artifacts    `toml:"artifacts"`
	Workflow     Workflow     `toml:"workflow"`
	Logging      Logging      `toml:"logging"`
	Metrics      Metrics      `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shorts/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env files beside the config and in the working directory.
// Variables already present in the environment win.
func loadDotEnv(configDir string) error {
	candidates := []string{filepath.Join(configDir, ".env")}
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ".env")
		if local != candidates[0] {
			candidates = append(candidates, local)
		}
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return fmt.Errorf("load env file %s: %w", candidate, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shorts.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.ScratchDir, c.Paths.StateDir, c.Paths.LogDir}
	if c.Artifacts.Backend == ArtifactBackendLocal {
		dirs = append(dirs, c.Paths.ArtifactDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite job store location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "jobs.db")
}

// SocketPath returns the daemon's JSON-RPC unix socket.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "shorts.sock")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "shortsd.lock")
}

// PIDPath returns the daemon pid file.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "shortsd.pid")
}

// LogFilePath returns the daemon log file.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "shorts.log")
}

// ReachabilityAddress returns host:port for the connectivity probe.
func (c *Config) ReachabilityAddress() string {
	return fmt.Sprintf("%s:%d", c.Reachability.Host, c.Reachability.Port)
}

// ReachabilityTimeout returns the dial timeout for the connectivity probe.
func (c *Config) ReachabilityTimeout() time.Duration {
	return time.Duration(c.Reachability.TimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long the daemon waits for in-flight jobs.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Workflow.ShutdownTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
