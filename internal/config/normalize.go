package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetcher()
	c.normalizeTranscoder()
	c.normalizeOverlay()
	c.normalizeReachability()
	if err := c.normalizeArtifacts(); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = filepath.Join(c.Paths.StateDir, "scratch")
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ArtifactDir) == "" {
		c.Paths.ArtifactDir = filepath.Join(c.Paths.StateDir, "media")
	}
	if c.Paths.ArtifactDir, err = expandPath(c.Paths.ArtifactDir); err != nil {
		return fmt.Errorf("paths.artifact_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetcher() {
	c.Fetcher.Binary = strings.TrimSpace(c.Fetcher.Binary)
	if c.Fetcher.Binary == "" {
		c.Fetcher.Binary = defaultFetcherBinary
	}
	c.Fetcher.Format = strings.TrimSpace(c.Fetcher.Format)
	if c.Fetcher.Format == "" {
		c.Fetcher.Format = defaultFetcherFormat
	}
	c.Fetcher.OutputTemplate = strings.TrimSpace(c.Fetcher.OutputTemplate)
	if c.Fetcher.OutputTemplate == "" {
		c.Fetcher.OutputTemplate = defaultOutputTemplate
	}
	if c.Fetcher.Retries < 0 {
		c.Fetcher.Retries = 0
	}
}

func (c *Config) normalizeTranscoder() {
	t := &c.Transcoder
	t.FFmpegBinary = strings.TrimSpace(t.FFmpegBinary)
	if t.FFmpegBinary == "" {
		t.FFmpegBinary = defaultFFmpegBinary
	}
	t.FFprobeBinary = strings.TrimSpace(t.FFprobeBinary)
	if t.FFprobeBinary == "" {
		t.FFprobeBinary = defaultFFprobeBinary
	}
	t.VideoCodec = strings.TrimSpace(t.VideoCodec)
	if t.VideoCodec == "" {
		t.VideoCodec = defaultVideoCodec
	}
	t.Preset = strings.TrimSpace(t.Preset)
	if t.Preset == "" {
		t.Preset = defaultPreset
	}
	t.AudioCodec = strings.TrimSpace(t.AudioCodec)
	if t.AudioCodec == "" {
		t.AudioCodec = defaultAudioCodec
	}
}

func (c *Config) normalizeOverlay() {
	c.Overlay.DefaultFontPath = strings.TrimSpace(c.Overlay.DefaultFontPath)
	if c.Overlay.DefaultFontPath == "" {
		c.Overlay.DefaultFontPath = defaultFontPath
	}
	fonts := DefaultFonts()
	for name, path := range c.Overlay.Fonts {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			fonts[strings.TrimSpace(name)] = trimmed
		}
	}
	c.Overlay.Fonts = fonts
}

func (c *Config) normalizeReachability() {
	c.Reachability.Host = strings.TrimSpace(c.Reachability.Host)
	if c.Reachability.Host == "" {
		c.Reachability.Host = defaultReachabilityHost
	}
	if c.Reachability.Port == 0 {
		c.Reachability.Port = defaultReachabilityPort
	}
	if c.Reachability.TimeoutSeconds == 0 {
		c.Reachability.TimeoutSeconds = defaultReachabilityTimeout
	}
}

func (c *Config) normalizeArtifacts() error {
	a := &c.Artifacts
	a.Backend = strings.ToLower(strings.TrimSpace(a.Backend))
	if a.Backend == "" {
		a.Backend = ArtifactBackendLocal
	}
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")

	a.S3.Bucket = strings.TrimSpace(a.S3.Bucket)
	a.S3.Region = strings.TrimSpace(a.S3.Region)
	if a.S3.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			a.S3.Region = strings.TrimSpace(value)
		}
	}
	a.S3.Prefix = strings.Trim(strings.TrimSpace(a.S3.Prefix), "/")
	a.S3.Endpoint = strings.TrimSpace(a.S3.Endpoint)
	a.S3.AccessKeyID = strings.TrimSpace(a.S3.AccessKeyID)
	if a.S3.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			a.S3.AccessKeyID = strings.TrimSpace(value)
		}
	}
	a.S3.SecretAccessKey = strings.TrimSpace(a.S3.SecretAccessKey)
	if a.S3.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			a.S3.SecretAccessKey = strings.TrimSpace(value)
		}
	}

	a.GCS.Bucket = strings.TrimSpace(a.GCS.Bucket)
	a.GCS.Prefix = strings.Trim(strings.TrimSpace(a.GCS.Prefix), "/")
	a.GCS.CredentialsFile = strings.TrimSpace(a.GCS.CredentialsFile)
	if a.GCS.CredentialsFile == "" {
		if value, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
			a.GCS.CredentialsFile = strings.TrimSpace(value)
		}
	}
	if a.GCS.CredentialsFile != "" {
		var err error
		if a.GCS.CredentialsFile, err = expandPath(a.GCS.CredentialsFile); err != nil {
			return fmt.Errorf("artifacts.gcs.credentials_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	if strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = filepath.Join(c.Paths.StateDir, "metrics.prom")
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
