package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFetcher(); err != nil {
		return err
	}
	if err := c.validateTranscoder(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	if err := c.validateReachability(); err != nil {
		return err
	}
	if err := c.validateArtifacts(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFetcher() error {
	if c.Fetcher.SocketTimeout <= 0 {
		return errors.New("fetcher.socket_timeout must be positive (seconds)")
	}
	if !strings.Contains(c.Fetcher.OutputTemplate, "%(") {
		return errors.New("fetcher.output_template must reference at least one metadata field, e.g. %(id)s")
	}
	return nil
}

func (c *Config) validateTranscoder() error {
	if err := ensurePositiveMap(map[string]int{
		"transcoder.target_width":  c.Transcoder.TargetWidth,
		"transcoder.target_height": c.Transcoder.TargetHeight,
	}); err != nil {
		return err
	}
	if c.Transcoder.TargetWidth%2 != 0 || c.Transcoder.TargetHeight%2 != 0 {
		return errors.New("transcoder.target_width and transcoder.target_height must be even")
	}
	if c.Transcoder.CRF < 0 || c.Transcoder.CRF > 51 {
		return errors.New("transcoder.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validatePreview() error {
	if c.Preview.MaxWidth < 0 {
		return errors.New("preview.max_width must be >= 0")
	}
	if c.Preview.JPEGQuality < 1 || c.Preview.JPEGQuality > 100 {
		return errors.New("preview.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateReachability() error {
	if !c.Reachability.Enabled {
		return nil
	}
	if c.Reachability.Port <= 0 || c.Reachability.Port > 65535 {
		return fmt.Errorf("reachability.port %d out of range", c.Reachability.Port)
	}
	if c.Reachability.TimeoutSeconds <= 0 {
		return errors.New("reachability.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	switch c.Artifacts.Backend {
	case ArtifactBackendLocal:
		if strings.TrimSpace(c.Paths.ArtifactDir) == "" {
			return errors.New("paths.artifact_dir must be set for the local artifact backend")
		}
	case ArtifactBackendS3:
		if c.Artifacts.S3.Bucket == "" {
			return errors.New("artifacts.s3.bucket must be set when artifacts.backend is s3")
		}
		if c.Artifacts.S3.Region == "" {
			return errors.New("artifacts.s3.region must be set when artifacts.backend is s3 (or set AWS_REGION)")
		}
		if (c.Artifacts.S3.AccessKeyID == "") != (c.Artifacts.S3.SecretAccessKey == "") {
			return errors.New("artifacts.s3.access_key_id and artifacts.s3.secret_access_key must be set together")
		}
	case ArtifactBackendGCS:
		if c.Artifacts.GCS.Bucket == "" {
			return errors.New("artifacts.gcs.bucket must be set when artifacts.backend is gcs")
		}
	default:
		return fmt.Errorf("artifacts.backend: unsupported value %q (want local, s3, or gcs)", c.Artifacts.Backend)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxConcurrentJobs < 0 {
		return errors.New("workflow.max_concurrent_jobs must be >= 0 (0 means unlimited)")
	}
	if c.Workflow.ShutdownTimeout <= 0 {
		return errors.New("workflow.shutdown_timeout must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
