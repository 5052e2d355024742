package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"shorts/internal/config"
	"shorts/internal/logging"
	"shorts/internal/services"
)

const stageStore = "store"

// Artifact references a stored short.
type Artifact struct {
	Name string `json:"file"`
	URL  string `json:"file_url"`
}

// Store saves a local file under name and reports where it ended up.
type Store interface {
	Save(ctx context.Context, name, localPath string) (Artifact, error)
	Backend() string
	Close() error
}

// New returns the backend selected by cfg.Artifacts.Backend.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	logger = logging.NewComponentLogger(logger, "artifact")
	switch cfg.Artifacts.Backend {
	case "", config.ArtifactBackendLocal:
		return NewLocal(cfg.Paths.ArtifactDir, cfg.Artifacts.BaseURL, logger), nil
	case config.ArtifactBackendS3:
		return NewS3(cfg.Artifacts.S3, cfg.Artifacts.BaseURL, logger), nil
	case config.ArtifactBackendGCS:
		return NewGCS(ctx, cfg.Artifacts.GCS, cfg.Artifacts.BaseURL, logger)
	default:
		return nil, services.Wrap(services.ErrConfiguration, stageStore, "select backend",
			fmt.Sprintf("unknown artifact backend %q", cfg.Artifacts.Backend), nil)
	}
}

func storeFailure(backend string, err error) error {
	return services.Fail(services.ErrArtifactStore, stageStore,
		"Failed to store the generated short.", fmt.Errorf("%s: %w", backend, err))
}

func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// joinURL appends key to base with exactly one separating slash.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
