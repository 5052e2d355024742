package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shorts/internal/fileutil"
	"shorts/internal/logging"
)

// Local copies artifacts into a directory.
type Local struct {
	Dir     string
	BaseURL string
	logger  *slog.Logger
}

// NewLocal returns a filesystem store rooted at dir.
func NewLocal(dir, baseURL string, logger *slog.Logger) *Local {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Local{Dir: dir, BaseURL: baseURL, logger: logger}
}

func (l *Local) Backend() string { return "local" }

func (l *Local) Close() error { return nil }

// Save copies localPath into the store directory. Readers of the directory
// never observe a partial file.
func (l *Local) Save(ctx context.Context, name, localPath string) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, storeFailure(l.Backend(), err)
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return Artifact{}, storeFailure(l.Backend(), fmt.Errorf("create artifact dir: %w", err))
	}
	target := filepath.Join(l.Dir, name)
	checksum, err := fileutil.CopyFileVerified(localPath, target)
	if err != nil {
		return Artifact{}, storeFailure(l.Backend(), err)
	}

	url := target
	if l.BaseURL != "" {
		url = joinURL(l.BaseURL, name)
	} else if abs, err := filepath.Abs(target); err == nil {
		url = abs
	}
	l.logger.Info("artifact stored",
		logging.String("backend", l.Backend()),
		logging.String("path", target),
		logging.String("sha256", checksum),
	)
	return Artifact{Name: name, URL: url}, nil
}
