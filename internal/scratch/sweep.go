package scratch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shorts/internal/logging"
)

// Prefixes of directories created under the scratch root.
const (
	JobPrefix     = "job-"
	PreviewPrefix = "preview-"
)

// Result lists what a sweep removed and what it could not.
type Result struct {
	Removed []string
	Errors  []Error
}

// Error pairs a directory with the error raised while removing it.
type Error struct {
	Path string
	Err  error
}

// Sweep removes job and preview directories under root whose modification
// time is older than minAge. A zero minAge removes every matching directory,
// which is only safe while no job can be running. Unknown entries are left
// alone.
func Sweep(ctx context.Context, root string, minAge time.Duration, logger *slog.Logger) Result {
	var result Result
	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, Error{Path: root, Err: err})
		}
		return result
	}

	cutoff := time.Now().Add(-minAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() || !owned(entry.Name()) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, Error{Path: path, Err: err})
			continue
		}
		if minAge > 0 && !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, Error{Path: path, Err: err})
			logger.Warn("failed to remove leftover scratch directory",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "scratch_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check paths.scratch_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed leftover scratch directory",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "scratch_cleanup"),
		)
	}
	return result
}

func owned(name string) bool {
	return strings.HasPrefix(name, JobPrefix) || strings.HasPrefix(name, PreviewPrefix)
}
