package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shorts/internal/logging"
	"shorts/internal/services"
)

const (
	stageFetch = "fetch"

	msgSourceNotFound = "Downloaded source video was not found. Try again with a different URL."
	msgFetchMissing   = "yt-dlp is required but not installed. Add it to your environment."
)

// Downloader runs the external fetcher.
type Downloader interface {
	Download(ctx context.Context, url, scratchDir string) (Metadata, error)
}

// Source is a downloaded file together with the metadata that described it.
type Source struct {
	Path     string
	Metadata Metadata
}

// Strategy proposes candidate file paths from metadata. Paths may be
// relative to the scratch directory.
type Strategy func(Metadata) ([]string, error)

// Resolver downloads a URL and locates the resulting file.
type Resolver struct {
	downloader     Downloader
	outputTemplate string
	logger         *slog.Logger
}

// NewResolver builds a resolver. outputTemplate is the scratch-relative
// template the downloader writes with; it feeds the prepared filename
// strategy.
func NewResolver(downloader Downloader, outputTemplate string, logger *slog.Logger) *Resolver {
	return &Resolver{
		downloader:     downloader,
		outputTemplate: outputTemplate,
		logger:         logging.NewComponentLogger(logger, "fetcher"),
	}
}

// DefaultStrategies returns the prepared filename, requested downloads and
// top-level filename strategies, in priority order.
func DefaultStrategies(tmplPath string) []Strategy {
	return []Strategy{
		PreparedFilename(tmplPath),
		RequestedDownloads,
		TopLevelFilenames,
	}
}

// PreparedFilename renders the output template the way the fetcher would
// have named the file. A missing template field skips the strategy.
func PreparedFilename(tmplPath string) Strategy {
	return func(meta Metadata) ([]string, error) {
		if tmplPath == "" {
			return nil, nil
		}
		name, err := RenderTemplate(tmplPath, meta.Fields)
		if err != nil {
			if errors.Is(err, ErrTemplateField) {
				return nil, nil
			}
			return nil, err
		}
		return []string{name}, nil
	}
}

// RequestedDownloads yields each requested download path.
func RequestedDownloads(meta Metadata) ([]string, error) {
	paths := make([]string, 0, len(meta.RequestedDownloads))
	for _, download := range meta.RequestedDownloads {
		if p := download.Path(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// TopLevelFilenames yields _filename, filename and filepath.
func TopLevelFilenames(meta Metadata) ([]string, error) {
	var paths []string
	for _, p := range []string{meta.InternalFilename, meta.Filename, meta.Filepath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// Resolve downloads url into scratchDir and returns the file it produced.
func (r *Resolver) Resolve(ctx context.Context, url, scratchDir string) (Source, error) {
	meta, err := r.downloader.Download(ctx, url, scratchDir)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) && execErr.Unavailable {
			return Source{}, services.Fail(services.ErrFetchUnavailable, stageFetch, msgFetchMissing, err)
		}
		return Source{}, downloadFailure(err)
	}

	tmplPath := ""
	if r.outputTemplate != "" {
		tmplPath = filepath.Join(scratchDir, r.outputTemplate)
	}
	candidates, err := collectCandidates(meta, DefaultStrategies(tmplPath))
	if err != nil {
		return Source{}, downloadFailure(err)
	}
	if path, ok := firstExisting(candidates, scratchDir); ok {
		r.logger.Debug("source resolved from metadata", logging.String("path", path))
		return Source{Path: path, Metadata: meta}, nil
	}

	path, err := largestFile(scratchDir)
	if err != nil {
		return Source{}, downloadFailure(err)
	}
	if path == "" {
		return Source{}, services.Fail(services.ErrSourceNotFound, stageFetch, msgSourceNotFound, nil)
	}
	logging.WarnWithContext(r.logger, "source resolved by directory scan", "fetcher_fallback_scan",
		logging.String("path", path),
		logging.Int("candidates", len(candidates)),
		logging.String(logging.FieldErrorHint, "fetcher metadata did not name the downloaded file"),
		logging.String(logging.FieldImpact, "largest scratch file used as source"),
	)
	return Source{Path: path, Metadata: meta}, nil
}

func downloadFailure(err error) error {
	return services.Fail(services.ErrDownloadFailed, stageFetch, fmt.Sprintf("Failed to download source video: %v", err), err)
}

func collectCandidates(meta Metadata, strategies []Strategy) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, strategy := range strategies {
		paths, err := strategy(meta)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

func firstExisting(candidates []string, scratchDir string) (string, bool) {
	for _, candidate := range candidates {
		path := candidate
		if !filepath.IsAbs(path) {
			path = filepath.Join(scratchDir, path)
		}
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// largestFile returns the biggest finished regular file directly inside dir,
// or "" when there is none.
func largestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	type candidate struct {
		name string
		size int64
	}
	var files []candidate
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".info.json") {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: name, size: info.Size()})
	}
	if len(files) == 0 {
		return "", nil
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].size != files[j].size {
			return files[i].size > files[j].size
		}
		return files[i].name < files[j].name
	})
	return filepath.Join(dir, files[0].name), nil
}
