package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"shorts/internal/artifact"
	"shorts/internal/config"
	"shorts/internal/fetcher"
	"shorts/internal/metrics"
	"shorts/internal/overlay"
	"shorts/internal/preflight"
	"shorts/internal/preview"
	"shorts/internal/probe"
	"shorts/internal/transcode"
)

// NewFromConfig builds a Runner backed by yt-dlp, ffprobe, ffmpeg and the
// configured artifact backend. The caller owns store and rec and must call
// Close on the returned runner.
func NewFromConfig(ctx context.Context, cfg *config.Config, store JobStore, rec *metrics.Recorder, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("workflow: config is required")
	}
	artifacts, err := artifact.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}

	resolver := fetcher.NewResolver(fetcher.NewClient(cfg.Fetcher), cfg.Fetcher.OutputTemplate, logger)
	prober := probe.New(cfg.Transcoder.FFprobeBinary, logger)
	transcoder := transcode.New(cfg.Transcoder, logger)

	generator := preview.NewGenerator(resolver, prober, transcoder, preview.Options{
		ScratchRoot: cfg.Paths.ScratchDir,
		MaxWidth:    cfg.Preview.MaxWidth,
		JPEGQuality: cfg.Preview.JPEGQuality,
	}, rec, logger)

	return NewRunner(Dependencies{
		Store:        store,
		Resolver:     resolver,
		Prober:       prober,
		Transcoder:   transcoder,
		Artifacts:    artifacts,
		Fonts:        overlay.NewFontResolver(cfg.Overlay.Fonts, cfg.Overlay.DefaultFontPath),
		Reachability: preflight.NewReachability(cfg),
		Previewer:    generator,
		Metrics:      rec,
		Logger:       logger,
	}, Options{
		ScratchRoot:       cfg.Paths.ScratchDir,
		TargetWidth:       cfg.Transcoder.TargetWidth,
		TargetHeight:      cfg.Transcoder.TargetHeight,
		MaxConcurrentJobs: cfg.Workflow.MaxConcurrentJobs,
	}), nil
}

// Close releases the artifact backend. Call it after Wait.
func (r *Runner) Close() error {
	if r.deps.Artifacts == nil {
		return nil
	}
	return r.deps.Artifacts.Close()
}

// Backend names the artifact backend in use.
func (r *Runner) Backend() string {
	if r.deps.Artifacts == nil {
		return ""
	}
	return r.deps.Artifacts.Backend()
}
