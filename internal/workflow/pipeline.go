package workflow

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"shorts/internal/artifact"
	"shorts/internal/crop"
	"shorts/internal/fetcher"
	"shorts/internal/filtergraph"
	"shorts/internal/logging"
	"shorts/internal/overlay"
	"shorts/internal/queue"
	"shorts/internal/scratch"
	"shorts/internal/services"
	"shorts/internal/transcode"
)

const (
	stageFetch     = "fetch"
	stageProbe     = "probe"
	stageWindow    = "window"
	stageTranscode = "transcode"
	stageStore     = "store"

	msgWindowExceeds = "Requested start time and duration exceed the source video length."
)

// execute runs the pipeline for job inside a scratch directory that is
// removed on every exit path.
func (r *Runner) execute(ctx context.Context, job queue.Job, opts overlay.Options, cropReq *crop.Request) (artifact.Artifact, error) {
	logger := logging.WithContext(ctx, r.logger)

	if err := os.MkdirAll(r.opts.ScratchRoot, 0o755); err != nil {
		return artifact.Artifact{}, fmt.Errorf("create scratch root: %w", err)
	}
	workDir, err := os.MkdirTemp(r.opts.ScratchRoot, fmt.Sprintf("%s%d-", scratch.JobPrefix, job.ID))
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logging.WarnWithContext(logger, "scratch cleanup failed", "scratch_cleanup_failed",
				logging.String("path", workDir),
				logging.Error(rmErr),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
	}()

	source, err := timed(r, ctx, stageFetch, func(ctx context.Context) (sourceResult, error) {
		src, err := r.deps.Resolver.Resolve(ctx, job.SourceURL, workDir)
		return sourceResult{src.Path, src.Metadata}, err
	})
	if err != nil {
		return artifact.Artifact{}, err
	}

	dims, err := timed(r, ctx, stageProbe, func(ctx context.Context) ([2]int, error) {
		w, h, err := r.deps.Prober.Dimensions(ctx, source.meta, source.path)
		return [2]int{w, h}, err
	})
	if err != nil {
		return artifact.Artifact{}, err
	}
	width, height := dims[0], dims[1]

	if source.meta.DurationKnown {
		if job.StartTime+job.Duration > int(math.Floor(source.meta.Duration)) {
			return artifact.Artifact{}, services.Fail(services.ErrWindowExceedsSource, stageWindow, msgWindowExceeds,
				fmt.Errorf("window %d+%d exceeds source %.2fs", job.StartTime, job.Duration, source.meta.Duration))
		}
	} else {
		logger.Debug("source duration unknown; window check skipped")
	}

	var rect *crop.Rect
	if cropReq != nil {
		if normalized, ok := crop.Normalize(*cropReq, width, height); ok {
			rect = &normalized
		} else {
			logger.Info("crop selection too small after clamping; using default framing",
				logging.Int("source_width", width),
				logging.Int("source_height", height),
			)
		}
	}

	graph := filtergraph.Build(filtergraph.Params{
		Crop:         rect,
		Overlay:      opts,
		FontPath:     r.deps.Fonts.Resolve(opts.Font),
		TargetWidth:  r.opts.TargetWidth,
		TargetHeight: r.opts.TargetHeight,
	})
	logger.Debug("filter graph built", logging.String("vf", graph.String()))

	output, err := timed(r, ctx, stageTranscode, func(ctx context.Context) (string, error) {
		return r.deps.Transcoder.Transcode(ctx, transcode.Request{
			Source:    source.path,
			Start:     job.StartTime,
			Duration:  job.Duration,
			Graph:     graph,
			OutputDir: workDir,
		})
	})
	if err != nil {
		return artifact.Artifact{}, err
	}

	return timed(r, ctx, stageStore, func(ctx context.Context) (artifact.Artifact, error) {
		return r.deps.Artifacts.Save(ctx, filepath.Base(output), output)
	})
}

type sourceResult struct {
	path string
	meta fetcher.Metadata
}

// timed runs fn tagged with stage and records its duration.
func timed[T any](r *Runner, ctx context.Context, stage string, fn func(context.Context) (T, error)) (T, error) {
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()
	logger.Debug("stage started")
	value, err := fn(ctx)
	elapsed := time.Since(start)
	r.deps.Metrics.ObserveStage(stage, elapsed)
	if err == nil {
		logger.Debug("stage finished", logging.Duration("elapsed", elapsed))
	}
	return value, err
}
