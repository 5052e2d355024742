package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"shorts/internal/artifact"
	"shorts/internal/crop"
	"shorts/internal/fetcher"
	"shorts/internal/logging"
	"shorts/internal/metrics"
	"shorts/internal/overlay"
	"shorts/internal/preflight"
	"shorts/internal/preview"
	"shorts/internal/queue"
	"shorts/internal/services"
	"shorts/internal/transcode"
)

// JobStore persists jobs and their single terminal transition.
type JobStore interface {
	Create(ctx context.Context, in queue.NewJob) (*queue.Job, error)
	Complete(ctx context.Context, id int64, file, fileURL string) error
	Fail(ctx context.Context, id int64, message string) error
}

// SourceResolver downloads and locates a source video.
type SourceResolver interface {
	Resolve(ctx context.Context, url, scratchDir string) (fetcher.Source, error)
}

// DimensionProber reports a source video's frame size.
type DimensionProber interface {
	Dimensions(ctx context.Context, meta fetcher.Metadata, path string) (int, int, error)
}

// Transcoder encodes the short.
type Transcoder interface {
	Transcode(ctx context.Context, req transcode.Request) (string, error)
}

// Previewer produces preview frames.
type Previewer interface {
	Generate(ctx context.Context, url string, start int) (preview.Frame, error)
}

// Dependencies are the collaborators a Runner drives.
type Dependencies struct {
	Store        JobStore
	Resolver     SourceResolver
	Prober       DimensionProber
	Transcoder   Transcoder
	Artifacts    artifact.Store
	Fonts        *overlay.FontResolver
	Reachability *preflight.Reachability
	Previewer    Previewer
	Metrics      *metrics.Recorder
	Logger       *slog.Logger
}

// Options size the runner.
type Options struct {
	ScratchRoot  string
	TargetWidth  int
	TargetHeight int
	// MaxConcurrentJobs caps running pipelines. Zero means unlimited.
	MaxConcurrentJobs int
}

// Runner accepts jobs and runs them in background goroutines.
type Runner struct {
	deps   Dependencies
	opts   Options
	logger *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewRunner constructs a Runner.
func NewRunner(deps Dependencies, opts Options) *Runner {
	r := &Runner{
		deps:   deps,
		opts:   opts,
		logger: logging.NewComponentLogger(deps.Logger, "runner"),
	}
	if opts.MaxConcurrentJobs > 0 {
		r.sem = make(chan struct{}, opts.MaxConcurrentJobs)
	}
	return r
}

// Submit validates req, checks reachability, records a processing job and
// dispatches its pipeline. The returned job is the freshly created record.
func (r *Runner) Submit(ctx context.Context, req Request) (*queue.Job, error) {
	cropReq, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}
	if err := r.deps.Reachability.Check(ctx); err != nil {
		logging.WarnWithContext(r.logger, "source platform unreachable; request rejected", "reachability_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "no job created"),
		)
		return nil, err
	}

	requestID := requestIDFor(ctx, req.RequestID)
	opts := overlay.Normalize(req.Overlay)
	job, err := r.deps.Store.Create(ctx, queue.NewJob{
		SourceURL: req.URL,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Options:   queue.Options{Overlay: opts, Crop: cropReq},
		RequestID: requestID,
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	r.deps.Metrics.JobAccepted()

	r.logger.Info("job accepted",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldCorrelationID, requestID),
		logging.String("url", job.SourceURL),
		logging.Int("start_time", job.StartTime),
		logging.Int("duration", job.Duration),
	)

	snapshot := *job
	r.wg.Add(1)
	go r.run(snapshot, opts, cropReq)
	return job, nil
}

// Preview validates req, checks reachability and returns a preview frame.
func (r *Runner) Preview(ctx context.Context, req PreviewRequest) (preview.Frame, error) {
	if err := ValidatePreviewRequest(req); err != nil {
		return preview.Frame{}, err
	}
	if err := r.deps.Reachability.Check(ctx); err != nil {
		return preview.Frame{}, err
	}
	if r.deps.Previewer == nil {
		return preview.Frame{}, services.Fail(services.ErrConfiguration, "preview", "Preview generation is not configured.", nil)
	}
	ctx = services.WithRequestID(ctx, requestIDFor(ctx, req.RequestID))
	return r.deps.Previewer.Generate(ctx, req.URL, req.StartTime)
}

// Wait blocks until every dispatched job has finished or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes one job on a context detached from the submitting request.
func (r *Runner) run(job queue.Job, opts overlay.Options, cropReq *crop.Request) {
	defer r.wg.Done()

	ctx := services.WithJobID(context.Background(), job.ID)
	ctx = services.WithRequestID(ctx, job.RequestID)
	logger := logging.WithContext(ctx, r.logger)

	if r.sem != nil {
		r.sem <- struct{}{}
		defer func() { <-r.sem }()
	}

	result, err := r.executeSafely(ctx, job, opts, cropReq)
	r.finalize(ctx, logger, job, result, err)
}

func (r *Runner) executeSafely(ctx context.Context, job queue.Job, opts overlay.Options, cropReq *crop.Request) (result artifact.Artifact, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logging.ErrorWithContext(r.logger, "pipeline panic recovered", "job_panic",
				logging.Int64(logging.FieldJobID, job.ID),
				logging.String("panic", fmt.Sprint(recovered)),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report this as a bug with the log excerpt"),
			)
			result = artifact.Artifact{}
			err = services.Fail(services.ErrInternal, "runner", services.DefaultFailureMessage,
				fmt.Errorf("panic: %v", recovered))
		}
	}()
	return r.execute(ctx, job, opts, cropReq)
}

// finalize performs the job's terminal write. A completion that cannot be
// recorded is downgraded to a failure unless the job already left processing.
func (r *Runner) finalize(ctx context.Context, logger *slog.Logger, job queue.Job, result artifact.Artifact, runErr error) {
	defer r.flushMetrics(logger)

	if runErr == nil {
		err := r.deps.Store.Complete(ctx, job.ID, result.Name, result.URL)
		switch {
		case err == nil:
			logger.Info("job completed",
				logging.String(logging.FieldEventType, "job_completed"),
				logging.String("file", result.Name),
				logging.String("file_url", result.URL),
			)
			r.deps.Metrics.JobFinished(string(queue.StatusCompleted))
			return
		case errors.Is(err, queue.ErrNotProcessing):
			logging.WarnWithContext(logger, "job already finished; completion dropped", "job_terminal_conflict",
				logging.Error(err),
				logging.String(logging.FieldImpact, "artifact stored but not linked to the job"),
			)
			r.deps.Metrics.JobFinished("dropped")
			return
		default:
			runErr = services.Fail(services.ErrArtifactStore, "store", "Failed to record the generated short.", err)
		}
	}

	message := services.UserMessage(runErr)
	logging.ErrorWithContext(logger, "job failed", "job_failed",
		logging.String("failed_stage", services.StageOf(runErr)),
		logging.String("error_message", message),
		logging.String(logging.FieldErrorHint, services.Hint(runErr)),
		logging.Error(runErr),
	)
	if err := r.deps.Store.Fail(ctx, job.ID, message); err != nil {
		logging.ErrorWithContext(logger, "failed to persist job failure", "job_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check job database access"),
		)
	}
	r.deps.Metrics.JobFinished(string(queue.StatusFailed))
}

func (r *Runner) flushMetrics(logger *slog.Logger) {
	if err := r.deps.Metrics.Flush(); err != nil {
		logging.WarnWithContext(logger, "metrics export failed", "metrics_flush_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check metrics.textfile permissions"),
			logging.String(logging.FieldImpact, "metrics textfile is stale"),
		)
	}
}

func requestIDFor(ctx context.Context, supplied string) string {
	if supplied != "" {
		return supplied
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		return id
	}
	return uuid.NewString()
}
