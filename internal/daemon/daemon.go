package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"shorts/internal/config"
	"shorts/internal/deps"
	"shorts/internal/logging"
	"shorts/internal/preflight"
	"shorts/internal/preview"
	"shorts/internal/queue"
	"shorts/internal/scratch"
	"shorts/internal/services"
	"shorts/internal/workflow"
)

// Runner is the workflow surface the daemon fronts.
type Runner interface {
	Submit(ctx context.Context, req workflow.Request) (*queue.Job, error)
	Preview(ctx context.Context, req workflow.PreviewRequest) (preview.Frame, error)
	Wait(ctx context.Context) error
	Backend() string
}

// Daemon coordinates the job runner and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *queue.Store
	runner Runner

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	stopOnce sync.Once
	stopped  chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool
	PID             int
	DatabasePath    string
	LockPath        string
	SocketPath      string
	ArtifactBackend string
	Counts          queue.Counts
	Dependencies    []deps.Status
	Checks          []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, runner Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || runner == nil {
		return nil, errors.New("daemon requires config, store, and runner")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		stopped:  make(chan struct{}),
	}, nil
}

// Start acquires the daemon lock and fails jobs left processing by a
// previous run.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another shorts daemon instance is already running")
	}

	recovered, err := d.store.FailOrphans(ctx, queue.InterruptedMessage)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("recover interrupted jobs: %w", err)
	}
	if recovered > 0 {
		logging.WarnWithContext(d.logger, "interrupted jobs marked failed", "orphans_recovered",
			logging.Int64("count", recovered),
			logging.String(logging.FieldImpact, "jobs from the previous run must be resubmitted"),
			logging.String(logging.FieldErrorHint, "avoid killing the daemon while jobs are processing"),
		)
	}

	if swept := scratch.Sweep(ctx, d.cfg.Paths.ScratchDir, 0, d.logger); len(swept.Removed) > 0 {
		d.logger.Info("reclaimed scratch space",
			logging.Int("directories", len(swept.Removed)),
			logging.String(logging.FieldEventType, "scratch_reclaimed"),
		)
	}

	d.running.Store(true)
	d.logger.Info("shorts daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath),
		logging.String("artifact_backend", d.runner.Backend()),
	)
	return nil
}

// Stop asks the daemon to exit. Safe to call repeatedly.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() { close(d.stopped) })
}

// Done is closed once Stop has been called.
func (d *Daemon) Done() <-chan struct{} {
	return d.stopped
}

// Shutdown waits up to the configured timeout for in-flight jobs and
// releases the lock. Jobs still running afterwards are failed as orphans on
// the next start.
func (d *Daemon) Shutdown(ctx context.Context) error {
	if !d.running.Load() {
		return nil
	}
	d.Stop()

	waitCtx := ctx
	if timeout := d.cfg.ShutdownTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	waitErr := d.runner.Wait(waitCtx)
	if waitErr != nil {
		logging.WarnWithContext(d.logger, "shutdown timed out with jobs in flight", "daemon_shutdown_timeout",
			logging.Error(waitErr),
			logging.String(logging.FieldImpact, "unfinished jobs will be marked interrupted on next start"),
			logging.String(logging.FieldErrorHint, "raise workflow.shutdown_timeout"),
		)
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_unlock_failed"),
			logging.String(logging.FieldImpact, "next start may report another instance"),
			logging.String(logging.FieldErrorHint, "remove the lock file manually"),
		)
	}
	d.running.Store(false)
	d.logger.Info("shorts daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
	return waitErr
}

// Generate accepts a short generation request.
func (d *Daemon) Generate(ctx context.Context, req workflow.Request) (*queue.Job, error) {
	if !d.running.Load() {
		return nil, errors.New("daemon is not running")
	}
	return d.runner.Submit(ctx, req)
}

// Preview returns a still frame for req.
func (d *Daemon) Preview(ctx context.Context, req workflow.PreviewRequest) (preview.Frame, error) {
	return d.runner.Preview(ctx, req)
}

// Job returns one job or an ErrNotFound error.
func (d *Daemon) Job(ctx context.Context, id int64) (*queue.Job, error) {
	job, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Fail(services.ErrNotFound, "", fmt.Sprintf("Job %d not found.", id), nil)
	}
	return job, nil
}

// List returns jobs filtered by optional statuses, newest first.
func (d *Daemon) List(ctx context.Context, statuses []queue.Status) ([]*queue.Job, error) {
	return d.store.List(ctx, statuses...)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		DatabasePath:    d.store.Path(),
		LockPath:        d.lockPath,
		SocketPath:      d.cfg.SocketPath(),
		ArtifactBackend: d.runner.Backend(),
		Dependencies:    preflight.CheckSystemDeps(d.cfg),
		Checks:          preflight.RunAll(ctx, d.cfg),
	}
	counts, err := d.store.Counts(ctx)
	if err != nil {
		d.logger.Warn("job counts unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "status_counts_failed"),
			logging.String(logging.FieldImpact, "status shows zero counts"),
			logging.String(logging.FieldErrorHint, "check job database access"),
		)
	}
	status.Counts = counts
	return status
}
