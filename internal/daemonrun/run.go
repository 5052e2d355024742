package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"shorts/internal/config"
	"shorts/internal/daemon"
	"shorts/internal/deps"
	"shorts/internal/ipc"
	"shorts/internal/logging"
	"shorts/internal/metrics"
	"shorts/internal/preflight"
	"shorts/internal/queue"
	"shorts/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the shorts daemon and blocks until a signal arrives or a
// client asks it to stop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.LogFilePath()},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	statuses := preflight.CheckSystemDeps(cfg)
	logDependencySnapshot(logger, statuses)
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		logging.WarnWithContext(logger, "required binaries missing", "dependency_missing",
			logging.Int("missing_count", len(missing)),
			logging.String("first_missing", missing[0].Command),
			logging.String(logging.FieldImpact, "jobs will fail until the binaries are installed"),
			logging.String(logging.FieldErrorHint, "run shorts deps"),
		)
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return err
	}
	defer store.Close()

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New(cfg.Metrics.Textfile)
	}

	runner, err := workflow.NewFromConfig(signalCtx, cfg, store, recorder, logger)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer runner.Close()

	d, err := daemon.New(cfg, store, runner, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		_ = d.Shutdown(context.Background())
		return fmt.Errorf("start IPC server: %w", err)
	}
	ipcServer.Serve()

	select {
	case <-signalCtx.Done():
	case <-d.Done():
	}
	logger.Info("shorts daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))

	ipcServer.Close()
	if err := d.Shutdown(context.Background()); err != nil {
		logger.Debug("shutdown finished with jobs in flight", logging.Error(err))
	}
	if err := recorder.Flush(); err != nil {
		logger.Warn("final metrics flush failed", logging.Error(err))
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, statuses []deps.Status) {
	attrs := []logging.Attr{logging.String(logging.FieldEventType, "dependency_snapshot")}
	for _, status := range statuses {
		attrs = append(attrs,
			logging.Bool(strings.ToLower(status.Name)+"_available", status.Available),
			logging.String(strings.ToLower(status.Name)+"_binary", status.Path),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
