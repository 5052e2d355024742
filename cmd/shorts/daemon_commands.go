package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shorts/internal/daemonctl"
	"shorts/internal/ipc"
)

const daemonStartTimeout = 10 * time.Second

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStartCommand(ctx),
		newStopCommand(ctx),
		newStatusCommand(ctx),
	}
}

func newStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Launch the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			binary, err := daemonctl.ResolveDaemonBinary()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(cmd.Context(), ctx.socketPath(), binary, daemonctl.LaunchOptions{
				ConfigPath: ctx.configFlagValue(),
			}, daemonStartTimeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.AlreadyRunning {
				fmt.Fprintf(out, "Daemon already running (pid %d)\n", result.PID)
				return nil
			}
			fmt.Fprintf(out, "Daemon started (pid %d)\n", result.PID)
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon after in-flight jobs finish",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			grace := cfg.ShutdownTimeout() + 10*time.Second
			result, err := daemonctl.StopAndTerminate(cmd.Context(), cfg, grace)
			out := cmd.OutOrStdout()
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Daemon did not stop in time; killed pid %d\n", result.PID)
				return nil
			}
			fmt.Fprintln(out, "Daemon stopped")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := daemonctl.BuildStatusSnapshot(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			for _, line := range renderStatus(status, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}

func renderStatus(status *ipc.StatusResponse, colorize bool) []string {
	lines := renderSectionHeader("Daemon", colorize)
	if status.Running {
		lines = append(lines, renderStatusLine("Daemon", statusOK, "Running (pid "+strconv.Itoa(status.PID)+")", colorize))
	} else {
		lines = append(lines, renderStatusLine("Daemon", statusWarn, "Not running (run `shorts start`)", colorize))
	}
	lines = append(lines,
		renderStatusLine("Artifact backend", statusInfo, status.ArtifactBackend, colorize),
		renderStatusLine("Database", statusInfo, status.DatabasePath, colorize),
	)
	for _, check := range status.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	summary := daemonctl.BuildDependencySummary(status.Dependencies)
	lines = append(lines, renderStatusLine("Summary", severityKind(summary.Severity), summary.Detail, colorize))
	for _, dep := range status.Dependencies {
		kind, detail := statusOK, dep.Path
		if !dep.Available {
			kind, detail = statusError, dep.Detail
			if dep.Optional {
				kind = statusWarn
			}
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}

	counts := status.Counts
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Jobs", colorize)...)
	lines = append(lines,
		renderStatusLine("Total", statusInfo, strconv.Itoa(counts.Total), colorize),
		renderStatusLine("Processing", statusInfo, strconv.Itoa(counts.Processing+counts.Pending), colorize),
		renderStatusLine("Completed", statusOK, strconv.Itoa(counts.Completed), colorize),
	)
	failedKind := statusOK
	if counts.Failed > 0 {
		failedKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Failed", failedKind, strconv.Itoa(counts.Failed), colorize))
	return lines
}
