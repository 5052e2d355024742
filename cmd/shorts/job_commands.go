package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shorts/internal/ipc"
	"shorts/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Job(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Job)
				}
				printJob(cmd.OutOrStdout(), resp.Job, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the job as JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List(cmd.Context(), statuses)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Jobs)
				}
				out := cmd.OutOrStdout()
				if len(resp.Jobs) == 0 {
					fmt.Fprintln(out, "No jobs")
					return nil
				}
				fmt.Fprintln(out, renderJobTable(resp.Jobs, shouldColorize(out)))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (pending, processing, completed, failed)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print jobs as JSON")
	return cmd
}

func renderJobTable(jobs []ipc.Job, colorize bool) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			colorizeStatus(job.Status, colorize),
			truncate(job.SourceURL, 48),
			formatWindow(job.StartTime, job.Duration),
			truncate(jobOutcome(job), 48),
			formatTime(job.CreatedAt),
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Source", "Window", "Result", "Created"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func printJob(out io.Writer, job ipc.Job, colorize bool) {
	fmt.Fprintf(out, "Job %d\n", job.ID)
	fmt.Fprintf(out, "  Status:   %s\n", colorizeStatus(job.Status, colorize))
	fmt.Fprintf(out, "  Source:   %s\n", job.SourceURL)
	fmt.Fprintf(out, "  Window:   %s\n", formatWindow(job.StartTime, job.Duration))
	if text := job.Options.Overlay.Text; text != "" {
		fmt.Fprintf(out, "  Overlay:  %q (%s, %s, %dpx)\n", text, job.Options.Overlay.Font, job.Options.Overlay.Color, job.Options.Overlay.FontSize)
	}
	if c := job.Options.Crop; c != nil {
		fmt.Fprintf(out, "  Crop:     %gx%g at %g,%g\n", c.Width, c.Height, c.X, c.Y)
	}
	switch job.Status {
	case queue.StatusCompleted:
		fmt.Fprintf(out, "  File:     %s\n", job.File)
		fmt.Fprintf(out, "  URL:      %s\n", job.FileURL)
	case queue.StatusFailed:
		fmt.Fprintf(out, "  Error:    %s\n", job.ErrorMessage)
	}
	fmt.Fprintf(out, "  Created:  %s\n", formatTime(job.CreatedAt))
	fmt.Fprintf(out, "  Updated:  %s\n", formatTime(job.UpdatedAt))
}

func jobOutcome(job ipc.Job) string {
	switch job.Status {
	case queue.StatusCompleted:
		return job.FileURL
	case queue.StatusFailed:
		return job.ErrorMessage
	default:
		return ""
	}
}

func formatWindow(start, duration int) string {
	return fmt.Sprintf("%ds +%ds", start, duration)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
