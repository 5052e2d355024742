package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shorts/internal/deps"
	"shorts/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check the external binaries the pipeline needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cfg)
			if asJSON {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					rows = append(rows, []string{status.Name, status.Command, availability(status, colorize), dependencyDetail(status)})
				}
				fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Status", "Detail"}, rows, nil))
			}
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependency missing: %s", len(missing), missing[0].Command)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print dependency status as JSON")
	return cmd
}

func availability(status deps.Status, colorize bool) string {
	kind, label := statusOK, "available"
	if !status.Available {
		kind, label = statusError, "missing"
		if status.Optional {
			kind, label = statusWarn, "missing (optional)"
		}
	}
	if !colorize {
		return label
	}
	return statusKindColor(kind) + label + ansiReset
}

func dependencyDetail(status deps.Status) string {
	if status.Available {
		return status.Path
	}
	return status.Detail
}
