package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shorts/internal/ipc"
	"shorts/internal/workflow"
)

const jpegDataPrefix = "data:image/jpeg;base64,"

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var start int
	var outPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "preview URL",
		Short: "Fetch a still frame to plan a crop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Preview(cmd.Context(), ipc.PreviewRequest{
					Request: workflow.PreviewRequest{URL: args[0], StartTime: start},
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if strings.TrimSpace(outPath) == "" {
					fmt.Fprintf(out, "Source frame: %dx%d\n", resp.Width, resp.Height)
					fmt.Fprintln(out, "Use --out to save the image or --json for the data URI")
					return nil
				}
				if err := writeDataURI(outPath, resp.Image); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s (source frame %dx%d)\n", outPath, resp.Width, resp.Height)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "Frame time in seconds")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JPEG to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preview as JSON")
	return cmd
}

func writeDataURI(path, uri string) error {
	if !strings.HasPrefix(uri, jpegDataPrefix) {
		return fmt.Errorf("unexpected preview encoding")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, jpegDataPrefix))
	if err != nil {
		return fmt.Errorf("decode preview: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}
