package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shorts/internal/ipc"
	"shorts/internal/workflow"
)

type generateFlags struct {
	start    int
	duration int

	text  string
	font  string
	color string
	size  int
	x, y  float64

	cropX, cropY, cropWidth, cropHeight float64

	json bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate URL",
		Short: "Submit a short generation job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := buildGenerateRequest(cmd, args[0], flags)
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Generate(cmd.Context(), ipc.GenerateRequest{Request: req})
				if err != nil {
					return err
				}
				if flags.json {
					return writeJSON(cmd, resp.Job)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job %d accepted (%s)\n", resp.Job.ID, resp.Job.Status)
				fmt.Fprintf(out, "Track it with: shorts show %d\n", resp.Job.ID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.start, "start", 0, "Start offset in seconds")
	f.IntVarP(&flags.duration, "duration", "d", 0, "Clip length in seconds")
	f.StringVar(&flags.text, "text", "", "Overlay text")
	f.StringVar(&flags.font, "font", "", "Overlay font name")
	f.StringVar(&flags.color, "color", "", "Overlay text color (#RRGGBB)")
	f.IntVar(&flags.size, "size", 0, "Overlay font size")
	f.Float64Var(&flags.x, "x", 0, "Overlay horizontal position ratio (0-1)")
	f.Float64Var(&flags.y, "y", 0, "Overlay vertical position ratio (0-1)")
	f.Float64Var(&flags.cropX, "crop-x", 0, "Crop left edge in source pixels")
	f.Float64Var(&flags.cropY, "crop-y", 0, "Crop top edge in source pixels")
	f.Float64Var(&flags.cropWidth, "crop-width", 0, "Crop width in source pixels")
	f.Float64Var(&flags.cropHeight, "crop-height", 0, "Crop height in source pixels")
	f.BoolVar(&flags.json, "json", false, "Print the created job as JSON")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

// buildGenerateRequest copies only flags the user set so omitted options
// keep their server-side defaults.
func buildGenerateRequest(cmd *cobra.Command, url string, flags generateFlags) workflow.Request {
	changed := cmd.Flags().Changed
	req := workflow.Request{
		URL:       url,
		StartTime: flags.start,
		Duration:  flags.duration,
	}
	req.Overlay.Text = flags.text
	req.Overlay.Font = flags.font
	req.Overlay.Color = flags.color
	if changed("size") {
		req.Overlay.FontSize = &flags.size
	}
	if changed("x") {
		req.Overlay.PositionX = &flags.x
	}
	if changed("y") {
		req.Overlay.PositionY = &flags.y
	}
	if changed("crop-x") {
		req.CropX = &flags.cropX
	}
	if changed("crop-y") {
		req.CropY = &flags.cropY
	}
	if changed("crop-width") {
		req.CropWidth = &flags.cropWidth
	}
	if changed("crop-height") {
		req.CropHeight = &flags.cropHeight
	}
	return req
}
