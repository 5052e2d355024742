package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"shorts/internal/config"
	"shorts/internal/filtergraph"
	"shorts/internal/logging"
	"shorts/internal/media/ffprobe"
	"shorts/internal/services"
)

const (
	stageTranscode = "transcode"
	stagePreview   = "preview"

	msgPreviewFailed = "Failed to capture preview frame from the source video."
)

// Transcoder invokes ffmpeg with the configured encoder settings.
type Transcoder struct {
	FFmpegBinary  string
	FFprobeBinary string
	VideoCodec    string
	Preset        string
	CRF           int
	AudioCodec    string

	logger *slog.Logger
}

// New builds a Transcoder from the [transcoder] configuration section.
func New(cfg config.Transcoder, logger *slog.Logger) *Transcoder {
	return &Transcoder{
		FFmpegBinary:  cfg.FFmpegBinary,
		FFprobeBinary: cfg.FFprobeBinary,
		VideoCodec:    cfg.VideoCodec,
		Preset:        cfg.Preset,
		CRF:           cfg.CRF,
		AudioCodec:    cfg.AudioCodec,
		logger:        logging.NewComponentLogger(logger, "transcoder"),
	}
}

// Request describes one trim-and-encode run.
type Request struct {
	Source    string
	Start     int
	Duration  int
	Graph     filtergraph.Graph
	OutputDir string
}

// OutputName returns a fresh artifact file name: 32 hex characters plus .mp4.
func OutputName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ".mp4"
}

// Args returns the ffmpeg argument list for req writing to output.
func (t *Transcoder) Args(req Request, output string) []string {
	return []string{
		"-y",
		"-ss", strconv.Itoa(req.Start),
		"-i", req.Source,
		"-t", strconv.Itoa(req.Duration),
		"-c:v", t.VideoCodec,
		"-preset", t.Preset,
		"-crf", strconv.Itoa(t.CRF),
		"-c:a", t.AudioCodec,
		"-vf", req.Graph.String(),
		"-movflags", "+faststart",
		output,
	}
}

// Transcode encodes req into a new file inside req.OutputDir and returns its path.
func (t *Transcoder) Transcode(ctx context.Context, req Request) (string, error) {
	output := filepath.Join(req.OutputDir, OutputName())
	stderr, err := t.run(ctx, t.Args(req, output))
	if err != nil {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Fail(services.ErrTranscodeFailed, stageTranscode, "ffmpeg failed: "+detail, err)
	}
	t.verifyOutput(ctx, output, req.Duration)
	return output, nil
}

// CaptureFrame writes a single JPEG frame taken at start seconds to output.
func (t *Transcoder) CaptureFrame(ctx context.Context, source string, start int, output string) error {
	args := []string{
		"-y",
		"-ss", strconv.Itoa(max(0, start)),
		"-i", source,
		"-frames:v", "1",
		"-q:v", "2",
		output,
	}
	stderr, err := t.run(ctx, args)
	if err != nil {
		return services.Fail(services.ErrPreviewFailed, stagePreview, msgPreviewFailed, errors.New(strings.TrimSpace(stderr+" "+err.Error())))
	}
	if info, statErr := os.Stat(output); statErr != nil || info.Size() == 0 {
		return services.Fail(services.ErrPreviewFailed, stagePreview, msgPreviewFailed, statErr)
	}
	return nil
}

func (t *Transcoder) run(ctx context.Context, args []string) (string, error) {
	binary := strings.TrimSpace(t.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	t.logger.Debug("running ffmpeg", logging.String("command", binary+" "+strings.Join(args, " ")))
	err := cmd.Run()
	return stderr.String(), err
}

// verifyOutput inspects the encoded file and logs when it looks wrong. The
// job still completes: ffmpeg exited cleanly and the result is kept.
func (t *Transcoder) verifyOutput(ctx context.Context, output string, duration int) {
	if strings.TrimSpace(t.FFprobeBinary) == "" {
		return
	}
	result, err := ffprobe.Inspect(ctx, t.FFprobeBinary, output)
	if err != nil {
		t.logger.Debug("output inspection skipped", logging.Error(err))
		return
	}
	if _, ok := result.VideoStream(); !ok {
		logging.WarnWithContext(t.logger, "encoded short has no video stream", "transcode_output_suspect",
			logging.String("path", output),
			logging.String(logging.FieldErrorHint, "inspect the source media and filter graph"),
		)
		return
	}
	if size, ok := result.SizeBytes(); ok && size == 0 {
		logging.WarnWithContext(t.logger, "encoded short is empty", "transcode_output_empty",
			logging.String("path", output),
			logging.String(logging.FieldErrorHint, "inspect the source media and filter graph"),
			logging.String(logging.FieldImpact, "stored short has no playable content"),
		)
		return
	}
	if got := result.DurationSeconds(); got > 0 && got+1 < float64(duration) {
		logging.WarnWithContext(t.logger, "encoded short is shorter than requested", "transcode_output_short",
			logging.String("path", output),
			logging.String("actual_seconds", fmt.Sprintf("%.2f", got)),
			logging.Int("requested_seconds", duration),
			logging.String(logging.FieldImpact, "short may end early"),
		)
	}
}
