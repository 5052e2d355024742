package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"shorts/internal/fetcher"
	"shorts/internal/logging"
	"shorts/internal/metrics"
	"shorts/internal/scratch"
	"shorts/internal/services"
)

const (
	stagePreview = "preview"
	frameName    = "preview.jpg"

	msgPreviewFailed = "Failed to capture preview frame from the source video."
)

// Frame is an inline JPEG plus the source video's dimensions. Width and
// Height are in source pixels even when the image was downscaled, since crop
// coordinates are expressed in source pixels.
type Frame struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SourceResolver downloads and locates a source video.
type SourceResolver interface {
	Resolve(ctx context.Context, url, scratchDir string) (fetcher.Source, error)
}

// DimensionProber reports a source video's frame size.
type DimensionProber interface {
	Dimensions(ctx context.Context, meta fetcher.Metadata, path string) (int, int, error)
}

// FrameCapturer writes one frame of source at start seconds to output.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context, source string, start int, output string) error
}

// Options tune the generated image.
type Options struct {
	ScratchRoot string
	// MaxWidth downscales wider frames. Zero keeps the captured size.
	MaxWidth    int
	JPEGQuality int
}

// Generator runs resolve, probe and capture in a throwaway scratch directory.
type Generator struct {
	resolver SourceResolver
	prober   DimensionProber
	capturer FrameCapturer
	opts     Options
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewGenerator wires the preview pipeline. rec may be nil.
func NewGenerator(resolver SourceResolver, prober DimensionProber, capturer FrameCapturer, opts Options, rec *metrics.Recorder, logger *slog.Logger) *Generator {
	return &Generator{
		resolver: resolver,
		prober:   prober,
		capturer: capturer,
		opts:     opts,
		metrics:  rec,
		logger:   logging.NewComponentLogger(logger, "preview"),
	}
}

// Generate returns a preview frame of url taken at start seconds.
func (g *Generator) Generate(ctx context.Context, url string, start int) (frame Frame, err error) {
	ctx = services.WithStage(ctx, stagePreview)
	logger := logging.WithContext(ctx, g.logger)
	defer func() { g.metrics.PreviewServed(err == nil) }()

	if err := os.MkdirAll(g.opts.ScratchRoot, 0o755); err != nil {
		return Frame{}, services.Fail(services.ErrPreviewFailed, stagePreview, msgPreviewFailed, err)
	}
	workDir, err := os.MkdirTemp(g.opts.ScratchRoot, scratch.PreviewPrefix)
	if err != nil {
		return Frame{}, services.Fail(services.ErrPreviewFailed, stagePreview, msgPreviewFailed, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Debug("scratch cleanup failed", logging.Error(rmErr))
		}
	}()

	source, err := g.resolver.Resolve(ctx, url, workDir)
	if err != nil {
		return Frame{}, err
	}
	width, height, err := g.prober.Dimensions(ctx, source.Metadata, source.Path)
	if err != nil {
		return Frame{}, err
	}

	output := filepath.Join(workDir, frameName)
	if err := g.capturer.CaptureFrame(ctx, source.Path, start, output); err != nil {
		return Frame{}, err
	}
	data, err := os.ReadFile(output)
	if err != nil {
		return Frame{}, services.Fail(services.ErrPreviewFailed, stagePreview, msgPreviewFailed, err)
	}
	if g.opts.MaxWidth > 0 {
		data = g.downscale(logger, data)
	}

	logger.Info("preview captured",
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Int("bytes", len(data)),
	)
	return Frame{
		Image:  "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data),
		Width:  width,
		Height: height,
	}, nil
}

// downscale shrinks frames wider than MaxWidth. The original bytes are kept
// when decoding or encoding fails.
func (g *Generator) downscale(logger *slog.Logger, data []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Debug("preview decode failed; keeping original", logging.Error(err))
		return data
	}
	bounds := img.Bounds()
	if bounds.Dx() <= g.opts.MaxWidth {
		return data
	}
	scaled := imaging.Fit(img, g.opts.MaxWidth, bounds.Dy(), imaging.Lanczos)
	quality := g.opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		logger.Debug("preview encode failed; keeping original", logging.Error(err))
		return data
	}
	logger.Debug("preview downscaled",
		logging.String("from", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy())),
		logging.String("to", fmt.Sprintf("%dx%d", scaled.Bounds().Dx(), scaled.Bounds().Dy())),
	)
	return buf.Bytes()
}
