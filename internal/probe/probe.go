package probe

import (
	"context"
	"log/slog"

	"shorts/internal/fetcher"
	"shorts/internal/logging"
	"shorts/internal/media/ffprobe"
	"shorts/internal/services"
)

const msgDimensionsUnavailable = "Unable to determine source video dimensions."

// Prober prefers fetcher metadata and falls back to ffprobe.
type Prober struct {
	FFprobeBinary string
	logger        *slog.Logger
}

// New returns a Prober that shells out to binary when metadata is incomplete.
func New(binary string, logger *slog.Logger) *Prober {
	return &Prober{FFprobeBinary: binary, logger: logging.NewComponentLogger(logger, "probe")}
}

// Dimensions returns the source width and height.
func (p *Prober) Dimensions(ctx context.Context, meta fetcher.Metadata, path string) (int, int, error) {
	if meta.HasDimensions() {
		return meta.Width, meta.Height, nil
	}
	if w, h, ok := ffprobe.Dimensions(ctx, p.FFprobeBinary, path); ok {
		p.logger.Debug("dimensions from ffprobe", logging.Int("width", w), logging.Int("height", h))
		return w, h, nil
	}
	return 0, 0, services.Fail(services.ErrDimensionsUnavailable, "probe", msgDimensionsUnavailable, nil)
}
