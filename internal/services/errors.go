package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetchUnavailable      = errors.New("fetcher unavailable")
	ErrDownloadFailed        = errors.New("download failed")
	ErrSourceNotFound        = errors.New("source not found")
	ErrDimensionsUnavailable = errors.New("dimensions unavailable")
	ErrWindowExceedsSource   = errors.New("window exceeds source")
	ErrTranscodeFailed       = errors.New("transcode failed")
	ErrPreviewFailed         = errors.New("preview failed")
	ErrArtifactStore         = errors.New("artifact store failure")
	ErrServiceUnavailable    = errors.New("service unavailable")
	ErrValidation            = errors.New("validation error")
	ErrConfiguration         = errors.New("configuration error")
	ErrNotFound              = errors.New("not found")
	ErrInternal              = errors.New("internal error")
)

// DefaultFailureMessage is persisted when a failure carries no message of its own.
const DefaultFailureMessage = "Short generation failed."

// Failure tags a cause with a classification marker, the stage that produced
// it, and the message shown to whoever submitted the job.
type Failure struct {
	Marker  error
	Stage   string
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	parts := make([]string, 0, 3)
	if f.Stage != "" {
		parts = append(parts, f.Stage)
	}
	if f.Message != "" {
		parts = append(parts, f.Message)
	} else if f.Marker != nil {
		parts = append(parts, f.Marker.Error())
	}
	msg := strings.Join(parts, ": ")
	if f.Cause != nil && !strings.Contains(f.Message, f.Cause.Error()) {
		msg += ": " + f.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the marker and the cause to errors.Is and errors.As.
func (f *Failure) Unwrap() []error {
	out := make([]error, 0, 2)
	if f.Marker != nil {
		out = append(out, f.Marker)
	}
	if f.Cause != nil {
		out = append(out, f.Cause)
	}
	return out
}

// Fail builds a classified pipeline failure. message is the user-facing text
// and should read as a complete sentence.
func Fail(marker error, stage, message string, cause error) error {
	if marker == nil {
		marker = ErrInternal
	}
	return &Failure{
		Marker:  marker,
		Stage:   strings.TrimSpace(stage),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker. Use it for internal plumbing errors that never reach a
// job record directly.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage returns the text persisted on a failed job for err.
func UserMessage(err error) string {
	if err == nil {
		return DefaultFailureMessage
	}
	var failure *Failure
	if errors.As(err, &failure) && failure.Message != "" {
		return failure.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return DefaultFailureMessage
}

// StageOf reports the stage recorded on a Failure, if any.
func StageOf(err error) string {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Stage
	}
	return ""
}

// Hint returns a short operator hint for the error class, used as the
// error_hint log field.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrFetchUnavailable):
		return "install yt-dlp or set fetcher.binary"
	case errors.Is(err, ErrDownloadFailed):
		return "check the source URL and network access"
	case errors.Is(err, ErrSourceNotFound):
		return "inspect the fetcher output naming"
	case errors.Is(err, ErrDimensionsUnavailable):
		return "source may be audio-only; verify ffprobe is installed"
	case errors.Is(err, ErrWindowExceedsSource):
		return "choose an earlier start time or shorter duration"
	case errors.Is(err, ErrTranscodeFailed), errors.Is(err, ErrPreviewFailed):
		return "inspect ffmpeg stderr in the job error"
	case errors.Is(err, ErrArtifactStore):
		return "check artifact backend credentials and paths"
	case errors.Is(err, ErrServiceUnavailable):
		return "check network connectivity"
	case errors.Is(err, ErrInternal):
		return "report this as a bug with the daemon log excerpt"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
