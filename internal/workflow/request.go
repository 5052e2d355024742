package workflow

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"shorts/internal/crop"
	"shorts/internal/overlay"
	"shorts/internal/services"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Request is a short generation request as received from a client.
type Request struct {
	URL       string          `json:"url"`
	StartTime int             `json:"start_time"`
	Duration  int             `json:"duration"`
	Overlay   overlay.Request `json:"overlay"`
	// Crop fields are all-or-nothing.
	CropX      *float64 `json:"crop_x,omitempty"`
	CropY      *float64 `json:"crop_y,omitempty"`
	CropWidth  *float64 `json:"crop_width,omitempty"`
	CropHeight *float64 `json:"crop_height,omitempty"`
	RequestID  string   `json:"request_id,omitempty"`
}

// PreviewRequest asks for a still frame of URL at StartTime seconds.
type PreviewRequest struct {
	URL       string `json:"url"`
	StartTime int    `json:"start_time"`
	RequestID string `json:"request_id,omitempty"`
}

// ValidateRequest checks req at the boundary and returns the crop request,
// or nil when no crop was supplied. Every problem found is reported in one
// ErrValidation error.
func ValidateRequest(req Request) (*crop.Request, error) {
	var problems []string
	problems = append(problems, validateURL(req.URL)...)
	if req.Duration < 1 {
		problems = append(problems, "duration: must be at least 1 second")
	}
	if req.StartTime < 0 {
		problems = append(problems, "start_time: must not be negative")
	}
	problems = append(problems, validateOverlay(req.Overlay)...)

	cropReq, cropProblems := validateCrop(req)
	problems = append(problems, cropProblems...)

	if len(problems) > 0 {
		return nil, validationError(problems)
	}
	return cropReq, nil
}

// ValidatePreviewRequest checks a preview request at the boundary.
func ValidatePreviewRequest(req PreviewRequest) error {
	problems := validateURL(req.URL)
	if req.StartTime < 0 {
		problems = append(problems, "start_time: must not be negative")
	}
	if len(problems) > 0 {
		return validationError(problems)
	}
	return nil
}

func validationError(problems []string) error {
	return services.Fail(services.ErrValidation, "validate", strings.Join(problems, "; "), nil)
}

func validateURL(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{"url: is required"}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return []string{"url: must be an absolute http or https URL"}
	}
	return nil
}

func validateOverlay(o overlay.Request) []string {
	var problems []string
	if utf8.RuneCountInString(overlay.CleanText(o.Text)) > overlay.MaxTextLength {
		problems = append(problems, fmt.Sprintf("overlay.text: must be at most %d characters", overlay.MaxTextLength))
	}
	if o.Font != "" && !overlay.KnownFont(o.Font) {
		problems = append(problems, fmt.Sprintf("overlay.font: must be one of %s", strings.Join(overlay.Fonts, ", ")))
	}
	if o.Color != "" && !hexColor.MatchString(o.Color) {
		problems = append(problems, "overlay.color: must look like #RRGGBB")
	}
	if o.FontSize != nil && (*o.FontSize < overlay.MinFontSize || *o.FontSize > overlay.MaxFontSize) {
		problems = append(problems, fmt.Sprintf("overlay.font_size: must be between %d and %d", overlay.MinFontSize, overlay.MaxFontSize))
	}
	if !validRatio(o.PositionX) {
		problems = append(problems, "overlay.position_x: must be between 0 and 1")
	}
	if !validRatio(o.PositionY) {
		problems = append(problems, "overlay.position_y: must be between 0 and 1")
	}
	return problems
}

func validRatio(v *float64) bool {
	return v == nil || (!math.IsNaN(*v) && *v >= 0 && *v <= 1)
}

func validateCrop(req Request) (*crop.Request, []string) {
	fields := []*float64{req.CropX, req.CropY, req.CropWidth, req.CropHeight}
	present := 0
	for _, f := range fields {
		if f != nil {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(fields) {
		return nil, []string{"crop: crop_x, crop_y, crop_width and crop_height must be provided together"}
	}

	var problems []string
	if !finite(*req.CropX) || *req.CropX < 0 {
		problems = append(problems, "crop_x: must not be negative")
	}
	if !finite(*req.CropY) || *req.CropY < 0 {
		problems = append(problems, "crop_y: must not be negative")
	}
	if !finite(*req.CropWidth) || *req.CropWidth < 1 {
		problems = append(problems, "crop_width: must be at least 1")
	}
	if !finite(*req.CropHeight) || *req.CropHeight < 1 {
		problems = append(problems, "crop_height: must be at least 1")
	}
	if len(problems) > 0 {
		return nil, problems
	}
	return &crop.Request{X: *req.CropX, Y: *req.CropY, Width: *req.CropWidth, Height: *req.CropHeight}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
