package overlay

import (
	"math"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	DefaultText     = "My Shorts Video"
	DefaultFont     = "Arial"
	DefaultColor    = "#FFFFFF"
	DefaultFontSize = 48

	MaxTextLength = 120
	MinFontSize   = 12
	MaxFontSize   = 200
)

// Fonts lists the overlay font names a request may choose from.
var Fonts = []string{"Arial", "Roboto", "Poppins", "Pacifico", "Montserrat"}

// Request carries overlay settings as supplied by a client. Nil pointers mean
// the field was omitted.
type Request struct {
	Text      string   `json:"text,omitempty"`
	Font      string   `json:"font,omitempty"`
	Color     string   `json:"color,omitempty"`
	FontSize  *int     `json:"font_size,omitempty"`
	PositionX *float64 `json:"position_x,omitempty"`
	PositionY *float64 `json:"position_y,omitempty"`
}

// Options are canonical overlay settings. PositionX and PositionY are ratios
// in [0,1]; nil keeps the default placement.
type Options struct {
	Text      string   `json:"text"`
	Font      string   `json:"font"`
	Color     string   `json:"color"`
	FontSize  int      `json:"font_size"`
	PositionX *float64 `json:"position_x,omitempty"`
	PositionY *float64 `json:"position_y,omitempty"`
}

// KnownFont reports whether name is one of Fonts.
func KnownFont(name string) bool {
	return slices.Contains(Fonts, name)
}

// CleanText trims and NFC-normalizes overlay text so length checks and
// escaping see composed characters.
func CleanText(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// Normalize applies the default-on-invalid policy to req.
func Normalize(req Request) Options {
	opts := Options{
		Text:     CleanText(req.Text),
		Font:     req.Font,
		Color:    normalizeColor(req.Color),
		FontSize: DefaultFontSize,
	}
	if opts.Text == "" {
		opts.Text = DefaultText
	}
	if opts.Font == "" || !KnownFont(opts.Font) {
		opts.Font = DefaultFont
	}
	if req.FontSize != nil && *req.FontSize > 0 {
		opts.FontSize = *req.FontSize
	}
	opts.PositionX = clampRatio(req.PositionX)
	opts.PositionY = clampRatio(req.PositionY)
	return opts
}

func normalizeColor(raw string) string {
	if raw == "" {
		return DefaultColor
	}
	color := strings.ToUpper(raw)
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if len(color) != len(DefaultColor) {
		return DefaultColor
	}
	return color
}

func clampRatio(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) {
		return nil
	}
	clamped := math.Max(0, math.Min(1, *value))
	return &clamped
}
