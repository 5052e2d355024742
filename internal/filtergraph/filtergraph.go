package filtergraph

import (
	"fmt"
	"strings"

	"shorts/internal/crop"
	"shorts/internal/overlay"
)

// Graph is an ordered list of filter stages.
type Graph []string

// String joins the stages into a single -vf argument.
func (g Graph) String() string {
	return strings.Join(g, ",")
}

// Params describes one filter graph.
type Params struct {
	// Crop is the normalized user crop. Nil selects the fill geometry.
	Crop         *crop.Rect
	Overlay      overlay.Options
	FontPath     string
	TargetWidth  int
	TargetHeight int
}

// Build returns the geometry stages followed by the drawtext stage.
func Build(p Params) Graph {
	w, h := p.TargetWidth, p.TargetHeight
	var graph Graph
	if p.Crop != nil {
		graph = append(graph,
			p.Crop.Filter(),
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w, h),
			fmt.Sprintf("pad=%d:%d:(%d-iw)/2:(%d-ih)/2", w, h, w, h),
			"setsar=1",
		)
	} else {
		graph = append(graph,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", w, h),
			fmt.Sprintf("crop=%d:%d", w, h),
			"setsar=1",
		)
	}
	return append(graph, Drawtext(p.Overlay, p.FontPath))
}

// Drawtext renders the text overlay stage.
func Drawtext(opts overlay.Options, fontPath string) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontfile=%s:fontsize=%d:fontcolor=%s:x=%s:y=%s:shadowcolor=black:shadowx=2:shadowy=2",
		EscapeText(opts.Text),
		fontPath,
		opts.FontSize,
		fontColor(opts.Color),
		positionExpr("w", "text_w", opts.PositionX, "(w-text_w)/2"),
		positionExpr("h", "text_h", opts.PositionY, "50"),
	)
}

// EscapeText escapes a value for drawtext's quoted text option. Backslashes
// go first so later escapes are not doubled.
func EscapeText(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	return strings.ReplaceAll(value, "'", `\'`)
}

func fontColor(color string) string {
	hex := strings.TrimLeft(color, "#")
	if len(hex) != 6 {
		hex = "FFFFFF"
	}
	return "0x" + strings.ToUpper(hex)
}

// positionExpr centers the text on ratio*frame and clamps it inside the frame.
// Commas are escaped because the expression sits inside a filter chain.
func positionExpr(frame, text string, ratio *float64, fallback string) string {
	if ratio == nil {
		return fallback
	}
	r := fmt.Sprintf("%.6f", *ratio)
	return fmt.Sprintf(`min(max(%s*%s-%s/2\,0)\,%s-%s)`, frame, r, text, frame, text)
}
