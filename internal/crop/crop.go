package crop

import (
	"fmt"
	"math"
)

// Request is a crop rectangle in source pixels, before normalization.
type Request struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a normalized crop. All fields hold even whole-pixel values except
// X and Y, which are whole but may be odd.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Filter renders the rectangle as an ffmpeg crop filter.
func (r Rect) Filter() string {
	w := max(2, int(math.RoundToEven(r.Width)))
	h := max(2, int(math.RoundToEven(r.Height)))
	x := max(0, int(math.RoundToEven(r.X)))
	y := max(0, int(math.RoundToEven(r.Y)))
	return fmt.Sprintf("crop=%d:%d:%d:%d", w, h, x, y)
}

// Normalize fits req inside a sourceW x sourceH frame. The order of the steps
// matters: shrinking happens on the clamped origin, parity is forced after
// rounding, and the origin is pulled back only if the even box overflows.
func Normalize(req Request, sourceW, sourceH int) (Rect, bool) {
	if sourceW <= 0 || sourceH <= 0 {
		return Rect{}, false
	}
	sw := float64(sourceW)
	sh := float64(sourceH)

	x := math.Max(0, math.Min(req.X, sw-1))
	y := math.Max(0, math.Min(req.Y, sh-1))
	width := math.Max(1, req.Width)
	height := math.Max(1, req.Height)

	if x+width > sw {
		width = math.Max(1, sw-x)
	}
	if y+height > sh {
		height = math.Max(1, sh-y)
	}
	if width <= 1 || height <= 1 {
		return Rect{}, false
	}

	left := roundHalfEven(x)
	top := roundHalfEven(y)
	right := min(sourceW, roundHalfEven(x+width))
	bottom := min(sourceH, roundHalfEven(y+height))

	w := max(2, right-left)
	h := max(2, bottom-top)
	if w%2 != 0 {
		w--
	}
	if h%2 != 0 {
		h--
	}
	if w < 2 || h < 2 {
		return Rect{}, false
	}

	if left+w > sourceW {
		left = max(0, sourceW-w)
	}
	if top+h > sourceH {
		top = max(0, sourceH-h)
	}

	return Rect{
		X:      float64(left),
		Y:      float64(top),
		Width:  float64(w),
		Height: float64(h),
	}, true
}

// roundHalfEven matches banker's rounding so .5 coordinates land on the same
// pixel the browser-side selection tool reports.
func roundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}
