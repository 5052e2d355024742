package filtergraph_test

import (
	"testing"

	"shorts/internal/crop"
	"shorts/internal/filtergraph"
	"shorts/internal/overlay"
)

const fontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"

func floatPtr(v float64) *float64 { return &v }

func TestBuildDefaultGeometry(t *testing.T) {
	graph := filtergraph.Build(filtergraph.Params{
		Overlay:      overlay.Normalize(overlay.Request{}),
		FontPath:     fontPath,
		TargetWidth:  1080,
		TargetHeight: 1920,
	})

	want := "scale=1080:1920:force_original_aspect_ratio=increase," +
		"crop=1080:1920," +
		"setsar=1," +
		"drawtext=text='My Shorts Video':fontfile=" + fontPath +
		":fontsize=48:fontcolor=0xFFFFFF:x=(w-text_w)/2:y=50:shadowcolor=black:shadowx=2:shadowy=2"
	if got := graph.String(); got != want {
		t.Fatalf("unexpected graph\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildCropGeometry(t *testing.T) {
	rect, ok := crop.Normalize(crop.Request{X: 100, Y: 50, Width: 301, Height: 401}, 1920, 1080)
	if !ok {
		t.Fatal("expected crop")
	}
	graph := filtergraph.Build(filtergraph.Params{
		Crop:         &rect,
		Overlay:      overlay.Normalize(overlay.Request{}),
		FontPath:     fontPath,
		TargetWidth:  1080,
		TargetHeight: 1920,
	})

	wantPrefix := []string{
		"crop=300:400:100:50",
		"scale=1080:1920:force_original_aspect_ratio=decrease",
		"pad=1080:1920:(1080-iw)/2:(1920-ih)/2",
		"setsar=1",
	}
	if len(graph) != len(wantPrefix)+1 {
		t.Fatalf("unexpected stage count %d: %v", len(graph), graph)
	}
	for i, stage := range wantPrefix {
		if graph[i] != stage {
			t.Fatalf("stage %d: got %q want %q", i, graph[i], stage)
		}
	}
}

func TestDrawtextEscapingAndPositions(t *testing.T) {
	opts := overlay.Normalize(overlay.Request{
		Text:      `It's 5:00 \o/`,
		Color:     "#00ff00",
		PositionX: floatPtr(0.25),
		PositionY: floatPtr(0.8),
	})
	got := filtergraph.Drawtext(opts, "/f.ttf")
	want := `drawtext=text='It\'s 5\:00 \\o/':fontfile=/f.ttf:fontsize=48:fontcolor=0x00FF00:` +
		`x=min(max(w*0.250000-text_w/2\,0)\,w-text_w):` +
		`y=min(max(h*0.800000-text_h/2\,0)\,h-text_h):` +
		`shadowcolor=black:shadowx=2:shadowy=2`
	if got != want {
		t.Fatalf("unexpected drawtext\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildIsDeterministicBeyondSixDecimals(t *testing.T) {
	base := filtergraph.Params{FontPath: fontPath, TargetWidth: 1080, TargetHeight: 1920}

	a := base
	a.Overlay = overlay.Normalize(overlay.Request{PositionX: floatPtr(0.1234561), PositionY: floatPtr(0.5)})
	b := base
	b.Overlay = overlay.Normalize(overlay.Request{PositionX: floatPtr(0.1234564), PositionY: floatPtr(0.5)})

	if filtergraph.Build(a).String() != filtergraph.Build(b).String() {
		t.Fatal("expected ratios equal to six decimals to render identically")
	}
	if filtergraph.Build(a).String() != filtergraph.Build(a).String() {
		t.Fatal("expected repeated builds to be identical")
	}
}

func TestEscapeTextOrder(t *testing.T) {
	if got := filtergraph.EscapeText(`a\:b`); got != `a\\\:b` {
		t.Fatalf("unexpected escape %q", got)
	}
}
