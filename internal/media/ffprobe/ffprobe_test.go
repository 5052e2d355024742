package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", Width: 1080, Height: 1920},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "12.5", Size: "1000"},
	}
	video, ok := result.VideoStream()
	if !ok || video.Width != 1080 || video.Height != 1920 {
		t.Fatalf("unexpected video stream %+v ok=%v", video, ok)
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if size, ok := result.SizeBytes(); !ok || size != 1000 {
		t.Fatalf("unexpected size: %d ok=%v", size, ok)
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if size, ok := result.SizeBytes(); ok {
		t.Fatalf("expected no usable size, got %d", size)
	}
	if _, ok := (Result{}).SizeBytes(); ok {
		t.Fatal("expected missing size to be reported as unavailable")
	}
	if _, ok := result.VideoStream(); ok {
		t.Fatal("expected no video stream")
	}
}

func TestParseDimensions(t *testing.T) {
	cases := []struct {
		in     string
		w, h   int
		wantOK bool
	}{
		{"1920,1080\n", 1920, 1080, true},
		{" 640 , 360 ", 640, 360, true},
		{"", 0, 0, false},
		{"1920", 0, 0, false},
		{"1920,1080,1", 0, 0, false},
		{"N/A,N/A", 0, 0, false},
		{"0,1080", 0, 0, false},
	}
	for _, tc := range cases {
		w, h, ok := ParseDimensions(tc.in)
		if ok != tc.wantOK || w != tc.w || h != tc.h {
			t.Fatalf("ParseDimensions(%q) = %d,%d,%v", tc.in, w, h, ok)
		}
	}
}

func TestDimensionsRunsCSVQuery(t *testing.T) {
	stub := writeStub(t, `case "$*" in
*"-select_streams v:0 -show_entries stream=width,height -of csv=p=0"*) echo "1280,720" ;;
*) exit 3 ;;
esac`)
	w, h, ok := Dimensions(context.Background(), stub, "/tmp/source.mp4")
	if !ok || w != 1280 || h != 720 {
		t.Fatalf("unexpected dimensions %d,%d ok=%v", w, h, ok)
	}
}

func TestDimensionsTreatsFailureAsUnavailable(t *testing.T) {
	stub := writeStub(t, "echo boom >&2\nexit 1")
	if _, _, ok := Dimensions(context.Background(), stub, "/tmp/source.mp4"); ok {
		t.Fatal("expected failure to be unavailable")
	}
	if _, _, ok := Dimensions(context.Background(), filepath.Join(t.TempDir(), "missing"), "/tmp/x"); ok {
		t.Fatal("expected missing binary to be unavailable")
	}
}

func TestInspectDecodesJSON(t *testing.T) {
	stub := writeStub(t, `echo '{"streams":[{"index":0,"codec_type":"video","width":1080,"height":1920}],"format":{"duration":"10.0"}}'`)
	result, err := Inspect(context.Background(), stub, "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if video, ok := result.VideoStream(); !ok || video.Height != 1920 {
		t.Fatalf("unexpected result %+v", result)
	}
}
