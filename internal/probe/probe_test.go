package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shorts/internal/fetcher"
	"shorts/internal/logging"
	"shorts/internal/services"
)

func stubFFprobe(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestDimensionsPrefersMetadata(t *testing.T) {
	prober := New(stubFFprobe(t, "echo 1,1"), logging.NewNop())
	w, h, err := prober.Dimensions(context.Background(), fetcher.Metadata{Width: 1920, Height: 1080}, "/tmp/x.mp4")
	if err != nil || w != 1920 || h != 1080 {
		t.Fatalf("Dimensions = %d,%d,%v", w, h, err)
	}
}

func TestDimensionsFallsBackToFFprobe(t *testing.T) {
	prober := New(stubFFprobe(t, "echo 640,360"), logging.NewNop())
	w, h, err := prober.Dimensions(context.Background(), fetcher.Metadata{Width: 1920}, "/tmp/x.mp4")
	if err != nil || w != 640 || h != 360 {
		t.Fatalf("Dimensions = %d,%d,%v", w, h, err)
	}
}

func TestDimensionsUnavailable(t *testing.T) {
	for name, binary := range map[string]string{
		"empty output": stubFFprobe(t, "exit 0"),
		"non-zero":     stubFFprobe(t, "echo 640,360; exit 1"),
		"garbage":      stubFFprobe(t, "echo audio-only"),
		"missing":      filepath.Join(t.TempDir(), "ffprobe"),
	} {
		prober := New(binary, logging.NewNop())
		_, _, err := prober.Dimensions(context.Background(), fetcher.Metadata{}, "/tmp/x.mp4")
		if !errors.Is(err, services.ErrDimensionsUnavailable) {
			t.Fatalf("%s: expected ErrDimensionsUnavailable, got %v", name, err)
		}
		if services.UserMessage(err) != "Unable to determine source video dimensions." {
			t.Fatalf("%s: unexpected message %q", name, services.UserMessage(err))
		}
	}
}
