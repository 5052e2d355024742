package transcode

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"shorts/internal/config"
	"shorts/internal/filtergraph"
	"shorts/internal/logging"
	"shorts/internal/services"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func newTranscoder(t *testing.T, ffmpegBody string) (*Transcoder, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default().Transcoder
	cfg.FFmpegBinary = writeScript(t, dir, "ffmpeg", ffmpegBody)
	cfg.FFprobeBinary = ""
	return New(cfg, logging.NewNop()), dir
}

func TestOutputName(t *testing.T) {
	name := OutputName()
	if !regexp.MustCompile(`^[0-9a-f]{32}\.mp4$`).MatchString(name) {
		t.Fatalf("unexpected output name %q", name)
	}
	if name == OutputName() {
		t.Fatal("expected unique names")
	}
}

func TestArgsMatchEncoderContract(t *testing.T) {
	tr := New(config.Default().Transcoder, logging.NewNop())
	req := Request{Source: "/s/in.mp4", Start: 5, Duration: 10, Graph: filtergraph.Graph{"a", "b"}}
	got := strings.Join(tr.Args(req, "/s/out.mp4"), " ")
	want := "-y -ss 5 -i /s/in.mp4 -t 10 -c:v libx264 -preset medium -crf 18 -c:a aac -vf a,b -movflags +faststart /s/out.mp4"
	if got != want {
		t.Fatalf("unexpected args:\n got %s\nwant %s", got, want)
	}
}

func TestTranscodeWritesOutput(t *testing.T) {
	tr, _ := newTranscoder(t, `for last; do :; done
printf 'mp4' > "$last"`)
	scratch := t.TempDir()
	out, err := tr.Transcode(context.Background(), Request{Source: "/s/in.mp4", Duration: 3, Graph: filtergraph.Graph{"setsar=1"}, OutputDir: scratch})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if filepath.Dir(out) != scratch || !strings.HasSuffix(out, ".mp4") {
		t.Fatalf("unexpected output %s", out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestTranscodeWarnsOnEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default().Transcoder
	cfg.FFmpegBinary = writeScript(t, dir, "ffmpeg", `for last; do :; done
printf 'mp4' > "$last"`)
	cfg.FFprobeBinary = writeScript(t, dir, "ffprobe",
		`echo '{"streams":[{"codec_type":"video","width":1080,"height":1920}],"format":{"duration":"3.0","size":"0"}}'`)
	var logs bytes.Buffer
	tr := New(cfg, slog.New(slog.NewJSONHandler(&logs, nil)))

	if _, err := tr.Transcode(context.Background(), Request{Source: "/s/in.mp4", Duration: 3, OutputDir: t.TempDir()}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if !strings.Contains(logs.String(), `"event_type":"transcode_output_empty"`) {
		t.Fatalf("expected empty output warning, got:\n%s", logs.String())
	}
}

func TestTranscodeFailureCarriesStderr(t *testing.T) {
	tr, _ := newTranscoder(t, "echo 'Unknown encoder' >&2\nexit 1")
	_, err := tr.Transcode(context.Background(), Request{Source: "/s/in.mp4", Duration: 3, OutputDir: t.TempDir()})
	if !errors.Is(err, services.ErrTranscodeFailed) {
		t.Fatalf("expected ErrTranscodeFailed, got %v", err)
	}
	if got := services.UserMessage(err); got != "ffmpeg failed: Unknown encoder" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestTranscodeMissingBinary(t *testing.T) {
	tr := New(config.Default().Transcoder, logging.NewNop())
	tr.FFmpegBinary = filepath.Join(t.TempDir(), "ffmpeg")
	tr.FFprobeBinary = ""
	_, err := tr.Transcode(context.Background(), Request{Source: "/s/in.mp4", Duration: 3, OutputDir: t.TempDir()})
	if !errors.Is(err, services.ErrTranscodeFailed) {
		t.Fatalf("expected ErrTranscodeFailed, got %v", err)
	}
}

func TestCaptureFrame(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	tr, _ := newTranscoder(t, `echo "$@" > `+argsFile+`
for last; do :; done
printf 'jpeg' > "$last"`)
	out := filepath.Join(dir, "preview.jpg")
	if err := tr.CaptureFrame(context.Background(), "/s/in.mp4", -4, out); err != nil {
		t.Fatalf("CaptureFrame: %v", err)
	}
	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	want := "-y -ss 0 -i /s/in.mp4 -frames:v 1 -q:v 2 " + out
	if strings.TrimSpace(string(raw)) != want {
		t.Fatalf("unexpected args %q", strings.TrimSpace(string(raw)))
	}
}

func TestCaptureFrameFailures(t *testing.T) {
	for name, body := range map[string]string{
		"non-zero":  "exit 1",
		"no output": "exit 0",
	} {
		tr, _ := newTranscoder(t, body)
		err := tr.CaptureFrame(context.Background(), "/s/in.mp4", 3, filepath.Join(t.TempDir(), "preview.jpg"))
		if !errors.Is(err, services.ErrPreviewFailed) {
			t.Fatalf("%s: expected ErrPreviewFailed, got %v", name, err)
		}
		if services.UserMessage(err) != "Failed to capture preview frame from the source video." {
			t.Fatalf("%s: unexpected message %q", name, services.UserMessage(err))
		}
	}
}
