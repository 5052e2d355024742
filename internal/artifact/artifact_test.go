package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"shorts/internal/config"
	"shorts/internal/logging"
	"shorts/internal/services"
	"shorts/internal/testsupport"
)

func TestLocalSaveCopiesFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("video-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "media")
	store := NewLocal(dir, "", logging.NewNop())

	art, err := store.Save(context.Background(), "abc.mp4", src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if art.Name != "abc.mp4" || art.URL != filepath.Join(dir, "abc.mp4") {
		t.Fatalf("unexpected artifact %+v", art)
	}
	data, err := os.ReadFile(filepath.Join(dir, "abc.mp4"))
	if err != nil || string(data) != "video-bytes" {
		t.Fatalf("unexpected stored content %q, %v", data, err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".incoming-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestLocalSaveLogsChecksum(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("video-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var logs bytes.Buffer
	store := NewLocal(t.TempDir(), "", slog.New(slog.NewJSONHandler(&logs, nil)))

	if _, err := store.Save(context.Background(), "abc.mp4", src); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sum := sha256.Sum256([]byte("video-bytes"))
	if want := `"sha256":"` + hex.EncodeToString(sum[:]) + `"`; !strings.Contains(logs.String(), want) {
		t.Fatalf("expected %s in log output, got:\n%s", want, logs.String())
	}
}

func TestLocalSaveUsesBaseURL(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, src, 16)
	store := NewLocal(t.TempDir(), "https://cdn.example.com/media/", nil)
	art, err := store.Save(context.Background(), "abc.mp4", src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if art.URL != "https://cdn.example.com/media/abc.mp4" {
		t.Fatalf("unexpected url %s", art.URL)
	}
}

func TestLocalSaveMissingSource(t *testing.T) {
	store := NewLocal(t.TempDir(), "", nil)
	_, err := store.Save(context.Background(), "abc.mp4", filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, services.ErrArtifactStore) {
		t.Fatalf("expected ErrArtifactStore, got %v", err)
	}
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Key: input.Key}, nil
}

func TestS3SaveUploadsUnderPrefix(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	up := &fakeUploader{}
	store := NewS3WithUploader(up, "shorts-bucket", "/generated/", "", nil)

	art, err := store.Save(context.Background(), "abc.mp4", src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if aws.ToString(up.input.Bucket) != "shorts-bucket" || aws.ToString(up.input.Key) != "generated/abc.mp4" {
		t.Fatalf("unexpected upload input bucket=%s key=%s", aws.ToString(up.input.Bucket), aws.ToString(up.input.Key))
	}
	if string(up.body) != "payload" {
		t.Fatalf("unexpected body %q", up.body)
	}
	if art.URL != "s3://shorts-bucket/generated/abc.mp4" || art.Name != "generated/abc.mp4" {
		t.Fatalf("unexpected artifact %+v", art)
	}

	store.BaseURL = "https://files.example.com"
	art, err = store.Save(context.Background(), "abc.mp4", src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if art.URL != "https://files.example.com/generated/abc.mp4" {
		t.Fatalf("unexpected url %s", art.URL)
	}
}

func TestS3SaveMapsUploadErrors(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, src, 4)
	store := NewS3WithUploader(&fakeUploader{err: errors.New("access denied")}, "b", "", "", nil)
	_, err := store.Save(context.Background(), "abc.mp4", src)
	if !errors.Is(err, services.ErrArtifactStore) {
		t.Fatalf("expected ErrArtifactStore, got %v", err)
	}
}

type bufferWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (b *bufferWriter) Close() error {
	b.closed = true
	return b.closeErr
}

func TestGCSSaveStreamsObject(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	writer := &bufferWriter{}
	var gotBucket, gotObject string
	store := NewGCSWithWriter(func(_ context.Context, bucket, object string) io.WriteCloser {
		gotBucket, gotObject = bucket, object
		return writer
	}, "media", "shorts", "", nil)

	art, err := store.Save(context.Background(), "abc.mp4", src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if gotBucket != "media" || gotObject != "shorts/abc.mp4" {
		t.Fatalf("unexpected target %s/%s", gotBucket, gotObject)
	}
	if !writer.closed || writer.String() != "payload" {
		t.Fatalf("writer not committed: closed=%v body=%q", writer.closed, writer.String())
	}
	if art.URL != "gs://media/shorts/abc.mp4" {
		t.Fatalf("unexpected url %s", art.URL)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestGCSSaveReportsCommitFailure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, src, 4)
	store := NewGCSWithWriter(func(context.Context, string, string) io.WriteCloser {
		return &bufferWriter{closeErr: errors.New("precondition failed")}
	}, "media", "", "", nil)
	_, err := store.Save(context.Background(), "abc.mp4", src)
	if !errors.Is(err, services.ErrArtifactStore) {
		t.Fatalf("expected ErrArtifactStore, got %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Backend() != "local" {
		t.Fatalf("expected local backend, got %s", store.Backend())
	}

	cfg.Artifacts.Backend = config.ArtifactBackendS3
	cfg.Artifacts.S3 = config.S3{Bucket: "b", Region: "us-east-1"}
	store, err = New(context.Background(), cfg, logging.NewNop())
	if err != nil || store.Backend() != "s3" {
		t.Fatalf("expected s3 backend, got %v, %v", store, err)
	}

	cfg.Artifacts.Backend = "ftp"
	if _, err := New(context.Background(), cfg, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
