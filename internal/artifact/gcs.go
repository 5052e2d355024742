package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"shorts/internal/config"
	"shorts/internal/logging"
)

// WriterFunc opens a writer for one object.
type WriterFunc func(ctx context.Context, bucket, object string) io.WriteCloser

// GCS uploads artifacts to a Google Cloud Storage bucket.
type GCS struct {
	Bucket  string
	Prefix  string
	BaseURL string

	client     *storage.Client
	openWriter WriterFunc
	logger     *slog.Logger
}

// NewGCS creates a storage client using the configured service account file,
// or application default credentials when none is set.
func NewGCS(ctx context.Context, cfg config.GCS, baseURL string, logger *slog.Logger) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	store := NewGCSWithWriter(func(ctx context.Context, bucket, object string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = "video/mp4"
		return w
	}, cfg.Bucket, cfg.Prefix, baseURL, logger)
	store.client = client
	return store, nil
}

// NewGCSWithWriter builds a GCS store around an object writer factory.
func NewGCSWithWriter(open WriterFunc, bucket, prefix, baseURL string, logger *slog.Logger) *GCS {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GCS{Bucket: bucket, Prefix: prefix, BaseURL: baseURL, openWriter: open, logger: logger}
}

func (g *GCS) Backend() string { return "gcs" }

func (g *GCS) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Save streams localPath into prefix/name.
func (g *GCS) Save(ctx context.Context, name, localPath string) (Artifact, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return Artifact{}, storeFailure(g.Backend(), fmt.Errorf("open source: %w", err))
	}
	defer file.Close()

	object := objectKey(g.Prefix, name)
	wc := g.openWriter(ctx, g.Bucket, object)
	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return Artifact{}, storeFailure(g.Backend(), fmt.Errorf("io.Copy: %w", err))
	}
	// The upload is only committed once Close succeeds.
	if err := wc.Close(); err != nil {
		return Artifact{}, storeFailure(g.Backend(), fmt.Errorf("Writer.Close: %w", err))
	}

	url := fmt.Sprintf("gs://%s/%s", g.Bucket, object)
	if g.BaseURL != "" {
		url = joinURL(g.BaseURL, object)
	}
	g.logger.Info("artifact stored",
		logging.String("backend", g.Backend()),
		logging.String("bucket", g.Bucket),
		logging.String("object", object),
	)
	return Artifact{Name: object, URL: url}, nil
}
