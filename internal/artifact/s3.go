package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"shorts/internal/config"
	"shorts/internal/logging"
)

// Uploader is the part of manager.Uploader the S3 store uses.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3 uploads artifacts to an S3 bucket.
type S3 struct {
	Bucket   string
	Prefix   string
	BaseURL  string
	uploader Uploader
	logger   *slog.Logger
}

// NewS3 builds an S3 store. Static credentials are used when both keys are
// set; otherwise requests are sent unsigned, which suits public buckets and
// local S3-compatible servers.
func NewS3(cfg config.S3, baseURL string, logger *slog.Logger) *S3 {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	client := s3.New(opts)
	return NewS3WithUploader(manager.NewUploader(client), cfg.Bucket, cfg.Prefix, baseURL, logger)
}

// NewS3WithUploader builds an S3 store around an existing uploader.
func NewS3WithUploader(uploader Uploader, bucket, prefix, baseURL string, logger *slog.Logger) *S3 {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &S3{Bucket: bucket, Prefix: prefix, BaseURL: baseURL, uploader: uploader, logger: logger}
}

func (s *S3) Backend() string { return "s3" }

func (s *S3) Close() error { return nil }

// Save uploads localPath as prefix/name.
func (s *S3) Save(ctx context.Context, name, localPath string) (Artifact, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return Artifact{}, storeFailure(s.Backend(), fmt.Errorf("open source: %w", err))
	}
	defer file.Close()

	key := objectKey(s.Prefix, name)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return Artifact{}, storeFailure(s.Backend(), fmt.Errorf("upload %s to bucket %s: %w", key, s.Bucket, err))
	}

	url := fmt.Sprintf("s3://%s/%s", s.Bucket, key)
	if s.BaseURL != "" {
		url = joinURL(s.BaseURL, key)
	}
	s.logger.Info("artifact stored",
		logging.String("backend", s.Backend()),
		logging.String("bucket", s.Bucket),
		logging.String("key", key),
	)
	return Artifact{Name: key, URL: url}, nil
}
