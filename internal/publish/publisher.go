package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Publisher uploads local files to one bucket.
type Publisher struct {
	client Client
	bucket string
	prefix string
	region string
	logger *zap.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(client Client, cfg Config, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		region: cfg.Region,
		logger: logger,
	}
}

// EnsureBucket creates the bucket when it does not exist.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}

	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}
	p.logger.Info("Created bucket", zap.String("bucket", p.bucket))
	return nil
}

// ObjectName returns the key a local file is stored under.
func (p *Publisher) ObjectName(localPath string) string {
	return path.Join(p.prefix, filepath.Base(localPath))
}

// Publish uploads the given files. Paths that do not exist are skipped, so
// a missing backup is not an error. It returns the uploaded object names.
func (p *Publisher) Publish(ctx context.Context, paths ...string) ([]string, error) {
	if err := p.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	var uploaded []string
	for _, local := range paths {
		if local == "" {
			continue
		}

		name, err := p.upload(ctx, local)
		if os.IsNotExist(err) {
			p.logger.Debug("Skipping missing file", zap.String("path", local))
			continue
		}
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, name)
	}

	return uploaded, nil
}

func (p *Publisher) upload(ctx context.Context, local string) (string, error) {
	f, err := os.Open(local)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", local, err)
	}

	name := p.ObjectName(local)
	_, err = p.client.PutObject(ctx, p.bucket, name, f, info.Size(), minio.PutObjectOptions{
		ContentType: "application/json; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}

	p.logger.Info("Published file",
		zap.String("bucket", p.bucket),
		zap.String("object", name),
		zap.Int64("size", info.Size()))
	return name, nil
}
