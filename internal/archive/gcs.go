package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCS uploads payloads to a Google Cloud Storage bucket. Authentication
// uses Application Default Credentials.
type GCS struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCS creates the client and verifies the bucket is reachable so a bad
// configuration fails at startup rather than mid-run.
func NewGCS(ctx context.Context, bucket string, logger *zap.Logger) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close storage client after failed bucket check", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	return &GCS{client: client, bucket: bucket, logger: logger}, nil
}

// Save uploads one payload. Close on the object writer finalizes the
// upload, so its error is the upload error.
func (g *GCS) Save(ctx context.Context, name string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		if closeErr := w.Close(); closeErr != nil {
			g.logger.Warn("close object writer after failed write", zap.Error(closeErr))
		}
		return fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", name, err)
	}
	g.logger.Debug("payload uploaded", zap.String("object", name), zap.Int("bytes", len(data)))
	return nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}
