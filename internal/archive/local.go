package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Local writes payloads under a base directory, mirroring the object name
// as a relative path.
type Local struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocal creates a filesystem archive rooted at baseDir, verifying the
// directory exists and is writable up front.
func NewLocal(baseDir string, logger *zap.Logger) (*Local, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("archive base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	probe := filepath.Join(baseDir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("archive dir is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}
	return &Local{baseDir: baseDir, logger: logger}, nil
}

// Save writes one payload. Object names with a path traversal are rejected.
func (l *Local) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("object name is required")
	}
	fullPath := filepath.Join(l.baseDir, name)
	cleanBase := filepath.Clean(l.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("object name escapes archive root")
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("create archive subdir: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return fmt.Errorf("write archive object %s: %w", name, err)
	}
	l.logger.Debug("payload archived", zap.String("object", name), zap.Int("bytes", len(data)))
	return nil
}

// Close does nothing for the filesystem archive.
func (l *Local) Close() error { return nil }
