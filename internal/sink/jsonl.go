// Package sink holds the durable record destinations: a local JSONL
// dataset, a Postgres table, and a buffered spreadsheet writer.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// JSONLSink appends records to a newline-delimited JSON file. Each Append
// is one fsync-free write; durability follows the OS page cache.
type JSONLSink struct {
	mu     sync.Mutex
	file   *os.File
	logger *zap.Logger
}

// NewJSONLSink opens (or creates) the dataset file in append mode.
func NewJSONLSink(path string, logger *zap.Logger) (*JSONLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dataset dir for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	logger.Info("dataset sink ready", zap.String("path", path))
	return &JSONLSink{file: file, logger: logger}, nil
}

// Append writes one record as a single JSON line.
func (s *JSONLSink) Append(ctx context.Context, rec miner.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}
	return nil
}
