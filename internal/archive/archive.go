// Package archive persists raw upstream payloads (search listings, post
// JSON, rendered HTML) so extraction bugs can be replayed offline. The
// provider is selected at startup; "noop" disables archiving entirely.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// NoOp discards every payload. Used when archiving is disabled.
type NoOp struct{}

// Save does nothing and always returns nil.
func (NoOp) Save(_ context.Context, _ string, _ []byte) error { return nil }

// Close does nothing.
func (NoOp) Close() error { return nil }

// ObjectName builds the archive key for a fetched post: a date prefix for
// partition-style browsing plus a digest of the canonical URL.
func ObjectName(hasher miner.Hasher, now time.Time, canonicalURL, ext string) (string, error) {
	digest, err := hasher.Hash([]byte(canonicalURL))
	if err != nil {
		return "", fmt.Errorf("hash archive name: %w", err)
	}
	return fmt.Sprintf("posts/%s/%s.%s", now.UTC().Format("2006-01-02"), digest, ext), nil
}
