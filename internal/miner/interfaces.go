package miner

import (
	"context"
	"net/http"
	"time"
)

// Fetcher performs one direct HTTP GET against an upstream surface. Headers
// carry the per-request identity (user agent, locale, referer).
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, headers http.Header) ([]byte, error)
}

// Renderer navigates a full browser to a URL and returns the rendered DOM.
type Renderer interface {
	Render(ctx context.Context, rawURL string) ([]byte, error)
	Close(ctx context.Context) error
}

// Discoverer turns a (keyword, subreddit) pair into search hits. An empty
// result is a normal "no matches" outcome, never an error.
type Discoverer interface {
	Discover(ctx context.Context, keyword, subreddit string, limit int) []SearchHit
}

// Extractor fetches and parses one post. A nil post with a non-nil error
// means the strategy failed and the caller may try another one.
type Extractor interface {
	Extract(ctx context.Context, req FetchRequest) (*RawPost, error)
}

// DatasetSink is the durable append-only destination for output records.
type DatasetSink interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}

// RowSink buffers spreadsheet rows and flushes them in batches. Flush is
// idempotent and safe to call with an empty buffer.
type RowSink interface {
	Push(ctx context.Context, rec Record) error
	Flush(ctx context.Context) error
}

// Archive persists raw upstream payloads for later inspection.
type Archive interface {
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// Publisher emits the end-of-run summary event.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
	Close() error
}

// Hasher computes digests for archive object names.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
