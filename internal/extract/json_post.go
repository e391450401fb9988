// Package extract turns one queued post URL into a RawPost. The structured
// post+comments endpoint is the primary strategy; a rendered-DOM parse is the
// fallback. Both produce the same shape so downstream stages never know which
// path ran.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/fetch"
	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// MaxComments caps how many comment fragments one post contributes,
// regardless of strategy.
const MaxComments = 100

const commentKind = "t1"

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []node `json:"children"`
	} `json:"data"`
}

type node struct {
	Kind string   `json:"kind"`
	Data nodeData `json:"data"`
}

// nodeData is the union of the post and comment fields the pipeline reads.
// Replies stays raw because the endpoint encodes "no replies" as the empty
// string rather than an empty listing.
type nodeData struct {
	Title      string          `json:"title"`
	Selftext   string          `json:"selftext"`
	Body       string          `json:"body"`
	Subreddit  string          `json:"subreddit"`
	Author     string          `json:"author"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Permalink  string          `json:"permalink"`
	ID         string          `json:"id"`
	Replies    json.RawMessage `json:"replies"`
}

// StructuredExtractor fetches the post-plus-comments payload in one call. It
// fails closed: anything other than the expected two-part shape is an error.
type StructuredExtractor struct {
	fetcher miner.Fetcher
	logger  *zap.Logger
	base    string
}

// NewStructuredExtractor builds the primary strategy. base overrides the
// permalink origin for tests; empty means the URLs are used as-is.
func NewStructuredExtractor(fetcher miner.Fetcher, logger *zap.Logger, base string) *StructuredExtractor {
	if base == "" {
		base = "https://www.reddit.com"
	}
	return &StructuredExtractor{fetcher: fetcher, logger: logger, base: base}
}

// Extract performs the structured fetch and parse.
func (e *StructuredExtractor) Extract(ctx context.Context, req miner.FetchRequest) (*miner.RawPost, error) {
	jsonURL := postJSONURL(req.URL)
	body, err := e.fetcher.Fetch(ctx, jsonURL, fetch.JSONHeaders(req.URL))
	if err != nil {
		return nil, fmt.Errorf("post json fetch: %w", err)
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, fmt.Errorf("post json shape: %w", err)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("post json shape: got %d parts, want 2", len(parts))
	}

	var postListing listing
	if err := json.Unmarshal(parts[0], &postListing); err != nil {
		return nil, fmt.Errorf("post listing: %w", err)
	}
	if len(postListing.Data.Children) == 0 {
		return nil, fmt.Errorf("post listing has no children")
	}
	post := postListing.Data.Children[0].Data

	raw := &miner.RawPost{
		Title:     miner.NormalizeText(post.Title),
		Body:      miner.NormalizeText(post.Selftext),
		Subreddit: post.Subreddit,
		Author:    post.Author,
		CreatedAt: isoFromEpoch(post.CreatedUTC),
		ScoreText: strconv.Itoa(post.Score),
		Comments:  FlattenListing(parts[1], MaxComments, e.base),
	}
	return raw, nil
}

// FlattenListing walks a comment listing depth-first in pre-order (a comment
// before its own replies) using an explicit stack, so hostile nesting can
// exhaust neither the Go stack nor memory. Non-comment nodes ("more" stubs
// and the like) are skipped. Flattening stops once cap items are collected.
func FlattenListing(raw json.RawMessage, limit int, permalinkBase string) []miner.RawComment {
	root := parseReplies(raw)
	if root == nil {
		return nil
	}

	var out []miner.RawComment
	stack := [][]node{root.Data.Children}
	for len(stack) > 0 && len(out) < limit {
		top := stack[len(stack)-1]
		if len(top) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top[0]
		stack[len(stack)-1] = top[1:]

		if n.Kind != commentKind {
			continue
		}
		out = append(out, commentFromNode(n.Data, permalinkBase))
		if replies := parseReplies(n.Data.Replies); replies != nil {
			stack = append(stack, replies.Data.Children)
		}
	}
	return out
}

func commentFromNode(d nodeData, permalinkBase string) miner.RawComment {
	permalink := ""
	if d.Permalink != "" {
		permalink = permalinkBase + d.Permalink
	}
	return miner.RawComment{
		Text:      miner.NormalizeText(d.Body),
		ScoreText: strconv.Itoa(d.Score),
		Author:    miner.NormalizeText(d.Author),
		CreatedAt: isoFromEpoch(d.CreatedUTC),
		Permalink: permalink,
		ID:        d.ID,
	}
}

// parseReplies tolerates the endpoint's two encodings of "no replies":
// a missing field and the literal empty string.
func parseReplies(raw json.RawMessage) *listing {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == `""` || trimmed == "null" {
		return nil
	}
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil
	}
	return &l
}

func postJSONURL(canonical string) string {
	if strings.HasSuffix(canonical, "/") {
		return canonical + ".json?raw_json=1"
	}
	return canonical + "/.json?raw_json=1"
}

func isoFromEpoch(epoch float64) string {
	if epoch <= 0 {
		return ""
	}
	return time.Unix(int64(epoch), 0).UTC().Format(time.RFC3339)
}
