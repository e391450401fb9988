// Package discovery finds candidate posts for a (keyword, subreddit) pair.
// The structured search endpoint is the primary strategy; a rendered search
// page parse is the fallback when it yields nothing.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/fetch"
	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// DefaultJSONBase is the origin serving the structured search endpoint.
const DefaultJSONBase = "https://www.reddit.com"

// searchListing mirrors the slice of the search payload the pipeline reads.
type searchListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Permalink string `json:"permalink"`
				Title     string `json:"title"`
				Score     int    `json:"score"`
				Subreddit string `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// JSONSearch issues one structured query per pair. Transport and shape
// failures are absorbed into an empty result.
type JSONSearch struct {
	fetcher miner.Fetcher
	logger  *zap.Logger
	base    string
}

// NewJSONSearch builds the primary strategy. An empty base uses the
// production origin.
func NewJSONSearch(fetcher miner.Fetcher, logger *zap.Logger, base string) *JSONSearch {
	if base == "" {
		base = DefaultJSONBase
	}
	return &JSONSearch{fetcher: fetcher, logger: logger, base: base}
}

// Discover queries the structured endpoint with a clamped limit.
func (s *JSONSearch) Discover(ctx context.Context, keyword, subreddit string, limit int) []miner.SearchHit {
	target := s.searchURL(keyword, subreddit, clampLimit(limit))
	body, err := s.fetcher.Fetch(ctx, target, fetch.JSONHeaders(s.referer(subreddit)))
	if err != nil {
		s.logger.Warn("json search failed", zap.String("url", target), zap.Error(err))
		return nil
	}

	var listing searchListing
	if err := json.Unmarshal(body, &listing); err != nil {
		s.logger.Warn("json search payload malformed", zap.String("url", target), zap.Error(err))
		return nil
	}

	hits := make([]miner.SearchHit, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.Permalink == "" || d.Title == "" {
			continue
		}
		sub := strings.ToLower(d.Subreddit)
		if sub == "" {
			sub = strings.ToLower(subreddit)
		}
		hits = append(hits, miner.SearchHit{
			URL:       s.base + d.Permalink,
			Title:     d.Title,
			Score:     d.Score,
			Subreddit: sub,
		})
	}
	return hits
}

func (s *JSONSearch) searchURL(keyword, subreddit string, limit int) string {
	srPart := ""
	restrict := 0
	if subreddit != "" {
		srPart = "/r/" + url.PathEscape(subreddit)
		restrict = 1
	}
	return fmt.Sprintf(
		"%s%s/search.json?q=%s&restrict_sr=%d&sort=new&type=link&t=all&limit=%d&raw_json=1&source=recent",
		s.base, srPart, url.QueryEscape(keyword), restrict, limit,
	)
}

func (s *JSONSearch) referer(subreddit string) string {
	if subreddit != "" {
		return fmt.Sprintf("%s/r/%s/search/", s.base, url.PathEscape(subreddit))
	}
	return s.base + "/search/"
}

func clampLimit(limit int) int {
	if limit < 25 {
		return 25
	}
	if limit > 100 {
		return 100
	}
	return limit
}
