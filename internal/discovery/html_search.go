package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/fetch"
	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// DefaultHTMLBase is the origin serving the rendered search page.
const DefaultHTMLBase = "https://old.reddit.com"

// maxHTMLHits caps how many links the fallback takes from one page.
const maxHTMLHits = 50

// HTMLSearch parses permalink-shaped anchors out of the rendered search page.
// The page does not expose vote counts in this surface, so every hit reports
// score 0; the detail stage score is authoritative.
type HTMLSearch struct {
	fetcher miner.Fetcher
	logger  *zap.Logger
	base    string
}

// NewHTMLSearch builds the fallback strategy.
func NewHTMLSearch(fetcher miner.Fetcher, logger *zap.Logger, base string) *HTMLSearch {
	if base == "" {
		base = DefaultHTMLBase
	}
	return &HTMLSearch{fetcher: fetcher, logger: logger, base: base}
}

// Discover fetches the search page and extracts up to 50 distinct post links
// in document order.
func (s *HTMLSearch) Discover(ctx context.Context, keyword, subreddit string, _ int) []miner.SearchHit {
	target := s.searchURL(keyword, subreddit)
	body, err := s.fetcher.Fetch(ctx, target, fetch.HTMLHeaders())
	if err != nil {
		s.logger.Warn("html search failed", zap.String("url", target), zap.Error(err))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("html search parse failed", zap.String("url", target), zap.Error(err))
		return nil
	}

	seen := make(map[string]struct{})
	var hits []miner.SearchHit
	doc.Find(`a[href*="/comments/"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		title := miner.NormalizeText(sel.Text())
		if !ok || href == "" || title == "" {
			return true
		}
		full := href
		if !strings.HasPrefix(full, "http") {
			full = s.base + href
		}
		canonical := miner.CanonicalizeURL(full)
		if _, dup := seen[canonical]; dup {
			return true
		}
		seen[canonical] = struct{}{}

		sub := miner.SubredditFromURL(canonical)
		if sub == "" {
			sub = strings.ToLower(subreddit)
		}
		hits = append(hits, miner.SearchHit{
			URL:       canonical,
			Title:     title,
			Score:     0,
			Subreddit: sub,
		})
		return len(hits) < maxHTMLHits
	})
	return hits
}

func (s *HTMLSearch) searchURL(keyword, subreddit string) string {
	srPart := ""
	restrict := 0
	if subreddit != "" {
		srPart = "/r/" + url.PathEscape(subreddit)
		restrict = 1
	}
	return fmt.Sprintf("%s%s/search/?q=%s&restrict_sr=%d&sort=new", s.base, srPart, url.QueryEscape(keyword), restrict)
}
