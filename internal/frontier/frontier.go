// Package frontier is the admission gate between discovery and fetching. It
// deduplicates by canonical URL and enforces per-(keyword, subreddit) quotas.
package frontier

import (
	"sync"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// Frontier owns the run-scoped seen-set and quota counters. One instance is
// created per run and discarded with it. A single mutex guards both
// structures so the gate stays correct under concurrent admitters.
type Frontier struct {
	mu        sync.Mutex
	maxPerKey int
	seen      map[string]struct{}
	counters  map[string]int
	queue     []miner.FetchRequest
}

// New builds an empty frontier with the given per-(keyword, subreddit) quota.
func New(maxPostsPerKeyword int) *Frontier {
	return &Frontier{
		maxPerKey: maxPostsPerKeyword,
		seen:      make(map[string]struct{}),
		counters:  make(map[string]int),
	}
}

// Admit canonicalizes the hit URL and enqueues a fetch request unless the URL
// was already admitted this run or the pair's quota is exhausted. It reports
// whether the hit was enqueued.
func (f *Frontier) Admit(hit miner.SearchHit, keyword, subreddit string) bool {
	canonical := miner.CanonicalizeURL(hit.URL)
	key := quotaKey(keyword, subreddit)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.counters[key] >= f.maxPerKey {
		return false
	}
	if _, dup := f.seen[canonical]; dup {
		return false
	}
	f.seen[canonical] = struct{}{}
	f.counters[key]++

	sub := hit.Subreddit
	if sub == "" {
		sub = subreddit
	}
	f.queue = append(f.queue, miner.FetchRequest{
		URL:         canonical,
		Keyword:     keyword,
		Subreddit:   sub,
		SearchTitle: hit.Title,
	})
	return true
}

// Pending returns the admitted requests in admission order.
func (f *Frontier) Pending() []miner.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]miner.FetchRequest, len(f.queue))
	copy(out, f.queue)
	return out
}

// Size reports how many requests have been admitted so far.
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

func quotaKey(keyword, subreddit string) string {
	if subreddit == "" {
		subreddit = "all"
	}
	return keyword + "|" + subreddit
}
