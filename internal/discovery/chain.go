package discovery

import (
	"context"

	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// Chain tries each strategy in priority order and returns the first non-empty
// result. Both strategies returning nothing is a normal outcome for pairs
// with no matches.
type Chain struct {
	strategies []miner.Discoverer
	logger     *zap.Logger
}

// NewChain builds a discovery chain. Order is priority order.
func NewChain(logger *zap.Logger, strategies ...miner.Discoverer) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Discover runs the chain for one (keyword, subreddit) pair.
func (c *Chain) Discover(ctx context.Context, keyword, subreddit string, limit int) []miner.SearchHit {
	miner.TotalSearches.Inc()
	for i, strategy := range c.strategies {
		if i > 0 {
			miner.TotalSearchFallbacks.Inc()
		}
		if hits := strategy.Discover(ctx, keyword, subreddit, limit); len(hits) > 0 {
			return hits
		}
	}
	c.logger.Warn("no search results from any strategy",
		zap.String("keyword", keyword),
		zap.String("subreddit", subreddit),
	)
	return nil
}
