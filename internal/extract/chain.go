package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// Chain tries each extraction strategy in fixed priority order. A strategy
// error triggers the next one; only when every strategy fails does the item
// fail (and become subject to the worker's retry policy).
type Chain struct {
	strategies []miner.Extractor
	logger     *zap.Logger
}

// NewChain builds an extractor chain. Order is priority order.
func NewChain(logger *zap.Logger, strategies ...miner.Extractor) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Extract runs the chain for one queued post.
func (c *Chain) Extract(ctx context.Context, req miner.FetchRequest) (*miner.RawPost, error) {
	var lastErr error
	for _, strategy := range c.strategies {
		post, err := strategy.Extract(ctx, req)
		if err == nil && post != nil {
			return post, nil
		}
		lastErr = err
		c.logger.Warn("extraction strategy failed",
			zap.String("url", req.URL),
			zap.Error(err),
		)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no extraction strategy configured")
	}
	return nil, fmt.Errorf("extract %s: %w", req.URL, lastErr)
}
