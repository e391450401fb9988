// Package worker implements the acquisition loop: it drains the frontier
// one request at a time, extracts each post with retries, classifies the
// result, and hands surviving records to the configured sinks.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/archive"
	"github.com/insightmine/reddit-quote-miner/internal/classify"
	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// Config controls Worker behavior.
type Config struct {
	MaxAttempts int
	ItemTimeout time.Duration
}

// Worker executes the fetch pipeline for every admitted request.
// Processing is serialized; politeness toward the upstream comes from
// doing one thing at a time.
type Worker struct {
	extractor  miner.Extractor
	classifier *classify.Classifier
	dataset    miner.DatasetSink
	sheet      miner.RowSink
	archive    miner.Archive
	hasher     miner.Hasher
	clock      miner.Clock
	retry      *RetryPolicy
	cfg        Config
	logger     *zap.Logger
}

// Result summarizes one drain of the frontier.
type Result struct {
	PostsFetched int
	Abandoned    int
	RecordsSaved int
}

// New constructs a Worker. sheet and arc may be nil when those sinks are
// not configured.
func New(
	extractor miner.Extractor,
	classifier *classify.Classifier,
	dataset miner.DatasetSink,
	sheet miner.RowSink,
	arc miner.Archive,
	hasher miner.Hasher,
	clock miner.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 180 * time.Second
	}
	if arc == nil {
		arc = archive.NoOp{}
	}
	return &Worker{
		extractor:  extractor,
		classifier: classifier,
		dataset:    dataset,
		sheet:      sheet,
		archive:    arc,
		hasher:     hasher,
		clock:      clock,
		retry:      NewRetryPolicy(cfg.MaxAttempts),
		cfg:        cfg,
		logger:     logger,
	}
}

// Run processes the requests in admission order and returns counters for
// the run summary. A canceled context stops between items, never mid-item
// teardown.
func (w *Worker) Run(ctx context.Context, requests []miner.FetchRequest) Result {
	var res Result
	for _, req := range requests {
		if ctx.Err() != nil {
			w.logger.Info("run canceled, leaving remaining requests",
				zap.Int("remaining", len(requests)-res.PostsFetched-res.Abandoned))
			return res
		}
		post, ok := w.extractWithRetry(ctx, req)
		if !ok {
			res.Abandoned++
			continue
		}
		res.PostsFetched++
		miner.TotalPostsFetched.Inc()
		res.RecordsSaved += w.persist(ctx, post, req)
	}
	return res
}

// extractWithRetry runs up to MaxAttempts extraction attempts inside the
// per-item time budget. Each attempt restarts the full strategy chain.
func (w *Worker) extractWithRetry(ctx context.Context, req miner.FetchRequest) (*miner.RawPost, bool) {
	itemCtx, cancel := context.WithTimeout(ctx, w.cfg.ItemTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		post, err := w.extractor.Extract(itemCtx, req)
		if err == nil {
			return post, true
		}
		lastErr = err
		if !w.retry.ShouldRetry(err, attempt) {
			break
		}
		w.logger.Debug("extraction attempt failed",
			zap.String("url", req.URL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !sleepCtx(itemCtx, w.retry.Backoff(attempt)) {
			break
		}
	}
	miner.TotalExtractFailures.Inc()
	w.logger.Warn("post abandoned",
		zap.String("url", req.URL),
		zap.String("keyword", req.Keyword),
		zap.Error(lastErr),
	)
	return nil, false
}

// persist archives the raw post, classifies it, and writes each surviving
// record to the sinks. Sink errors are logged and skip only the affected
// record.
func (w *Worker) persist(ctx context.Context, post *miner.RawPost, req miner.FetchRequest) int {
	w.archivePost(ctx, post, req)

	saved := 0
	for _, rec := range w.classifier.Process(post, req) {
		if err := w.dataset.Append(ctx, rec); err != nil {
			w.logger.Error("dataset append failed",
				zap.String("url", rec.URL), zap.Error(err))
			continue
		}
		saved++
		miner.TotalRecordsSaved.Inc()
		if w.sheet != nil {
			if err := w.sheet.Push(ctx, rec); err != nil {
				w.logger.Warn("sheet push failed, row stays buffered",
					zap.String("url", rec.URL), zap.Error(err))
			}
		}
	}
	return saved
}

func (w *Worker) archivePost(ctx context.Context, post *miner.RawPost, req miner.FetchRequest) {
	payload, err := json.Marshal(post)
	if err != nil {
		w.logger.Warn("marshal post for archive", zap.Error(err))
		return
	}
	name, err := archive.ObjectName(w.hasher, w.clock.Now(), req.URL, "json")
	if err != nil {
		w.logger.Warn("build archive object name", zap.Error(err))
		return
	}
	if err := w.archive.Save(ctx, name, payload); err != nil {
		w.logger.Warn("archive save failed",
			zap.String("object", name), zap.Error(err))
	}
}

// sleepCtx waits for d or until the context ends, reporting whether the
// full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
