// Package app wires the pipeline together: it builds every service from
// the loaded configuration, runs one full mining pass, and tears the
// services down again. It is the only package that knows about provider
// selection.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/archive"
	"github.com/insightmine/reddit-quote-miner/internal/classify"
	"github.com/insightmine/reddit-quote-miner/internal/clock/system"
	"github.com/insightmine/reddit-quote-miner/internal/config"
	"github.com/insightmine/reddit-quote-miner/internal/discovery"
	"github.com/insightmine/reddit-quote-miner/internal/extract"
	"github.com/insightmine/reddit-quote-miner/internal/fetch"
	"github.com/insightmine/reddit-quote-miner/internal/frontier"
	"github.com/insightmine/reddit-quote-miner/internal/hash/sha256"
	"github.com/insightmine/reddit-quote-miner/internal/id/uuid"
	"github.com/insightmine/reddit-quote-miner/internal/miner"
	"github.com/insightmine/reddit-quote-miner/internal/publish"
	"github.com/insightmine/reddit-quote-miner/internal/sink"
	"github.com/insightmine/reddit-quote-miner/internal/worker"
)

// App holds the long-lived services for one mining run.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	renderer   miner.Renderer
	discoverer miner.Discoverer
	extractor  miner.Extractor
	classifier *classify.Classifier
	dataset    miner.DatasetSink
	sheet      *sink.SheetsSink
	archive    miner.Archive
	publisher  miner.Publisher
	clock      miner.Clock
	runID      string
	server     *http.Server
}

// New builds every service up front so a bad configuration fails before
// the first upstream request.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	fetcher, err := fetch.NewCollyFetcher(fetch.Config{
		Timeout:  cfg.FetchTimeout(),
		ProxyURL: cfg.Fetch.ProxyURL,
		Pace:     cfg.Pace(),
	})
	if err != nil {
		return nil, fmt.Errorf("build fetcher: %w", err)
	}

	// The headless flag only controls browser visibility. The rendered
	// fallback is always available.
	renderer, err := fetch.NewChromedpRenderer(fetch.RendererConfig{
		Headless:   cfg.Render.Headless,
		NavTimeout: cfg.NavTimeout(),
		ProxyURL:   cfg.Fetch.ProxyURL,
		Pace:       cfg.Pace(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}
	extractors := []miner.Extractor{
		extract.NewStructuredExtractor(fetcher, logger, ""),
		extract.NewDOMExtractor(renderer, logger),
	}

	dataset, err := buildDataset(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var sheet *sink.SheetsSink
	if cfg.Sheets.SpreadsheetID != "" {
		sheet, err = sink.NewSheetsSink(ctx, sink.SheetsConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			SheetName:       cfg.Sheets.SheetName,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			BatchSize:       cfg.Sheets.BatchSize,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build sheets sink: %w", err)
		}
		logger.Info("sheet mirroring enabled",
			zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
	}

	arc, err := buildArchive(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		logger: logger.With(zap.String("run_id", runID)),
		discoverer: discovery.NewChain(logger,
			discovery.NewJSONSearch(fetcher, logger, ""),
			discovery.NewHTMLSearch(fetcher, logger, ""),
		),
		renderer:  renderer,
		extractor: extract.NewChain(logger, extractors...),
		classifier: classify.New(classify.Config{
			Keywords:      cfg.Search.Keywords,
			Countries:     cfg.Filters.Countries,
			MinScore:      cfg.Filters.MinScore,
			MinTextLength: cfg.Filters.MinTextLength,
		}, logger),
		dataset:   dataset,
		sheet:     sheet,
		archive:   arc,
		publisher: publisher,
		clock:     system.New(),
		runID:     runID,
	}, nil
}

func buildDataset(ctx context.Context, cfg config.Config, logger *zap.Logger) (miner.DatasetSink, error) {
	switch cfg.Dataset.Provider {
	case "jsonl":
		ds, err := sink.NewJSONLSink(cfg.Dataset.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("build jsonl sink: %w", err)
		}
		return ds, nil
	case "postgres":
		ds, err := sink.NewPostgresSink(ctx, sink.PostgresConfig{
			DSN:   cfg.Dataset.DSN,
			Table: cfg.Dataset.Table,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build postgres sink: %w", err)
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("unknown dataset provider %q", cfg.Dataset.Provider)
	}
}

func buildArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (miner.Archive, error) {
	switch cfg.Archive.Provider {
	case "noop":
		return archive.NoOp{}, nil
	case "local":
		arc, err := archive.NewLocal(cfg.Archive.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("build local archive: %w", err)
		}
		return arc, nil
	case "gcs":
		arc, err := archive.NewGCS(ctx, cfg.Archive.Bucket, logger)
		if err != nil {
			return nil, fmt.Errorf("build gcs archive: %w", err)
		}
		return arc, nil
	default:
		return nil, fmt.Errorf("unknown archive provider %q", cfg.Archive.Provider)
	}
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (miner.Publisher, error) {
	if cfg.Publish.ProjectID == "" || cfg.Publish.TopicName == "" {
		return publish.NoOp{}, nil
	}
	p, err := publish.NewPubSub(ctx, cfg.Publish.ProjectID, cfg.Publish.TopicName, logger)
	if err != nil {
		return nil, fmt.Errorf("build publisher: %w", err)
	}
	return p, nil
}

// Run executes one full mining pass: discovery, acquisition, and the final
// flush. A canceled context aborts between posts and still flushes.
func (a *App) Run(ctx context.Context) error {
	a.startServer()
	stopTicker := a.startCheckpointTicker(ctx)
	defer stopTicker()

	startedAt := a.clock.Now()
	a.logger.Info("run starting",
		zap.Strings("keywords", a.cfg.Search.Keywords),
		zap.Int("max_posts_per_keyword", a.cfg.Search.MaxPostsPerKeyword),
	)

	front := frontier.New(a.cfg.Search.MaxPostsPerKeyword)
	searches := a.discover(ctx, front)

	a.logger.Info("discovery finished",
		zap.Int("searches", searches),
		zap.Int("admitted", front.Size()),
	)

	w := worker.New(
		a.extractor, a.classifier, a.dataset, a.sheetOrNil(), a.archive,
		sha256.New(), a.clock,
		worker.Config{
			MaxAttempts: a.cfg.Worker.MaxAttempts,
			ItemTimeout: a.cfg.ItemTimeout(),
		},
		a.logger,
	)
	res := w.Run(ctx, front.Pending())

	a.Flush(context.WithoutCancel(ctx))

	summary := publish.RunSummary{
		RunID:        a.runID,
		StartedAt:    startedAt.Format(time.RFC3339),
		FinishedAt:   a.clock.Now().Format(time.RFC3339),
		Keywords:     len(a.cfg.Search.Keywords),
		Searches:     searches,
		PostsFetched: res.PostsFetched,
		RecordsSaved: res.RecordsSaved,
		Aborted:      ctx.Err() != nil,
	}
	if err := a.publisher.Publish(context.WithoutCancel(ctx), summary); err != nil {
		a.logger.Warn("publish run summary failed", zap.Error(err))
	}

	a.logger.Info("run finished",
		zap.Int("posts_fetched", res.PostsFetched),
		zap.Int("abandoned", res.Abandoned),
		zap.Int("records_saved", res.RecordsSaved),
		zap.Bool("aborted", summary.Aborted),
	)
	return nil
}

// discover walks every keyword and community pair sequentially and admits
// the hits. Returns the number of searches issued.
func (a *App) discover(ctx context.Context, front *frontier.Frontier) int {
	// An empty community list means one unrestricted search per keyword,
	// not one search per known community.
	subreddits := a.cfg.Search.Subreddits
	if len(subreddits) == 0 {
		subreddits = []string{""}
	}

	searches := 0
	for _, keyword := range a.cfg.Search.Keywords {
		for _, subreddit := range subreddits {
			if ctx.Err() != nil {
				return searches
			}
			searches++
			admitted := 0
			for _, hit := range a.discoverer.Discover(ctx, keyword, subreddit, a.cfg.Search.ResultsPerSearch) {
				if front.Admit(hit, keyword, subreddit) {
					admitted++
				}
			}
			a.logger.Debug("search done",
				zap.String("keyword", keyword),
				zap.String("subreddit", subreddit),
				zap.Int("admitted", admitted),
			)
		}
	}
	return searches
}

func (a *App) sheetOrNil() miner.RowSink {
	if a.sheet == nil {
		return nil
	}
	return a.sheet
}

// Flush drains the buffered sheet rows. Safe to call at any time, from
// checkpoints and from shutdown.
func (a *App) Flush(ctx context.Context) {
	if a.sheet == nil {
		return
	}
	if err := a.sheet.Flush(ctx); err != nil {
		a.logger.Warn("sheet flush failed", zap.Error(err))
	}
}

// startCheckpointTicker periodically flushes buffered rows so a crash
// loses at most one interval of output.
func (a *App) startCheckpointTicker(ctx context.Context) func() {
	if a.sheet == nil || a.cfg.FlushInterval() <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	ticker := time.NewTicker(a.cfg.FlushInterval())
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Flush(context.WithoutCancel(ctx))
			}
		}
	}()
	return func() { close(done) }
}

// startServer exposes Prometheus metrics and a liveness probe.
func (a *App) startServer() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("metrics server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

// Close tears down every service. Call after Run returns.
func (a *App) Close(ctx context.Context) {
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}
	if a.renderer != nil {
		if err := a.renderer.Close(ctx); err != nil {
			a.logger.Warn("close renderer", zap.Error(err))
		}
	}
	if err := a.dataset.Close(); err != nil {
		a.logger.Warn("close dataset", zap.Error(err))
	}
	if err := a.archive.Close(); err != nil {
		a.logger.Warn("close archive", zap.Error(err))
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("close publisher", zap.Error(err))
	}
	_ = a.logger.Sync()
}
