package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/archive"
	"github.com/insightmine/reddit-quote-miner/internal/config"
	"github.com/insightmine/reddit-quote-miner/internal/frontier"
	"github.com/insightmine/reddit-quote-miner/internal/miner"
	"github.com/insightmine/reddit-quote-miner/internal/publish"
)

func TestBuildDatasetProviders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cfg := config.Config{Dataset: config.DatasetConfig{
		Provider: "jsonl",
		Path:     filepath.Join(t.TempDir(), "records.jsonl"),
	}}
	ds, err := buildDataset(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, ds.Close())

	cfg.Dataset.Provider = "bigquery"
	_, err = buildDataset(ctx, cfg, zap.NewNop())
	require.Error(t, err)
}

func TestBuildArchiveProviders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	arc, err := buildArchive(ctx, config.Config{Archive: config.ArchiveConfig{Provider: "noop"}}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, archive.NoOp{}, arc)

	arc, err = buildArchive(ctx, config.Config{Archive: config.ArchiveConfig{
		Provider: "local",
		Dir:      t.TempDir(),
	}}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, arc)

	_, err = buildArchive(ctx, config.Config{Archive: config.ArchiveConfig{Provider: "tape"}}, zap.NewNop())
	require.Error(t, err)
}

func TestBuildPublisherDefaultsToNoOp(t *testing.T) {
	t.Parallel()

	p, err := buildPublisher(context.Background(), config.Config{}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, publish.NoOp{}, p)
}

type fixedDiscoverer struct {
	hits       []miner.SearchHit
	subreddits []string
}

func (f *fixedDiscoverer) Discover(_ context.Context, _, subreddit string, _ int) []miner.SearchHit {
	f.subreddits = append(f.subreddits, subreddit)
	return f.hits
}

func TestDiscoverEmptySubredditsSearchesUnrestricted(t *testing.T) {
	t.Parallel()

	disc := &fixedDiscoverer{hits: []miner.SearchHit{
		{URL: "https://www.reddit.com/r/chile/comments/a/x/", Title: "t"},
	}}
	a := &App{
		cfg: config.Config{
			Search: config.SearchConfig{
				Keywords:           []string{"kw"},
				MaxPostsPerKeyword: 10,
			},
		},
		logger:     zap.NewNop(),
		discoverer: disc,
	}

	front := frontier.New(a.cfg.Search.MaxPostsPerKeyword)
	searches := a.discover(context.Background(), front)

	// No configured communities means a single unrestricted search per
	// keyword, not one per known community.
	require.Equal(t, 1, searches)
	require.Equal(t, []string{""}, disc.subreddits)
	require.Equal(t, 1, front.Size())
}

func TestDiscoverSearchesEachConfiguredPair(t *testing.T) {
	t.Parallel()

	disc := &fixedDiscoverer{}
	a := &App{
		cfg: config.Config{
			Search: config.SearchConfig{
				Keywords:   []string{"kw1", "kw2"},
				Subreddits: []string{"chile", "mexico"},
			},
		},
		logger:     zap.NewNop(),
		discoverer: disc,
	}

	require.Equal(t, 4, a.discover(context.Background(), frontier.New(10)))
	require.Equal(t, []string{"chile", "mexico", "chile", "mexico"}, disc.subreddits)
}

func TestDiscoverStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	a := &App{
		cfg: config.Config{
			Search: config.SearchConfig{
				Keywords:   []string{"kw"},
				Subreddits: []string{"chile"},
			},
		},
		logger:     zap.NewNop(),
		discoverer: &fixedDiscoverer{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Zero(t, a.discover(ctx, frontier.New(10)))
}

func TestFlushWithoutSheetIsNoOp(t *testing.T) {
	t.Parallel()

	a := &App{logger: zap.NewNop()}
	a.Flush(context.Background())
}
