package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

type stubFetcher struct {
	byPrefix map[string]string
	err      error
	calls    []string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string, headers http.Header) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	if headers.Get("User-Agent") == "" {
		return nil, errors.New("missing user agent")
	}
	if f.err != nil {
		return nil, f.err
	}
	for prefix, body := range f.byPrefix {
		if strings.HasPrefix(rawURL, prefix) {
			return []byte(body), nil
		}
	}
	return nil, errors.New("no stub for " + rawURL)
}

const searchPayload = `{
  "data": {
    "children": [
      {"data": {"permalink": "/r/chile/comments/abc/titulo/", "title": "Primer post", "score": 12, "subreddit": "Chile"}},
      {"data": {"permalink": "", "title": "sin permalink"}},
      {"data": {"permalink": "/r/chile/comments/def/otro/", "title": "Segundo post", "score": 3}}
    ]
  }
}`

func TestJSONSearchDiscover(t *testing.T) {
	fetcher := &stubFetcher{byPrefix: map[string]string{"https://www.reddit.com": searchPayload}}
	s := NewJSONSearch(fetcher, zap.NewNop(), "")

	hits := s.Discover(context.Background(), "clases", "chile", 10)
	require.Len(t, hits, 2)
	require.Equal(t, "https://www.reddit.com/r/chile/comments/abc/titulo/", hits[0].URL)
	require.Equal(t, "Primer post", hits[0].Title)
	require.Equal(t, 12, hits[0].Score)
	require.Equal(t, "chile", hits[0].Subreddit, "subreddit is lowercased")
	require.Equal(t, "chile", hits[1].Subreddit, "missing subreddit falls back to the search pair")

	require.Contains(t, fetcher.calls[0], "restrict_sr=1")
	require.Contains(t, fetcher.calls[0], "limit=25", "limit is clamped up to 25")
}

func TestJSONSearchAbsorbsFailures(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("boom")}
		s := NewJSONSearch(fetcher, zap.NewNop(), "")
		require.Empty(t, s.Discover(context.Background(), "kw", "", 50))
	})
	t.Run("malformed payload", func(t *testing.T) {
		fetcher := &stubFetcher{byPrefix: map[string]string{"https://www.reddit.com": "<html>not json</html>"}}
		s := NewJSONSearch(fetcher, zap.NewNop(), "")
		require.Empty(t, s.Discover(context.Background(), "kw", "", 50))
	})
}

func TestHTMLSearchDiscover(t *testing.T) {
	var links strings.Builder
	links.WriteString(`<a href="/r/Chile/comments/abc/post/?ref=search">Un título</a>`)
	links.WriteString(`<a href="/r/Chile/comments/abc/post/">Un título duplicado</a>`)
	links.WriteString(`<a href="https://old.reddit.com/r/santiago/comments/def/otro/">Otro</a>`)
	links.WriteString(`<a href="/r/chile/wiki/index">fuera de alcance</a>`)
	links.WriteString(`<a href="/r/chile/comments/ghi/tres/"></a>`)
	page := "<html><body>" + links.String() + "</body></html>"

	fetcher := &stubFetcher{byPrefix: map[string]string{"https://old.reddit.com": page}}
	s := NewHTMLSearch(fetcher, zap.NewNop(), "")

	hits := s.Discover(context.Background(), "clases", "chile", 0)
	require.Len(t, hits, 2)
	require.Equal(t, "https://old.reddit.com/r/Chile/comments/abc/post/", hits[0].URL, "query stripped, first duplicate wins")
	require.Equal(t, "chile", hits[0].Subreddit)
	require.Zero(t, hits[0].Score, "rendered surface exposes no vote counts")
	require.Equal(t, "santiago", hits[1].Subreddit, "subreddit inferred from path")
}

func TestHTMLSearchCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, `<a href="/r/chile/comments/p%d/x/">post %d</a>`, i, i)
	}
	fetcher := &stubFetcher{byPrefix: map[string]string{"https://old.reddit.com": b.String()}}
	s := NewHTMLSearch(fetcher, zap.NewNop(), "")

	hits := s.Discover(context.Background(), "kw", "chile", 0)
	require.Len(t, hits, maxHTMLHits)
}

type fixedDiscoverer struct {
	hits  []miner.SearchHit
	calls int
}

func (d *fixedDiscoverer) Discover(context.Context, string, string, int) []miner.SearchHit {
	d.calls++
	return d.hits
}

func TestChainFallsBackOnEmptyPrimary(t *testing.T) {
	primary := &fixedDiscoverer{}
	secondary := &fixedDiscoverer{hits: []miner.SearchHit{{URL: "https://x/r/chile/comments/a/b"}}}
	chain := NewChain(zap.NewNop(), primary, secondary)

	hits := chain.Discover(context.Background(), "kw", "chile", 25)
	require.Len(t, hits, 1)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, secondary.calls)
}

func TestChainPrimaryWins(t *testing.T) {
	primary := &fixedDiscoverer{hits: []miner.SearchHit{{URL: "https://x/r/chile/comments/a/b"}}}
	secondary := &fixedDiscoverer{}
	chain := NewChain(zap.NewNop(), primary, secondary)

	require.Len(t, chain.Discover(context.Background(), "kw", "", 25), 1)
	require.Zero(t, secondary.calls)
}

func TestChainBothEmpty(t *testing.T) {
	chain := NewChain(zap.NewNop(), &fixedDiscoverer{}, &fixedDiscoverer{})
	require.Empty(t, chain.Discover(context.Background(), "kw", "", 25))
}
