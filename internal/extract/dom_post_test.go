package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

const postPage = `<html><body>
<h1>Recomendaciones de clases</h1>
<article>
  <a href="/r/chile/">r/chile</a>
  <a data-click-id="user" href="/user/pablo">u/pablo</a>
  <time datetime="2023-11-14T22:13:20Z">hace un día</time>
  <div><div id="vote-arrows-t3_abc"></div>1.2k</div>
  <div data-click-id="text">Busco recomendaciones
  para mi hijo</div>
</article>
<div data-testid="comment" id="t1_c1">
  <div data-testid="comment-subtitle">15 points</div>
  <a data-testid="comment_author_link" href="/user/maria">maria</a>
  <time datetime="2023-11-14T22:15:00Z">now</time>
  <a data-testid="comment_permalink_button" href="https://www.reddit.com/r/chile/comments/abc/x/c1/">permalink</a>
  Yo tomé un curso excelente
</div>
<div data-testid="comment" id="t1_c2">
  <a href="/r/chile/comments/abc/x/comment/c2/">link</a>
  segundo comentario
</div>
<div data-testid="comment" id="t1_empty"></div>
</body></html>`

func TestParsePostDocument(t *testing.T) {
	post, err := ParsePostDocument([]byte(postPage))
	require.NoError(t, err)

	require.Equal(t, "Recomendaciones de clases", post.Title)
	require.Equal(t, "Busco recomendaciones para mi hijo", post.Body)
	require.Equal(t, "chile", post.Subreddit)
	require.Equal(t, "u/pablo", post.Author)
	require.Equal(t, "2023-11-14T22:13:20Z", post.CreatedAt)
	require.Equal(t, 1200, miner.ParseScore(post.ScoreText))

	require.Len(t, post.Comments, 2, "empty comment blocks are dropped")
	c1 := post.Comments[0]
	require.Contains(t, c1.Text, "Yo tomé un curso excelente")
	require.Equal(t, 15, miner.ParseScore(c1.ScoreText))
	require.Equal(t, "maria", c1.Author)
	require.Equal(t, "2023-11-14T22:15:00Z", c1.CreatedAt)
	require.Equal(t, "https://www.reddit.com/r/chile/comments/abc/x/c1/", c1.Permalink)
	require.Equal(t, "t1_c1", c1.ID)

	c2 := post.Comments[1]
	require.Equal(t, "/r/chile/comments/abc/x/comment/c2/", c2.Permalink, "generic comment link is the fallback")
}

func TestParsePostDocumentCapsComments(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><article><h1>t</h1></article>")
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&b, `<div data-testid="comment" id="t1_%d">comentario número %d</div>`, i, i)
	}
	b.WriteString("</body></html>")

	post, err := ParsePostDocument([]byte(b.String()))
	require.NoError(t, err)
	require.Len(t, post.Comments, MaxComments)
	require.Equal(t, "t1_0", post.Comments[0].ID, "document order preserved")
}

func TestParsePostDocumentBareDocument(t *testing.T) {
	post, err := ParsePostDocument([]byte("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	require.Empty(t, post.Title)
	require.Empty(t, post.Comments)
}

type fixedExtractor struct {
	post  *miner.RawPost
	err   error
	calls int
}

func (e *fixedExtractor) Extract(context.Context, miner.FetchRequest) (*miner.RawPost, error) {
	e.calls++
	return e.post, e.err
}

func TestChainFallsBackToSecondary(t *testing.T) {
	primary := &fixedExtractor{err: errors.New("shape failure")}
	secondary := &fixedExtractor{post: &miner.RawPost{Title: "from dom"}}
	chain := NewChain(zap.NewNop(), primary, secondary)

	post, err := chain.Extract(context.Background(), miner.FetchRequest{URL: "https://x/r/c/comments/a/b"})
	require.NoError(t, err)
	require.Equal(t, "from dom", post.Title)
	require.Equal(t, 1, primary.calls)
}

func TestChainPrimarySkipsSecondary(t *testing.T) {
	primary := &fixedExtractor{post: &miner.RawPost{Title: "structured"}}
	secondary := &fixedExtractor{}
	chain := NewChain(zap.NewNop(), primary, secondary)

	post, err := chain.Extract(context.Background(), miner.FetchRequest{URL: "https://x/r/c/comments/a/b"})
	require.NoError(t, err)
	require.Equal(t, "structured", post.Title)
	require.Zero(t, secondary.calls)
}

func TestChainAllFail(t *testing.T) {
	chain := NewChain(zap.NewNop(),
		&fixedExtractor{err: errors.New("json down")},
		&fixedExtractor{err: errors.New("dom down")},
	)
	_, err := chain.Extract(context.Background(), miner.FetchRequest{URL: "https://x/r/c/comments/a/b"})
	require.ErrorContains(t, err, "dom down")
}
