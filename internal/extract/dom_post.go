package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// DOMExtractor reads the post from fixed structural locations of the
// rendered page. It is the fallback when the structured payload is
// unavailable or reshaped.
type DOMExtractor struct {
	renderer miner.Renderer
	logger   *zap.Logger
}

// NewDOMExtractor builds the rendered-page strategy.
func NewDOMExtractor(renderer miner.Renderer, logger *zap.Logger) *DOMExtractor {
	return &DOMExtractor{renderer: renderer, logger: logger}
}

// Extract navigates the post page and parses the DOM.
func (e *DOMExtractor) Extract(ctx context.Context, req miner.FetchRequest) (*miner.RawPost, error) {
	html, err := e.renderer.Render(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("render post page: %w", err)
	}
	return ParsePostDocument(html)
}

// ParsePostDocument extracts the RawPost shape from rendered post-page HTML.
// The rendered page presents comments as a flat pre-ordered sequence, so no
// nesting is reconstructed; the first MaxComments blocks are taken as-is.
func ParsePostDocument(html []byte) (*miner.RawPost, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse post document: %w", err)
	}

	article := doc.Find("article").First()
	if article.Length() == 0 {
		article = doc.Find(`[data-test-id="post-content"]`).First()
	}

	title := miner.NormalizeText(doc.Find("h1").First().Text())
	if title == "" {
		title = miner.NormalizeText(article.Find("h1,h2,h3").First().Text())
	}

	body := miner.NormalizeText(article.Find(`[data-click-id="text"]`).First().Text())
	if body == "" {
		body = miner.NormalizeText(article.Find(`[data-test-id="post-content"]`).First().Text())
	}

	subLink := article.Find(`a[href*="/r/"]`).First()
	subreddit := strings.TrimPrefix(miner.NormalizeText(subLink.Text()), "r/")
	if subreddit == "" {
		subreddit = miner.SubredditFromURL(subLink.AttrOr("href", ""))
	}

	author := miner.NormalizeText(article.Find(`a[data-click-id="user"]`).First().Text())
	createdAt := article.Find("time").First().AttrOr("datetime", "")

	// The vote widget has no stable text node of its own; take its parent's
	// text (or the whole article) and let score parsing find the number.
	scoreSource := article.Find(`[id^="vote-arrows"]`).First().Parent()
	if scoreSource.Length() == 0 {
		scoreSource = article
	}
	scoreText := scoreSource.Text()

	var comments []miner.RawComment
	doc.Find(`div[data-testid="comment"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		c := commentFromSelection(sel)
		if c.Text != "" {
			comments = append(comments, c)
		}
		return len(comments) < MaxComments
	})

	return &miner.RawPost{
		Title:     title,
		Body:      body,
		Subreddit: subreddit,
		Author:    author,
		CreatedAt: createdAt,
		ScoreText: scoreText,
		Comments:  comments,
	}, nil
}

func commentFromSelection(sel *goquery.Selection) miner.RawComment {
	scoreSource := sel.Find(`[data-testid="comment-subtitle"]`).First()
	scoreText := scoreSource.Text()
	if scoreSource.Length() == 0 {
		scoreText = sel.Text()
	}

	permalink := sel.Find(`a[data-testid="comment_permalink_button"]`).First().AttrOr("href", "")
	if permalink == "" {
		permalink = sel.Find(`a[href*="/comment/"]`).First().AttrOr("href", "")
	}

	return miner.RawComment{
		Text:      miner.NormalizeText(sel.Text()),
		ScoreText: scoreText,
		Author:    miner.NormalizeText(sel.Find(`a[data-testid="comment_author_link"]`).First().Text()),
		CreatedAt: sel.Find("time").First().AttrOr("datetime", ""),
		Permalink: permalink,
		ID:        sel.AttrOr("id", ""),
	}
}
