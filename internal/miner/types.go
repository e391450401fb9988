// Package miner defines the core types and signal utilities shared by the
// discovery, acquisition, and classification stages of the pipeline.
package miner

// SearchHit is a lightweight result produced by a discovery strategy.
// It carries no identity beyond its canonical URL.
type SearchHit struct {
	URL       string
	Title     string
	Score     int
	Subreddit string
}

// FetchRequest captures everything needed to fetch one post, plus the
// search-side metadata used for attribution when detail extraction cannot
// re-derive it. A given canonical URL is enqueued at most once per run.
type FetchRequest struct {
	URL         string // canonical form, origin+path only
	Keyword     string
	Subreddit   string
	SearchTitle string
}

// RawComment is one comment fragment as extracted, before any parsing of
// score or classification. Ordering is document/tree order.
type RawComment struct {
	Text      string
	ScoreText string
	Author    string
	CreatedAt string
	Permalink string
	ID        string
}

// RawPost is the uniform output of both detail extraction strategies.
// Score and timestamps stay raw text; numeric parsing happens once, in the
// classifier.
type RawPost struct {
	Title     string
	Body      string
	Subreddit string
	Author    string
	CreatedAt string
	ScoreText string
	Comments  []RawComment
}

// QuoteType identifies where inside a post a candidate came from.
type QuoteType string

// Candidate origins.
const (
	QuotePostTitle QuoteType = "post_title"
	QuotePostBody  QuoteType = "post_body"
	QuoteComment   QuoteType = "comment"
)

// Candidate is one unit of text eligible for classification.
type Candidate struct {
	QuoteType QuoteType
	Text      string
	Score     int
	CreatedAt string
	Author    string
	URL       string
}

// Record is the immutable output unit persisted to every sink. QuoteEN and
// PostTitleEN are reserved for translation and always empty.
type Record struct {
	Country     string  `json:"country"`
	Topic       string  `json:"topic"`
	QuoteType   string  `json:"quote_type"`
	Quote       string  `json:"quote"`
	QuoteEN     string  `json:"quote_en"`
	PostTitle   string  `json:"post_title"`
	PostTitleEN string  `json:"post_title_en"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	URL         string  `json:"url"`
	CreatedAt   string  `json:"created_at"`
	Lang        string  `json:"lang"`
	Author      *string `json:"author"`
}

// SheetHeader is the fixed column order for the spreadsheet sink.
var SheetHeader = []string{
	"country",
	"topic",
	"quote_type",
	"quote",
	"quote_en",
	"post_title",
	"post_title_en",
	"subreddit",
	"score",
	"url",
	"created_at",
	"lang",
	"author",
}

// SheetRow renders the record in SheetHeader order.
func (r Record) SheetRow() []any {
	return []any{
		r.Country,
		r.Topic,
		r.QuoteType,
		r.Quote,
		r.QuoteEN,
		r.PostTitle,
		r.PostTitleEN,
		r.Subreddit,
		r.Score,
		r.URL,
		r.CreatedAt,
		r.Lang,
		r.Author,
	}
}
