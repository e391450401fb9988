// Package classify turns raw extracted fragments into filtered output
// records: length/score gates, keyword attribution, language detection,
// country inference, and final assembly.
package classify

import (
	"net/url"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// Config controls the classification filters.
type Config struct {
	Keywords      []string
	Countries     []string
	MinScore      int
	MinTextLength int
}

// Classifier applies the candidate filter pipeline.
type Classifier struct {
	matchers      []miner.KeywordMatcher
	countries     map[string]struct{}
	minScore      int
	minTextLength int
	logger        *zap.Logger
}

// New builds a classifier. An empty country list means the default allowlist.
func New(cfg Config, logger *zap.Logger) *Classifier {
	countries := cfg.Countries
	if len(countries) == 0 {
		countries = miner.DefaultCountries
	}
	allow := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		allow[c] = struct{}{}
	}
	return &Classifier{
		matchers:      miner.NewKeywordMatchers(cfg.Keywords),
		countries:     allow,
		minScore:      cfg.MinScore,
		minTextLength: cfg.MinTextLength,
		logger:        logger,
	}
}

// PostContext carries the post-level fields every record repeats.
type PostContext struct {
	Title     string
	Subreddit string
	URL       string
}

// Process expands one extracted post into candidates and classifies each,
// returning the records that survive the filters.
func (c *Classifier) Process(post *miner.RawPost, req miner.FetchRequest) []miner.Record {
	pctx := PostContext{
		Title:     firstNonEmpty(post.Title, miner.NormalizeText(req.SearchTitle)),
		Subreddit: firstNonEmpty(post.Subreddit, req.Subreddit),
		URL:       req.URL,
	}

	candidates := BuildCandidates(post, pctx)
	records := make([]miner.Record, 0, len(candidates))
	for _, cand := range candidates {
		rec, ok := c.Classify(cand, pctx, req.Keyword)
		if !ok {
			miner.TotalCandidatesFiltered.Inc()
			continue
		}
		records = append(records, rec)
	}
	c.logger.Debug("post classified",
		zap.String("url", req.URL),
		zap.Int("candidates", len(candidates)),
		zap.Int("records", len(records)),
	)
	return records
}

// BuildCandidates derives one candidate per non-empty post title, post body,
// and comment. Comment URLs use the permalink when present, a synthetic
// fragment when only an id exists, and the post URL otherwise.
func BuildCandidates(post *miner.RawPost, pctx PostContext) []miner.Candidate {
	postScore := miner.ParseScore(post.ScoreText)
	author := miner.NormalizeText(post.Author)

	var candidates []miner.Candidate
	if pctx.Title != "" {
		candidates = append(candidates, miner.Candidate{
			QuoteType: miner.QuotePostTitle,
			Text:      pctx.Title,
			Score:     postScore,
			CreatedAt: post.CreatedAt,
			Author:    author,
			URL:       pctx.URL,
		})
	}
	if post.Body != "" {
		candidates = append(candidates, miner.Candidate{
			QuoteType: miner.QuotePostBody,
			Text:      post.Body,
			Score:     postScore,
			CreatedAt: post.CreatedAt,
			Author:    author,
			URL:       pctx.URL,
		})
	}
	for _, comment := range post.Comments {
		createdAt := comment.CreatedAt
		if createdAt == "" {
			createdAt = post.CreatedAt
		}
		candidates = append(candidates, miner.Candidate{
			QuoteType: miner.QuoteComment,
			Text:      comment.Text,
			Score:     miner.ParseScore(comment.ScoreText),
			CreatedAt: createdAt,
			Author:    miner.NormalizeText(comment.Author),
			URL:       commentURL(comment, pctx.URL),
		})
	}
	return candidates
}

// Classify applies the filters to one candidate. searchKeyword is the
// attribution fallback when no configured keyword appears in the text; a
// candidate is therefore never unattributed.
func (c *Classifier) Classify(cand miner.Candidate, pctx PostContext, searchKeyword string) (miner.Record, bool) {
	if cand.Text == "" || utf8.RuneCountInString(cand.Text) < c.minTextLength {
		return miner.Record{}, false
	}
	if cand.Score < c.minScore {
		return miner.Record{}, false
	}

	topic := miner.MatchKeyword(cand.Text, c.matchers)
	if topic == "" {
		topic = searchKeyword
	}

	lang := miner.DetectLanguage(cand.Text)
	country := miner.InferCountry(pctx.Subreddit, lang)
	if country == miner.CountryOther {
		return miner.Record{}, false
	}
	if _, allowed := c.countries[country]; !allowed {
		return miner.Record{}, false
	}

	// Empty authors stay null in the row rather than an empty string.
	var author *string
	if cand.Author != "" {
		author = &cand.Author
	}

	return miner.Record{
		Country:   country,
		Topic:     topic,
		QuoteType: string(cand.QuoteType),
		Quote:     cand.Text,
		PostTitle: pctx.Title,
		Subreddit: pctx.Subreddit,
		Score:     cand.Score,
		URL:       cand.URL,
		CreatedAt: cand.CreatedAt,
		Lang:      lang,
		Author:    author,
	}, true
}

func commentURL(comment miner.RawComment, postURL string) string {
	switch {
	case comment.Permalink != "":
		return resolveAgainst(postURL, comment.Permalink)
	case comment.ID != "":
		return postURL + "#" + comment.ID
	default:
		return postURL
	}
}

func resolveAgainst(base, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return base
	}
	if refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return base
	}
	return baseURL.ResolveReference(refURL).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
