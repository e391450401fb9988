package miner

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	scorePattern  = regexp.MustCompile(`-?\d+(\.\d+)?k?`)
	scoreNoise    = strings.NewReplacer(",", "", "•", "")
)

// NormalizeText collapses whitespace runs into single spaces and trims the
// result.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// ParseScore extracts a vote count from free text. Thousands separators and
// bullet characters are stripped, the first signed decimal number wins, and a
// trailing "k" multiplies by 1000. Unparsable input yields 0.
func ParseScore(text string) int {
	if text == "" {
		return 0
	}
	normalized := strings.ToLower(scoreNoise.Replace(text))
	match := scorePattern.FindString(normalized)
	if match == "" {
		return 0
	}
	factor := 1.0
	if strings.HasSuffix(match, "k") {
		match = strings.TrimSuffix(match, "k")
		factor = 1000
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(value * factor))
}

// KeywordMatcher pairs a configured keyword with its lowercase form so
// candidate texts are scanned without repeated lowering.
type KeywordMatcher struct {
	Original string
	lower    string
}

// NewKeywordMatchers builds matchers in configured order, skipping blanks.
func NewKeywordMatchers(keywords []string) []KeywordMatcher {
	matchers := make([]KeywordMatcher, 0, len(keywords))
	for _, kw := range keywords {
		lower := strings.ToLower(strings.TrimSpace(kw))
		if lower == "" {
			continue
		}
		matchers = append(matchers, KeywordMatcher{Original: kw, lower: lower})
	}
	return matchers
}

// MatchKeyword returns the first configured keyword contained in text,
// case-insensitively, or "" when none match.
func MatchKeyword(text string, matchers []KeywordMatcher) string {
	if text == "" {
		return ""
	}
	lowerText := strings.ToLower(text)
	for _, m := range matchers {
		if strings.Contains(lowerText, m.lower) {
			return m.Original
		}
	}
	return ""
}
