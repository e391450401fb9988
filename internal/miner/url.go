package miner

import (
	"net/url"
	"regexp"
	"strings"
)

var subredditPath = regexp.MustCompile(`/r/([^/]+)`)

// CanonicalizeURL reduces a URL to its dedup identity: origin plus path, no
// query string, no fragment. Unparsable input is returned unchanged so it can
// still serve as a (degenerate) identity key.
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.Scheme + "://" + u.Host + u.EscapedPath()
}

// SubredditFromURL pulls the community name out of a permalink-shaped path,
// lowercased, or "" when the path carries none.
func SubredditFromURL(raw string) string {
	match := subredditPath.FindStringSubmatch(raw)
	if match == nil {
		return ""
	}
	return strings.ToLower(match[1])
}
