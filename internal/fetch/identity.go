// Package fetch implements the two content acquisition paths: direct HTTP
// via Colly and rendered pages via chromedp. Both rotate request identities
// and route through the optional proxy.
package fetch

import (
	"math/rand"
	"net/http"
)

// AcceptLanguage is sent on every upstream request to reduce the chance of
// locale-mismatched search results.
const AcceptLanguage = "es-ES,es;q=0.9,en;q=0.8"

// uaPool is the fixed set of desktop user agents rotated per request.
var uaPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:122.0) Gecko/20100101 Firefox/122.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

// PickUserAgent returns a random entry from the rotation pool.
func PickUserAgent() string {
	return uaPool[rand.Intn(len(uaPool))]
}

// JSONHeaders builds the identity headers for a structured endpoint call.
func JSONHeaders(referer string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", PickUserAgent())
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", AcceptLanguage)
	h.Set("Origin", "https://www.reddit.com")
	if referer != "" {
		h.Set("Referer", referer)
	}
	return h
}

// HTMLHeaders builds the identity headers for a rendered-surface call.
func HTMLHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", PickUserAgent())
	h.Set("Accept", "text/html")
	h.Set("Accept-Language", AcceptLanguage)
	return h
}
