package fetch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickUserAgentStaysInPool(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		require.Contains(t, uaPool, PickUserAgent())
	}
}

func TestJSONHeaders(t *testing.T) {
	t.Parallel()

	h := JSONHeaders("https://www.reddit.com/r/chile/search/")
	require.Contains(t, uaPool, h.Get("User-Agent"))
	require.Equal(t, "application/json", h.Get("Accept"))
	require.Equal(t, AcceptLanguage, h.Get("Accept-Language"))
	require.Equal(t, "https://www.reddit.com", h.Get("Origin"))
	require.Equal(t, "https://www.reddit.com/r/chile/search/", h.Get("Referer"))

	require.Empty(t, JSONHeaders("").Get("Referer"))
}

func TestHTMLHeaders(t *testing.T) {
	t.Parallel()

	h := HTMLHeaders()
	require.Equal(t, "text/html", h.Get("Accept"))
	require.Equal(t, AcceptLanguage, h.Get("Accept-Language"))
	require.NotEmpty(t, h.Get("User-Agent"))
}
