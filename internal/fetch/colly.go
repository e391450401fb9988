package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// Config controls the direct HTTP fetcher.
type Config struct {
	Timeout  time.Duration
	ProxyURL string
	// Pace is the minimum interval between upstream requests. Zero disables
	// pacing.
	Pace time.Duration
}

// CollyFetcher performs single GETs via a Colly collector with connection
// pooling and optional proxy routing.
type CollyFetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	limiter       *rate.Limiter
}

// NewCollyFetcher constructs a configured fetcher.
func NewCollyFetcher(cfg Config) (*CollyFetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := colly.NewCollector(colly.Async(false))
	base.IgnoreRobotsTxt = true
	base.AllowURLRevisit = true
	base.WithTransport(newHTTPTransport())
	base.SetRequestTimeout(cfg.Timeout)
	if cfg.ProxyURL != "" {
		if err := base.SetProxy(cfg.ProxyURL); err != nil {
			return nil, fmt.Errorf("set proxy: %w", err)
		}
	}

	var limiter *rate.Limiter
	if cfg.Pace > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Pace), 1)
	}

	return &CollyFetcher{
		cfg:           cfg,
		baseCollector: base,
		limiter:       limiter,
	}, nil
}

// Fetch executes one HTTP GET and returns the response body. Non-2xx
// responses surface as errors from the collector.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string, headers http.Header) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch pacing: %w", err)
		}
	}

	collector := f.baseCollector.Clone()

	var (
		body     []byte
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		for key, values := range headers {
			for _, v := range values {
				r.Headers.Set(key, v)
			}
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", rawURL, err)
		}
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, fetchErr)
	}
	if body == nil {
		return nil, errors.New("fetch produced no response")
	}
	return body, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
