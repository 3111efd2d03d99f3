package parser

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher retrieves pages through a colly collector. A fresh collector is built per call
// so the visited-URL set never suppresses a later run.
type CollyFetcher struct {
	log       *slog.Logger
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

func NewCollyFetcher(log *slog.Logger, timeout time.Duration, userAgent string) *CollyFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &CollyFetcher{log: log, timeout: timeout, userAgent: userAgent}
}

// Fetch returns the response body of target as text.
func (f *CollyFetcher) Fetch(ctx context.Context, target string) (string, error) {
	collector := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(f.timeout)
	if f.transport != nil {
		collector.WithTransport(f.transport)
	}

	var (
		body   []byte
		status int
	)
	collector.OnRequest(func(r *colly.Request) {
		f.log.DebugContext(ctx, "Visiting", "URL", r.URL.String())
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := collector.Visit(target); err != nil {
		fetchErr := &FetchError{URL: target, Err: err}
		if status != 0 && status != http.StatusOK {
			fetchErr.StatusCode = status
			fetchErr.Status = http.StatusText(status)
		}
		return "", fetchErr
	}

	if status != http.StatusOK {
		return "", &FetchError{URL: target, StatusCode: status, Status: http.StatusText(status)}
	}

	f.log.InfoContext(ctx, "Successfully received http response", "URL", target, "status code", status)

	return string(body), nil
}
