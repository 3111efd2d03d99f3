package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	EngineHTTP  = "http"
	EngineColly = "colly"

	DefaultUserAgent = "Mozilla/5.0 (compatible; GoHttpClient/1.0)"
	DefaultTimeout   = 15 * time.Second

	maxBodySize = 10 << 20
)

var ErrUnknownEngine = errors.New("unknown fetch engine")

// Fetcher retrieves the raw markup of one page.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// FetchError is returned when a page could not be retrieved. StatusCode is zero for
// transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status code error: [%d] %s", e.URL, e.StatusCode, e.Status)
	}

	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetcher builds the fetcher for the configured engine.
func NewFetcher(log *slog.Logger, engine string, timeout time.Duration, userAgent string) (Fetcher, error) {
	switch engine {
	case EngineHTTP, "":
		return NewHTTPFetcher(log, timeout, userAgent), nil
	case EngineColly:
		return NewCollyFetcher(log, timeout, userAgent), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// HTTPFetcher performs a single GET per page with net/http. There are no retries.
type HTTPFetcher struct {
	log       *slog.Logger
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(log *slog.Logger, timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPFetcher{log: log, client: &http.Client{Timeout: timeout}, userAgent: userAgent}
}

// Fetch returns the response body of target as text.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (string, error) {
	resp, err := f.getHTMLResponse(ctx, target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &FetchError{URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return string(body), nil
}

func (f *HTTPFetcher) getHTMLResponse(ctx context.Context, target string) (*http.Response, error) {
	reqURL, err := url.Parse(target)
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("failed to parse destination URL %s: %w", target, err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("failed to create new request %s: %w", reqURL, err)}
	}

	req.Header.Add("User-Agent", f.userAgent)

	f.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL, "header", req.Header)

	res, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, &FetchError{URL: target, StatusCode: res.StatusCode, Status: res.Status}
	}

	f.log.InfoContext(ctx, "Successfully received http response", "URL", target, "status code", res.StatusCode)

	return res, nil
}
