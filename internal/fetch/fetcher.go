package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// FetchError reports a failed page fetch. StatusCode is zero when the
// request never produced a response (timeout, connection failure).
type FetchError struct {
	URL        string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config holds fetcher configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher retrieves raw HTML for listing pages under a hard per-request
// timeout.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 60 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Fetch retrieves the body of one URL as text. Any non-2xx status, timeout,
// or transport failure returns a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Timeout: isTimeout(err), Err: err}
	}

	f.logger.Debug("fetched page",
		"url", url,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	return string(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
