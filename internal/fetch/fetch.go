package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"feedpulse/internal/logger"
	"feedpulse/internal/retry"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	acceptHeader = "application/rss+xml, application/xml, application/atom+xml, application/json, text/xml"
)

// FetchError wraps a transport failure or a retryable server status.
// Status is zero for network and timeout failures.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configures the fetcher. Zero values get the reference defaults:
// 15s timeout, 3 retries, fixed 1s delay between attempts.
type Options struct {
	Timeout  time.Duration
	Retries  int
	Delay    time.Duration
	Insecure bool // skip TLS certificate verification; off unless asked for
}

// Fetcher retrieves raw feed documents over HTTP(S). The underlying
// transport keeps connections alive across repeated fetches to a host.
type Fetcher struct {
	client *http.Client
	opts   Options
}

func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Delay <= 0 {
		opts.Delay = 1 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.Insecure {
		// Some upstream feeds serve broken certificate chains. Verification
		// stays on by default; this knob is an explicit operator decision.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		logger.Warn("TLS certificate verification disabled for feed fetches")
	}

	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout, Transport: transport},
		opts:   opts,
	}
}

// Fetch retrieves the raw document at url. Network failures and statuses
// of 500 and above are retried until the budget runs out; any status
// below 500 counts as a reachable feed and its body is handed to the
// caller, who decides what a 404 body means.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	cfg := retry.Config{Attempts: f.opts.Retries + 1, Delay: f.opts.Delay}
	err := retry.Do(ctx, cfg, func() error {
		b, err := f.fetchOnce(ctx, url)
		if err != nil {
			logger.Debug("fetch attempt failed", "url", url, "err", err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("server error")}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return b, nil
}
