// Package fetcher retrieves HTML pages within a bounded time and size
// budget.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrFetchFailed wraps every failure mode of the safe fetcher: timeout,
// non-success status, disallowed host.
var ErrFetchFailed = errors.New("fetch failed")

// maxRedirects bounds redirect following per fetch.
const maxRedirects = 10

// Page is a fetched HTML document and the final URL after redirects.
type Page struct {
	HTML     []byte
	FinalURL string
}

// Config bounds the fetcher.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
	// AllowedHosts lists host suffixes the fetcher may contact. Redirect
	// targets are checked too.
	AllowedHosts []string
}

// SafeFetcher retrieves a single page as text. It executes nothing embedded
// in the content and never follows a redirect off the allowed hosts.
type SafeFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	allowedHosts []string
}

// New creates a SafeFetcher with the given bounds.
func New(cfg Config) *SafeFetcher {
	f := &SafeFetcher{
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		allowedHosts: cfg.AllowedHosts,
	}

	f.client = &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: too many redirects", ErrFetchFailed)
			}
			if !f.hostAllowed(req.URL.Hostname()) {
				return fmt.Errorf("%w: redirect to disallowed host %s", ErrFetchFailed, req.URL.Hostname())
			}
			return nil
		},
	}

	return f
}

// Fetch retrieves the page at rawURL, following redirects, and returns the
// HTML together with the final resolved URL.
func (f *SafeFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrFetchFailed, rawURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrFetchFailed, u.Scheme)
	}

	if !f.hostAllowed(u.Hostname()) {
		return nil, fmt.Errorf("%w: disallowed host %s", ErrFetchFailed, u.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetchFailed, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http status %d", ErrFetchFailed, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, f.maxBodyBytes)

	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{HTML: body, FinalURL: finalURL}, nil
}

// hostAllowed reports whether host matches one of the allowed suffixes.
// "www.athletic.net" matches the suffix "athletic.net"; "notathletic.net"
// does not.
func (f *SafeFetcher) hostAllowed(host string) bool {
	h := strings.ToLower(host)
	for _, allowed := range f.allowedHosts {
		a := strings.ToLower(allowed)
		if h == a || strings.HasSuffix(h, "."+a) {
			return true
		}
	}
	return false
}
