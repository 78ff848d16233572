// Package research grounds research queries that are web addresses by
// downloading the page and extracting its readable text.
package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/MrWong99/salespractice/internal/prompt"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 2 << 20
	userAgent       = "salespractice-research/1.0"
)

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("research: no readable content")

// Fetcher downloads and extracts articles. It is safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxBytes caps how much of the response body is read. Default: 2 MiB.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// NewFetcher returns a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		maxBytes: defaultMaxBytes,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// IsURL reports whether q is an absolute http or https address.
func IsURL(q string) bool {
	u, err := url.Parse(strings.TrimSpace(q))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads rawURL and extracts its readable text. Non-200 responses
// are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*prompt.Article, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("research: parse url %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("research: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("research: fetch %s: %w", parsed.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("research: fetch %s: HTTP %d", parsed.Redacted(), resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, f.maxBytes), parsed)
	if err != nil {
		return nil, fmt.Errorf("research: extract %s: %w", parsed.Redacted(), err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("%w at %s", ErrNoContent, parsed.Redacted())
	}
	return &prompt.Article{
		URL:      parsed.String(),
		Title:    strings.TrimSpace(article.Title),
		SiteName: strings.TrimSpace(article.SiteName),
		Text:     text,
	}, nil
}
