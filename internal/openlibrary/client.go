// Package openlibrary provides a client for the OpenLibrary search and works
// API. Every failure is translated into the closed result.Kind taxonomy at
// this boundary; callers never see transport errors.
package openlibrary

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/bookpedia/internal/ratelimit"
)

const (
	defaultBaseURL      = "https://openlibrary.org"
	defaultCoverBaseURL = "https://covers.openlibrary.org"
	defaultTimeout      = 20 * time.Second
	// OpenLibrary asks for no more than 1 request per second.
	defaultRatePerSecond = 1

	// searchFields is the fixed field projection requested on every search.
	searchFields = "key,title,author_name,language,cover_i,cover_edition_key,first_publish_year,ratings_average,ratings_count,number_of_pages_median,edition_count"
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is an OpenLibrary API client. Construct one per process and share
// it; it is safe for concurrent use.
type Client struct {
	baseURL      string
	coverBaseURL string
	language     string
	httpClient   HTTPDoer
	rateLimiter  *ratelimit.Limiter
}

// NewClient creates a new OpenLibrary API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:      defaultBaseURL,
		coverBaseURL: defaultCoverBaseURL,
		language:     "eng",
		httpClient:   &http.Client{Timeout: defaultTimeout},
		rateLimiter:  ratelimit.New("OpenLibrary", defaultRatePerSecond),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the OpenLibrary API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithCoverBaseURL sets a custom base URL for cover images.
func WithCoverBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.coverBaseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithLanguage sets the language filter sent with every search.
func WithLanguage(lang string) Option {
	return func(client *Client) {
		if lang != "" {
			client.language = lang
		}
	}
}

// WithTimeout replaces the default HTTP client with one using the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// CoverURL builds a cover image URL for a search document. The edition key is
// preferred; the numeric cover id is the fallback. Returns "" when the
// document carries neither.
func (c *Client) CoverURL(doc SearchDoc) string {
	if doc.CoverEditionKey != "" {
		return fmt.Sprintf("%s/b/olid/%s-L.jpg", c.coverBaseURL, doc.CoverEditionKey)
	}
	if doc.CoverID > 0 {
		return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coverBaseURL, doc.CoverID)
	}
	return ""
}

// CoverURLByID builds a cover image URL from a bare numeric cover id.
func (c *Client) CoverURLByID(coverID int64) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coverBaseURL, coverID)
}
