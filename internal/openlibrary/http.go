package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/lepinkainen/bookpedia/internal/result"
)

// getJSON performs a single GET against endpoint and decodes the body into
// target. It returns nil on success and a result.Kind otherwise. Exactly one
// round trip per call; retries are the caller's business.
func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return classifyTransport(ctx, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return result.KindUnknown
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if kind := classifyStatus(resp.StatusCode); kind != 0 {
		return kind
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if ctx.Err() != nil {
			return result.KindCanceled
		}
		return result.KindSerialization
	}
	return nil
}

// classifyStatus maps a non-2xx status to its error kind. Returns 0 for 2xx.
func classifyStatus(status int) result.Kind {
	switch {
	case status >= 200 && status < 300:
		return 0
	case status == http.StatusRequestTimeout:
		return result.KindRequestTimeout
	case status == http.StatusTooManyRequests:
		return result.KindTooManyRequests
	case status >= 500:
		return result.KindServer
	default:
		return result.KindUnknown
	}
}

// classifyTransport maps a transport-level failure to its error kind.
// Cancellation is checked first so a torn-down task never reports a data
// error.
func classifyTransport(ctx context.Context, err error) result.Kind {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return result.KindCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return result.KindNoInternet
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return result.KindRequestTimeout
	}

	return result.KindUnknown
}
