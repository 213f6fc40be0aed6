package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lepinkainen/bookpedia/internal/result"
)

// SearchBooks performs one search request against the catalog. The language
// filter and field projection are fixed; limit is optional (<= 0 lets the API
// pick). No retries: a failed call reports its kind and stops.
func (c *Client) SearchBooks(ctx context.Context, query string, limit int) result.Result[SearchResponse] {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", c.language)
	params.Set("fields", searchFields)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	endpoint := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	var response SearchResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return result.Err[SearchResponse](result.AsKind(err, result.KindUnknown))
	}
	return result.Ok(response)
}
