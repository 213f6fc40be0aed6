package openlibrary

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lepinkainen/bookpedia/internal/result"
)

// GetWorkDetails fetches a single work record. The description field is
// normalized at decode time (see Description).
func (c *Client) GetWorkDetails(ctx context.Context, workID string) result.Result[WorkDetails] {
	endpoint := fmt.Sprintf("%s/works/%s.json", c.baseURL, url.PathEscape(workID))

	var details WorkDetails
	if err := c.getJSON(ctx, endpoint, &details); err != nil {
		return result.Err[WorkDetails](result.AsKind(err, result.KindUnknown))
	}
	return result.Ok(details)
}
