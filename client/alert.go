package client

import (
	"context"
	"net/http"

	"github.com/xraph/tick/alert"
)

// DispatchAlert sends an alert through the server's idempotent
// dispatcher. The result reports whether a new external object was
// created or the alert was suppressed as a duplicate.
func (c *Client) DispatchAlert(ctx context.Context, a alert.Alert) (*alert.Result, error) {
	var res alert.Result
	if err := c.do(ctx, http.MethodPost, "/v1/alerts", a, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
