package client

import (
	"context"
	"net/http"

	"github.com/xraph/tick/cron"
)

// RunDueJobs triggers one scheduling pass on the server and returns
// its summary. This is the endpoint external cron deployments hit
// instead of running the in-process poller.
func (c *Client) RunDueJobs(ctx context.Context) (*cron.Summary, error) {
	var sum cron.Summary
	if err := c.do(ctx, http.MethodPost, "/v1/scheduler/run", nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}
