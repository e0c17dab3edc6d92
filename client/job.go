package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xraph/tick/cron"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

// CreateJobRequest is the payload for CreateJob. Name, Schedule, and
// FunctionName are required; the rest take server defaults.
type CreateJobRequest struct {
	Name         string         `json:"name"`
	Schedule     string         `json:"schedule"`
	FunctionName string         `json:"function_name"`
	TenantID     string         `json:"tenant_id,omitempty"`
	Active       *bool          `json:"active,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// UpdateJobRequest is a partial update; nil fields are left unchanged.
// Metadata keys merge into the job's existing extras.
type UpdateJobRequest struct {
	Name         *string        `json:"name,omitempty"`
	Schedule     *string        `json:"schedule,omitempty"`
	FunctionName *string        `json:"function_name,omitempty"`
	Active       *bool          `json:"active,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// CreateJob registers a new scheduled job on the server.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*job.Job, error) {
	var j job.Job
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", req, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// GetJob fetches one job by ID.
func (c *Client) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	var j job.Job
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+jobID.String(), nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// ListJobs returns jobs matching the filter, newest first.
func (c *Client) ListJobs(ctx context.Context, f job.Filter) ([]*job.Job, error) {
	q := url.Values{}
	if f.TenantID != "" {
		q.Set("tenant_id", f.TenantID)
	}
	if f.FunctionName != "" {
		q.Set("function", f.FunctionName)
	}
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}

	path := "/v1/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var jobs []*job.Job
	if err := c.do(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJob applies a partial update and returns the updated job.
func (c *Client) UpdateJob(ctx context.Context, jobID id.JobID, req UpdateJobRequest) (*job.Job, error) {
	var j job.Job
	if err := c.do(ctx, http.MethodPatch, "/v1/jobs/"+jobID.String(), req, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, jobID id.JobID) error {
	return c.do(ctx, http.MethodDelete, "/v1/jobs/"+jobID.String(), nil, nil)
}

// RunJob forces one immediate run, bypassing the schedule and active
// flag. Handler failures come back inside the execution record, not
// as an error.
func (c *Client) RunJob(ctx context.Context, jobID id.JobID) (*cron.Execution, error) {
	var exec cron.Execution
	if err := c.do(ctx, http.MethodPost, "/v1/jobs/"+jobID.String()+"/run", nil, &exec); err != nil {
		return nil, err
	}
	return &exec, nil
}
