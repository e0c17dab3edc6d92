package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xraph/tick/engine"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

// createJobRequest is the POST /v1/jobs payload. Omitted optional
// fields take the engine defaults: active, no tenant, empty metadata.
type createJobRequest struct {
	Name         string         `json:"name"`
	Schedule     string         `json:"schedule"`
	FunctionName string         `json:"function_name"`
	TenantID     string         `json:"tenant_id"`
	Active       *bool          `json:"active"`
	Metadata     map[string]any `json:"metadata"`
}

func (a *API) listJobs(c *gin.Context) {
	f := job.Filter{
		TenantID:     c.Query("tenant_id"),
		FunctionName: c.Query("function"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active value: " + raw})
			return
		}
		f.Active = &active
	}
	var err error
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobs, err := a.eng.ListJobs(c.Request.Context(), f)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (a *API) createJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	var opts []job.Option
	if req.TenantID != "" {
		opts = append(opts, job.WithTenant(req.TenantID))
	}
	if req.Active != nil && !*req.Active {
		opts = append(opts, job.WithInactive())
	}
	if len(req.Metadata) > 0 {
		opts = append(opts, job.WithExtra(req.Metadata))
	}

	j, err := a.eng.CreateJob(c.Request.Context(), req.Name, req.Schedule, req.FunctionName, opts...)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, j)
}

func (a *API) getJob(c *gin.Context) {
	jobID, ok := a.jobID(c)
	if !ok {
		return
	}
	j, err := a.eng.GetJob(c.Request.Context(), jobID)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}

func (a *API) updateJob(c *gin.Context) {
	jobID, ok := a.jobID(c)
	if !ok {
		return
	}
	var p engine.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	j, err := a.eng.UpdateJob(c.Request.Context(), jobID, p)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}

func (a *API) deleteJob(c *gin.Context) {
	jobID, ok := a.jobID(c)
	if !ok {
		return
	}
	if err := a.eng.DeleteJob(c.Request.Context(), jobID); err != nil {
		a.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) runJob(c *gin.Context) {
	jobID, ok := a.jobID(c)
	if !ok {
		return
	}
	exec, err := a.eng.RunJob(c.Request.Context(), jobID)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, exec)
}

// jobID parses the :jobID path parameter, responding 400 on malformed
// IDs.
func (a *API) jobID(c *gin.Context) (id.JobID, bool) {
	jobID, err := id.ParseJobID(c.Param("jobID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID: " + err.Error()})
		return id.JobID{}, false
	}
	return jobID, true
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s value: %s", name, raw)
	}
	return v, nil
}
