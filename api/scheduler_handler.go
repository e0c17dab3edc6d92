package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// runDueJobs triggers one scheduling pass and returns its summary.
// This is the endpoint an external cron hits on deployments without
// the built-in poller.
func (a *API) runDueJobs(c *gin.Context) {
	sum, err := a.eng.RunDueJobs(c.Request.Context())
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (a *API) health(c *gin.Context) {
	if err := a.eng.Store().Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
