package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xraph/tick/alert"
)

// dispatchAlert emits a deduplicated alert: 201 when a new external
// object was created, 200 when an unexpired duplicate suppressed it.
func (a *API) dispatchAlert(c *gin.Context) {
	var al alert.Alert
	if err := c.ShouldBindJSON(&al); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	res, err := a.eng.Dispatch(c.Request.Context(), al)
	if err != nil {
		a.renderError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Status == alert.StatusSuppressed {
		status = http.StatusOK
	}
	c.JSON(status, res)
}
