// Package api exposes the engine's administrative surface over HTTP.
//
// The API is a thin gin adapter: every route delegates to an engine
// method and translates sentinel errors into status codes. It holds no
// state of its own, so it can either serve standalone via Handler or
// mount next to existing routes via RegisterRoutes.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xraph/tick"
	"github.com/xraph/tick/engine"
)

// API serves the administrative HTTP surface for one engine.
type API struct {
	eng    *engine.Engine
	logger *slog.Logger
}

// Option configures the API.
type Option func(*API)

// WithLogger sets the request logger. Defaults to the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates the API for eng.
func New(eng *engine.Engine, opts ...Option) *API {
	a := &API{eng: eng, logger: eng.Logger()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns a ready-to-serve http.Handler with all routes
// registered.
func (a *API) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the tick routes on r.
func (a *API) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", a.health)

	v1 := r.Group("/v1")
	v1.GET("/jobs", a.listJobs)
	v1.POST("/jobs", a.createJob)
	v1.GET("/jobs/:jobID", a.getJob)
	v1.PATCH("/jobs/:jobID", a.updateJob)
	v1.DELETE("/jobs/:jobID", a.deleteJob)
	v1.POST("/jobs/:jobID/run", a.runJob)
	v1.POST("/scheduler/run", a.runDueJobs)
	v1.POST("/alerts", a.dispatchAlert)
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		a.logger.Info("http request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}

// renderError maps sentinel errors onto status codes: bad input is 400,
// unknown records 404, a lease held elsewhere 409, a missing sink 503,
// anything else 500.
func (a *API) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tick.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tick.ErrNameRequired),
		errors.Is(err, tick.ErrScheduleRequired),
		errors.Is(err, tick.ErrFunctionRequired),
		errors.Is(err, tick.ErrJobExists):
		status = http.StatusBadRequest
	case errors.Is(err, tick.ErrJobClaimed):
		status = http.StatusConflict
	case errors.Is(err, tick.ErrSinkRequired):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		a.logger.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
