package handler

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

// Pinger is a dependency probed by the readiness endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// UploadOpener reads locally stored media.
type UploadOpener interface {
	Open(key string) (io.ReadSeekCloser, error)
}

// SystemHandler exposes health, readiness, metrics and local uploads.
type SystemHandler struct {
	metrics  *service.MetricsService
	checks   map[string]Pinger
	uploads  UploadOpener
	deadline time.Duration
}

// NewSystemHandler constructs the handler. uploads may be nil when media lives in a remote store.
func NewSystemHandler(metrics *service.MetricsService, checks map[string]Pinger, uploads UploadOpener) *SystemHandler {
	return &SystemHandler{metrics: metrics, checks: checks, uploads: uploads, deadline: 2 * time.Second}
}

// Health responds with a generic OK payload for liveness probes.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every dependency.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.deadline)
	defer cancel()
	failures := gin.H{}
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check.PingContext(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *SystemHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Upload streams a file from the local object store.
func (h *SystemHandler) Upload(c *gin.Context) {
	if h.uploads == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	key := strings.TrimPrefix(path.Clean("/"+c.Param("path")), "/")
	if key == "" {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	file, err := h.uploads.Open(key)
	if err != nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	defer file.Close() //nolint:errcheck
	c.Header("Cache-Control", "public, max-age=300")
	http.ServeContent(c.Writer, c.Request, path.Base(key), time.Time{}, file)
}
