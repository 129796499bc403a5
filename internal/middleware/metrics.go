package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/service"
)

// unmatchedRoute labels requests no route matched so the path label stays bounded.
const unmatchedRoute = "unmatched"

var probePaths = map[string]bool{"/health": true, "/ready": true, "/metrics": true}

// Metrics records latency and status per route template. Probe endpoints are skipped.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || probePaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
