package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/memorial-gallery/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records one observation per request, labelled by route template so
// photo ids and static file names do not explode label cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
