package gin

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RigelNana/cinexnema/pkg/metrics"
)

// PrometheusMiddleware records count and latency per route template.
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(serviceName, c.Request.Method+" "+route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
