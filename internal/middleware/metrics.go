package middleware

import (
	"strconv"
	"time"

	"flight-booking/monitoring"

	"github.com/gin-gonic/gin"
)

// Metrics 每個請求記 counter + latency histogram；用 FullPath 避免 id 造成高基數
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		monitoring.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		monitoring.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
