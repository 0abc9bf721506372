package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/metrics"
	"franchise-inventory/internal/common/observability"
)

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

// Metrics counts requests per route and feeds the OTel operation instruments.
func Metrics(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		var err error
		if status >= 500 {
			err = errors.New("server error")
		}
		obs.Track(c.Request.Context(), c.Request.Method+" "+route, start, err)
	}
}

func RequestLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"route":     routeOf(c),
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= 500 {
			log.Error("Request failed", fields)
			return
		}
		log.Debug("Request served", fields)
	}
}
