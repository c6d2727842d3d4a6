package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"openadr/internal/shared/logger"
)

// Logging logs one structured line per request, tiered by status.
func Logging(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Errorw("request failed", fields...)
		case c.Writer.Status() >= 400:
			log.Warnw("request rejected", fields...)
		default:
			log.Debugw("request completed", fields...)
		}
	}
}
