package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

// LoggerMiddleware creates request logging middleware.
// Probe and scrape requests are logged at debug level.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		path := c.Request.URL.Path

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", duration.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if strings.HasPrefix(path, "/health") || path == "/metrics" {
			log.Debug("HTTP Request", fields...)
		} else {
			log.Info("HTTP Request", fields...)
		}

		if len(c.Errors) > 0 {
			log.Error("Request errors", "errors", c.Errors.String())
		}
	}
}
