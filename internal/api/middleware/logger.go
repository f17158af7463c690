package middleware

import (
	"time"

	"catalogimport/internal/logger"

	"github.com/gin-gonic/gin"
)

func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(map[string]interface{}{
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("%s %s", c.Request.Method, c.Request.URL.Path)
			return
		}
		entry.Info("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}
