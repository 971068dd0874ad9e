// README: Request logging middleware.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/logger"
)

func Logging(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if c.Writer.Status() >= 500 {
			log.Error("http request", fields...)
			return
		}
		log.Info("http request", fields...)
	}
}
