package middleware

import (
	"time"

	"smallbiznis-paytopublish/pkg/messenger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Messages attaches a message bag to the request context.
func Messages() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := messenger.WithBag(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logger writes one log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zap.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("errors", len(c.Errors)),
		)
	}
}
