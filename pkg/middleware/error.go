package middleware

import (
	"errors"
	"net/http"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/pkg/messenger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error attached to the context. Messages collected
// during the request are returned with it.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		messages := messenger.FromContext(c.Request.Context()).Messages()

		var be errutil.BaseError
		if errors.As(last.Err, &be) {
			body := be.JSON()
			body["messages"] = messages
			c.JSON(be.Code.HTTPStatus(), body)
			return
		}

		zap.L().Error("unhandled request error", zap.Error(last.Err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    errutil.StatusInternal,
				"message": "internal server error",
			},
			"messages": messages,
		})
	}
}
