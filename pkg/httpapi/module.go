package httpapi

import (
	"net/http"

	"smallbiznis-paytopublish/pkg/health"
	"smallbiznis-paytopublish/pkg/messenger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Invoke(registerHealthEndpoints),
)

func registerHealthEndpoints(r *gin.Engine, h health.HealthService) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Respond writes data with the messages collected during the request.
func Respond(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{
		"data":     data,
		"messages": messenger.FromContext(c.Request.Context()).Messages(),
	})
}

// Accepted acknowledges work handed to the background worker.
func Accepted(c *gin.Context, data any) {
	Respond(c, http.StatusAccepted, data)
}
