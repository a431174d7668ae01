package server

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"smallbiznis-paytopublish/pkg/config"
)

func TestNewHttpServer(t *testing.T) {
	cfg := &config.Config{AppName: "paytopublish"}
	cfg.Server.Addr = "8081"

	engine := NewEngine(cfg)
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	srv := NewHttpServer(Params{Config: cfg, Handler: engine})
	require.Equal(t, ":8081", srv.server.Addr)
	require.Nil(t, srv.server.TLSConfig)

	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
}

func TestGetCertificateWithoutCert(t *testing.T) {
	srv := &Server{}
	_, err := srv.getCertificate(&tls.ClientHelloInfo{})
	require.Error(t, err)
}
