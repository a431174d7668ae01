package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/pkg/messenger"
)

func init() {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())
}

func newEngine(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Messages(), Error())
	r.GET("/", handler)
	return r
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Messages []messenger.Message `json:"messages"`
}

func TestErrorRendersBaseErrorWithMessages(t *testing.T) {
	m := messenger.New(zap.NewNop())
	r := newEngine(func(c *gin.Context) {
		m.Add(c.Request.Context(), "field_pay_to_publish is missing", messenger.Error)
		_ = c.Error(errutil.UnprocessableEntity("configuration error", nil))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "unprocessable_entity", body.Error.Code)
	require.Len(t, body.Messages, 1)
	require.Equal(t, messenger.Error, body.Messages[0].Severity)
}

func TestErrorRendersForeignErrorAsInternal(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "internal", body.Error.Code)
	require.Empty(t, body.Messages)
}

func TestErrorLeavesWrittenResponses(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}
