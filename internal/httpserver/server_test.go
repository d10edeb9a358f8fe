package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/zwave-configurator/internal/config"
	appmetrics "github.com/taoyao-code/zwave-configurator/internal/metrics"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHealthzReadyzMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := cfgpkg.HTTPConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second}
	reg := appmetrics.NewRegistry()
	srv := New(cfg, "/metrics", appmetrics.Handler(reg), func() bool { return true }, zap.NewNop())

	assert.Equal(t, http.StatusOK, get(srv.Handler(), "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(srv.Handler(), "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(srv.Handler(), "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, get(srv.Handler(), "/debug/pprof/").Code, "pprof 默认关闭")
}

func TestReadyzNotReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := cfgpkg.HTTPConfig{Addr: ":0"}
	srv := New(cfg, "", nil, func() bool { return false }, nil)

	assert.Equal(t, http.StatusServiceUnavailable, get(srv.Handler(), "/readyz").Code)
}

func TestEngineRoutesAndPprof(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := cfgpkg.HTTPConfig{Addr: ":0", Pprof: cfgpkg.HTTPPprof{Enable: true, Prefix: "/debug/pprof"}}
	srv := New(cfg, "", nil, nil, nil)
	srv.Engine().GET("/api/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rr := get(srv.Handler(), "/api/ping")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
	assert.Equal(t, http.StatusOK, get(srv.Handler(), "/debug/pprof/cmdline").Code)
}
