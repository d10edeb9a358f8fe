package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/zwave-configurator/internal/smartthings"
	boltstore "github.com/taoyao-code/zwave-configurator/internal/storage/bolt"
)

// mockChecker 模拟检查器
type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{
		Status:  m.status,
		Message: "mock",
		Latency: time.Millisecond,
	}
}

// slowChecker 等待 ctx 结束
type slowChecker struct{}

func (slowChecker) Name() string { return "slow" }

func (slowChecker) Check(ctx context.Context) CheckResult {
	<-ctx.Done()
	return CheckResult{Status: StatusUnhealthy, Message: ctx.Err().Error()}
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	t.Run("全部健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusHealthy},
			&mockChecker{"redis", StatusHealthy},
		)
		assert.Equal(t, StatusHealthy, agg.OverallStatus(ctx))
		assert.True(t, agg.Ready(ctx))
	})

	t.Run("缓存降级仍然就绪", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusHealthy},
			&mockChecker{"redis", StatusDegraded},
		)
		assert.Equal(t, StatusDegraded, agg.OverallStatus(ctx))
		assert.True(t, agg.Ready(ctx))
	})

	t.Run("存储不健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusUnhealthy},
			&mockChecker{"redis", StatusDegraded},
		)
		assert.Equal(t, StatusUnhealthy, agg.OverallStatus(ctx))
		assert.False(t, agg.Ready(ctx))
	})

	t.Run("动态添加检查器", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"initial", StatusHealthy})
		agg.AddChecker(&mockChecker{"added", StatusHealthy})
		assert.Len(t, agg.CheckAll(ctx), 2)
	})

	t.Run("单个检查器超时", func(t *testing.T) {
		agg := NewAggregator(slowChecker{}, &mockChecker{"database", StatusHealthy})
		agg.SetTimeout(20 * time.Millisecond)

		results := agg.CheckAll(ctx)
		require.Len(t, results, 2)
		assert.Equal(t, StatusUnhealthy, results["slow"].Status)
		assert.Equal(t, StatusHealthy, results["database"].Status)
	})

	t.Run("Alive始终返回true", func(t *testing.T) {
		assert.True(t, NewAggregator().Alive())
	})
}

func TestPingChecker(t *testing.T) {
	ctx := context.Background()
	fail := func(context.Context) error { return errors.New("refused") }

	assert.Equal(t, StatusHealthy, NewPingChecker("gorm", func(context.Context) error { return nil }, false).Check(ctx).Status)
	assert.Equal(t, StatusUnhealthy, NewPingChecker("gorm", fail, false).Check(ctx).Status)
	assert.Equal(t, StatusDegraded, NewPingChecker("cache", fail, true).Check(ctx).Status)
}

func TestBoltChecker(t *testing.T) {
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "zwave.db"))
	require.NoError(t, err)

	checker := NewBoltChecker(store)
	res := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, store.Path(), res.Details["path"])

	require.NoError(t, store.Close())
	assert.Equal(t, StatusUnhealthy, checker.Check(context.Background()).Status)
}

func TestLimiterChecker(t *testing.T) {
	limiter := smartthings.NewRateLimiter(10, 2)
	require.NoError(t, limiter.Wait(context.Background()))

	res := NewLimiterChecker(limiter).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, int64(1), res.Details["allowed_total"])
	assert.Equal(t, 2, res.Details["burst"])

	assert.Equal(t, StatusHealthy, NewLimiterChecker(nil).Check(context.Background()).Status)
}

func TestHTTPRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(agg *Aggregator, path string) *httptest.ResponseRecorder {
		r := gin.New()
		RegisterHTTPRoutes(r, agg)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		return rr
	}

	t.Run("降级返回200", func(t *testing.T) {
		rr := serve(NewAggregator(&mockChecker{"redis", StatusDegraded}), "/health")
		assert.Equal(t, http.StatusOK, rr.Code)

		var report HealthReport
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, StatusDegraded, report.Status)
		assert.Contains(t, report.Checks, "redis")
	})

	t.Run("不健康返回503", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"database", StatusUnhealthy})
		assert.Equal(t, http.StatusServiceUnavailable, serve(agg, "/health").Code)
		assert.Equal(t, http.StatusServiceUnavailable, serve(agg, "/health/ready").Code)
		assert.Equal(t, http.StatusOK, serve(agg, "/health/live").Code)
	})
}
