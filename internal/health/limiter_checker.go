package health

import (
	"context"
	"time"

	"github.com/taoyao-code/zwave-configurator/internal/smartthings"
)

// LimiterChecker 命令下发限流器状态，只提供统计信息，始终健康
type LimiterChecker struct {
	limiter *smartthings.RateLimiter
}

// NewLimiterChecker 创建检查器
func NewLimiterChecker(limiter *smartthings.RateLimiter) *LimiterChecker {
	return &LimiterChecker{limiter: limiter}
}

// Name 返回检查器名称
func (c *LimiterChecker) Name() string {
	return "dispatch_limiter"
}

// Check 返回限流统计
func (c *LimiterChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if c.limiter == nil {
		return CheckResult{Status: StatusHealthy, Message: "not configured", Latency: time.Since(start)}
	}
	stats := c.limiter.Stats()
	return CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{
			"rate_per_second": stats.RatePerSecond,
			"burst":           stats.Burst,
			"allowed_total":   stats.AllowedTotal,
			"failed_total":    stats.FailedTotal,
		},
		Latency: time.Since(start),
	}
}
