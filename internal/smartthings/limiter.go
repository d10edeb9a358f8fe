package smartthings

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter 基于 Token Bucket 的命令下发限流器（平台侧对每个 token 有调用频率限制）
type RateLimiter struct {
	limiter      *rate.Limiter
	allowedCount atomic.Int64
	waitFailures atomic.Int64
}

// NewRateLimiter 创建限流器
// perSec: 每秒允许的请求数（稳定速率），<=0 表示不限流
// burst: 突发容量（桶的大小）
func NewRateLimiter(perSec float64, burst int) *RateLimiter {
	limit := rate.Inf
	if perSec > 0 {
		limit = rate.Limit(perSec)
	}
	if burst <= 0 {
		burst = 1
		if perSec > 1 {
			burst = int(perSec * 2) // 默认突发为稳定速率的2倍
		}
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait 等待令牌（阻塞，受 ctx 控制）
func (l *RateLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		l.waitFailures.Add(1)
		return err
	}
	l.allowedCount.Add(1)
	return nil
}

// Stats 统计信息
func (l *RateLimiter) Stats() RateLimiterStats {
	return RateLimiterStats{
		RatePerSecond: float64(l.limiter.Limit()),
		Burst:         l.limiter.Burst(),
		AllowedTotal:  l.allowedCount.Load(),
		FailedTotal:   l.waitFailures.Load(),
	}
}

// RateLimiterStats 限流器统计信息
type RateLimiterStats struct {
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
	AllowedTotal  int64   `json:"allowed_total"`
	FailedTotal   int64   `json:"failed_total"`
}
