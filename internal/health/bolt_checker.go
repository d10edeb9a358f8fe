package health

import (
	"context"
	"fmt"
	"time"

	boltstore "github.com/taoyao-code/zwave-configurator/internal/storage/bolt"
)

// BoltChecker 本地 bbolt 存储健康检查器
type BoltChecker struct {
	store *boltstore.Store
}

// NewBoltChecker 创建检查器
func NewBoltChecker(store *boltstore.Store) *BoltChecker {
	return &BoltChecker{store: store}
}

// Name 返回检查器名称
func (c *BoltChecker) Name() string {
	return "bolt"
}

// Check 执行只读事务确认数据文件可用
func (c *BoltChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if err := c.store.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("bolt unavailable: %v", err),
			Latency: time.Since(start),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{"path": c.store.Path()},
		Latency: time.Since(start),
	}
}
