package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/storage"
)

const installationKeyFmt = keyPrefix + "installation:"

// InstallationCache 安装状态读穿缓存，包装任意 InstallationStore。
// 写入与删除先落库再删除缓存键；Redis 故障时直接回源，不影响主流程。
type InstallationCache struct {
	inner  storage.InstallationStore
	client *Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ storage.InstallationStore = (*InstallationCache)(nil)

// NewInstallationCache 创建缓存装饰器，ttl<=0 时使用 10 分钟
func NewInstallationCache(inner storage.InstallationStore, client *Client, ttl time.Duration, logger *zap.Logger) *InstallationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstallationCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func installationKey(id string) string { return installationKeyFmt + id }

// GetInstallation 先查缓存，未命中回源并回填
func (c *InstallationCache) GetInstallation(ctx context.Context, installedAppID string) (*storage.Installation, error) {
	key := installationKey(installedAppID)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var inst storage.Installation
		if jerr := json.Unmarshal(data, &inst); jerr == nil {
			return &inst, nil
		}
		c.logger.Warn("installation cache entry corrupted", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("installation cache read failed", zap.String("key", key), zap.Error(err))
	}

	inst, err := c.inner.GetInstallation(ctx, installedAppID)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(inst); jerr == nil {
		if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.logger.Warn("installation cache fill failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return inst, nil
}

// SaveInstallation 落库后使缓存失效
func (c *InstallationCache) SaveInstallation(ctx context.Context, inst *storage.Installation) error {
	if err := c.inner.SaveInstallation(ctx, inst); err != nil {
		return err
	}
	c.invalidate(ctx, inst.InstalledAppID)
	return nil
}

// DeleteInstallation 删除后使缓存失效
func (c *InstallationCache) DeleteInstallation(ctx context.Context, installedAppID string) error {
	if err := c.inner.DeleteInstallation(ctx, installedAppID); err != nil {
		return err
	}
	c.invalidate(ctx, installedAppID)
	return nil
}

func (c *InstallationCache) invalidate(ctx context.Context, installedAppID string) {
	key := installationKey(installedAppID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("installation cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
