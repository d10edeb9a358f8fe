package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/product"
)

const productKeyFmt = keyPrefix + "product:"

// ProductCache 产品元数据缓存，包装任意 product.Catalog。
// 产品库内容基本不变，只按 TTL 过期；查询失败的结果不缓存。
type ProductCache struct {
	inner   product.Catalog
	client  *Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

var _ product.Catalog = (*ProductCache)(nil)

// NewProductCache 创建产品缓存，ttl<=0 时使用 24 小时
func NewProductCache(inner product.Catalog, client *Client, ttl time.Duration, logger *zap.Logger, m *metrics.AppMetrics) *ProductCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductCache{inner: inner, client: client, ttl: ttl, logger: logger, metrics: m}
}

// ProductKey 产品缓存键 zwave:product:<id>
func ProductKey(id int) string { return productKeyFmt + strconv.Itoa(id) }

// Product 先查缓存，未命中回源
func (c *ProductCache) Product(ctx context.Context, id int) (*product.Info, error) {
	key := ProductKey(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var info product.Info
		if jerr := json.Unmarshal(data, &info); jerr == nil {
			c.metrics.ProductLookup("cache", metrics.ResultHit)
			return &info, nil
		}
		c.logger.Warn("product cache entry corrupted", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.metrics.ProductLookup("cache", metrics.ResultMiss)

	info, err := c.inner.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(info); jerr == nil {
		if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.logger.Warn("product cache fill failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return info, nil
}

// Invalidate 主动清除某产品缓存
func (c *ProductCache) Invalidate(ctx context.Context, id int) error {
	return c.client.Del(ctx, ProductKey(id)).Err()
}
