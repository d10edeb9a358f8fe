package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/zwave-configurator/internal/config"
	"github.com/taoyao-code/zwave-configurator/internal/httpclient"
	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/product"
	redisstorage "github.com/taoyao-code/zwave-configurator/internal/storage/redis"
)

// NewCatalog 按配置创建产品库；redis 非 nil 时包一层元数据缓存
func NewCatalog(cfg cfgpkg.CatalogConfig, redis *redisstorage.Client, ttl time.Duration, log *zap.Logger, m *metrics.AppMetrics) (product.Catalog, error) {
	var catalog product.Catalog
	switch cfg.Source {
	case cfgpkg.CatalogSourceFile:
		fc, err := product.LoadFileCatalog(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("load product catalog: %w", err)
		}
		log.Info("file catalog loaded", zap.String("file", cfg.File), zap.Int("products", fc.Len()))
		catalog = fc
	case cfgpkg.CatalogSourceAlliance:
		hc := httpclient.New(cfg.Timeout, cfg.MaxRetries, log.Named("catalog"))
		if b := httpclient.ExponentialBackoff(cfg.RetryDelay, cfg.MaxRetries); b != nil {
			hc.Backoff = b
		}
		catalog = product.NewAllianceClient(cfg.BaseURL, hc, log, m)
		log.Info("alliance catalog configured", zap.String("base_url", cfg.BaseURL))
	default:
		return nil, fmt.Errorf("unsupported catalog.source %q", cfg.Source)
	}

	if redis != nil {
		catalog = redisstorage.NewProductCache(catalog, redis, ttl, log.Named("cache"), m)
	}
	return catalog, nil
}
