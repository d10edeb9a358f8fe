package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/zwave-configurator/internal/config"
	"github.com/taoyao-code/zwave-configurator/internal/httpclient"
	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/smartthings"
)

// NewGateway 创建设备平台客户端。命令下发不重试，避免重复写入设备参数。
func NewGateway(cfg cfgpkg.SmartThingsConfig, log *zap.Logger, m *metrics.AppMetrics) *smartthings.Client {
	hc := httpclient.New(cfg.Timeout, 0, log.Named("smartthings"))
	limiter := smartthings.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	log.Info("smartthings gateway configured",
		zap.String("base_url", cfg.BaseURL),
		zap.Float64("rate_limit", cfg.RateLimit),
		zap.Int("rate_burst", cfg.RateBurst))
	return smartthings.New(cfg.BaseURL, cfg.Token, hc, limiter, log, m)
}
