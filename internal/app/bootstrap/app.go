package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/api"
	"github.com/taoyao-code/zwave-configurator/internal/api/middleware"
	"github.com/taoyao-code/zwave-configurator/internal/app"
	cfgpkg "github.com/taoyao-code/zwave-configurator/internal/config"
	"github.com/taoyao-code/zwave-configurator/internal/health"
	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/service"
)

// shutdownTimeout 优雅关闭等待时间
const shutdownTimeout = 10 * time.Second

// Run 统一启动流程：存储就绪后再对外提供 HTTP 服务，收到信号后优雅关闭
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting zwave configurator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env))

	// ========== 阶段1: 指标 ==========
	reg, appm := app.NewMetrics()
	metricsHandler := metrics.Handler(reg)

	// ========== 阶段2: 存储（失败直接返回）==========
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := app.NewStores(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("store initialization failed", zap.Error(err))
		return err
	}
	defer stores.Close()

	// ========== 阶段3: 产品库与设备平台 ==========
	catalog, err := app.NewCatalog(cfg.Catalog, stores.Redis, cfg.Redis.ProductTTL, log, appm)
	if err != nil {
		log.Error("catalog initialization failed", zap.Error(err))
		return err
	}
	gateway := app.NewGateway(cfg.SmartThings, log, appm)

	svc := service.New(service.Deps{
		Gateway:          gateway,
		Installations:    stores.Installations,
		ProductMaps:      stores.ProductMaps,
		Catalog:          catalog,
		ImageBase:        cfg.Catalog.ImageURL,
		DefaultComponent: cfg.SmartThings.ComponentID,
		Logger:           log.Named("configurator"),
		Metrics:          appm,
	})

	// ========== 阶段4: HTTP ==========
	healthAgg := app.NewHealthAggregator(stores)
	healthAgg.AddChecker(health.NewLimiterChecker(gateway.Limiter()))
	readyFn := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), health.DefaultCheckTimeout)
		defer cancel()
		return healthAgg.Ready(ctx)
	}
	httpSrv := app.NewHTTPServer(cfg.HTTP, cfg.Metrics, metricsHandler, readyFn, log)
	health.RegisterHTTPRoutes(httpSrv.Engine(), healthAgg)
	api.RegisterRoutes(httpSrv.Engine(), svc, middleware.AuthConfig{
		APIKeys: cfg.API.Auth.APIKeys,
		Enabled: cfg.API.Auth.Enabled,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	// ========== 阶段5: 等待关闭信号 ==========
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal, gracefully shutting down...", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("http server error", zap.Error(err))
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
	return nil
}
