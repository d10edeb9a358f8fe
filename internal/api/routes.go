package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/api/middleware"
)

// RegisterRoutes 注册 /api 路由组
func RegisterRoutes(r gin.IRouter, svc Configurator, authCfg middleware.AuthConfig, logger *zap.Logger) {
	if r == nil || svc == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := NewInstallationHandler(svc, logger)

	api := r.Group("/api")
	api.Use(middleware.RequestTracing())
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	inst := api.Group("/installations/:id")
	inst.POST("", h.Install)
	inst.DELETE("", h.Uninstall)
	inst.GET("", h.Overview)
	inst.PUT("/product", h.SelectProduct)
	inst.POST("/events/manufacturer", h.ManufacturerEvent)
	inst.POST("/parameters/:number/resolve", h.ResolveParameter)
	inst.POST("/association-groups/:group/resolve", h.ResolveAssociationGroup)
	inst.POST("/configuration", h.ApplyConfiguration)

	logger.Info("installation routes registered", zap.Int("endpoints", 8))
}
