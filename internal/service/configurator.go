// Package service 串联设备平台、产品库与安装状态存储，实现配置应用的生命周期处理：
// 安装、选择产品、厂商事件、页面数据以及配置提交的下发。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/product"
	"github.com/taoyao-code/zwave-configurator/internal/storage"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

var (
	// ErrInvalidInstallation 安装参数缺失
	ErrInvalidInstallation = errors.New("invalid installation")
	// ErrInstallationNotFound 安装实例不存在
	ErrInstallationNotFound = errors.New("installation not found")
	// ErrProductNotSelected 尚未绑定产品
	ErrProductNotSelected = errors.New("product not selected")
	// ErrProductMismatch 所选产品与设备上报的厂商信息不一致
	ErrProductMismatch = errors.New("device does not match zwave product")
	// ErrGateway 设备平台调用失败
	ErrGateway = errors.New("device gateway error")
)

// DeviceGateway 设备平台访问接口（smartthings.Client 实现）
type DeviceGateway interface {
	DeviceState(ctx context.Context, deviceID, componentID string) (*zwave.DeviceState, error)
	ExecuteCommand(ctx context.Context, deviceID, componentID string, cmd zwave.Command) error
}

// Deps 构造依赖
type Deps struct {
	Gateway       DeviceGateway
	Installations storage.InstallationStore
	ProductMaps   storage.ProductMapStore
	Catalog       product.Catalog
	// ImageBase 产品图片地址前缀
	ImageBase string
	// DefaultComponent 安装未指定组件时使用
	DefaultComponent string
	Logger           *zap.Logger
	Metrics          *metrics.AppMetrics
}

// Configurator 配置应用服务
type Configurator struct {
	gateway       DeviceGateway
	installations storage.InstallationStore
	productMaps   storage.ProductMapStore
	catalog       product.Catalog
	imageBase     string
	component     string
	logger        *zap.Logger
	metrics       *metrics.AppMetrics
}

// New 创建服务
func New(d Deps) *Configurator {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Configurator{
		gateway:       d.Gateway,
		installations: d.Installations,
		productMaps:   d.ProductMaps,
		catalog:       d.Catalog,
		imageBase:     d.ImageBase,
		component:     d.DefaultComponent,
		logger:        logger,
		metrics:       d.Metrics,
	}
}

// Install 记录安装实例并请求设备上报厂商信息。
// 重复安装保留已绑定的产品编号。
func (s *Configurator) Install(ctx context.Context, inst *storage.Installation) error {
	if inst == nil || strings.TrimSpace(inst.InstalledAppID) == "" || strings.TrimSpace(inst.DeviceID) == "" {
		return fmt.Errorf("%w: installedAppId and deviceId are required", ErrInvalidInstallation)
	}
	if inst.ComponentID == "" {
		inst.ComponentID = s.component
	}
	existing, err := s.installations.GetInstallation(ctx, inst.InstalledAppID)
	switch {
	case err == nil:
		if inst.ZWaveProductID == 0 {
			inst.ZWaveProductID = existing.ZWaveProductID
		}
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("load installation: %w", err)
	}
	if err := s.installations.SaveInstallation(ctx, inst); err != nil {
		return fmt.Errorf("save installation: %w", err)
	}
	s.logger.Info("installation saved",
		zap.String("installed_app_id", inst.InstalledAppID),
		zap.String("device_id", inst.DeviceID),
		zap.Int("zwave_product_id", inst.ZWaveProductID))
	return s.dispatch(ctx, inst, zwave.RefreshManufacturer())
}

// Uninstall 删除安装实例
func (s *Configurator) Uninstall(ctx context.Context, installedAppID string) error {
	if err := s.installations.DeleteInstallation(ctx, installedAppID); err != nil {
		return fmt.Errorf("delete installation: %w", err)
	}
	s.logger.Info("installation deleted", zap.String("installed_app_id", installedAppID))
	return nil
}

// SelectProduct 用户手动选择产品：校验厂商三元组一致后保存映射与安装状态，
// 并告知设备需要上报的参数列表
func (s *Configurator) SelectProduct(ctx context.Context, installedAppID string, productID int) error {
	inst, err := s.installation(ctx, installedAppID)
	if err != nil {
		return err
	}
	info, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %d: %w", productID, err)
	}
	state, err := s.deviceState(ctx, inst)
	if err != nil {
		return err
	}
	m, err := state.Manufacturer()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}
	reported := m.Hex()
	if !info.Matches(reported) {
		s.logger.Warn("product does not match device",
			zap.String("installed_app_id", installedAppID),
			zap.Int("zwave_product_id", productID),
			zap.Any("device", reported),
			zap.Any("product", info.Manufacturer()))
		return fmt.Errorf("%w: product %d", ErrProductMismatch, productID)
	}
	if err := s.productMaps.SaveProductMapping(ctx, storage.NewProductMapping(info.Manufacturer(), productID)); err != nil {
		return fmt.Errorf("save product mapping: %w", err)
	}
	return s.bindProduct(ctx, inst, info)
}

// HandleManufacturerEvent 设备上报厂商信息：已知映射时自动绑定产品。
// 查找或下发失败只记录日志，不影响事件处理方。
func (s *Configurator) HandleManufacturerEvent(ctx context.Context, installedAppID string, m zwave.Manufacturer) {
	h := m.Hex()
	log := s.logger.With(zap.String("installed_app_id", installedAppID), zap.Any("manufacturer", h))

	mapping, err := s.productMaps.FindProductMapping(ctx, h)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("no product mapping for manufacturer")
		} else {
			log.Error("find product mapping failed", zap.Error(err))
		}
		return
	}
	inst, err := s.installation(ctx, installedAppID)
	if err != nil {
		log.Error("load installation failed", zap.Error(err))
		return
	}
	info, err := s.catalog.Product(ctx, mapping.ZWaveProductID)
	if err != nil {
		log.Error("load product failed", zap.Int("zwave_product_id", mapping.ZWaveProductID), zap.Error(err))
		return
	}
	if err := s.bindProduct(ctx, inst, info); err != nil {
		log.Error("bind product failed", zap.Error(err))
	}
}

// ProductID 安装实例绑定的产品编号
func (s *Configurator) ProductID(ctx context.Context, installedAppID string) (int, error) {
	inst, err := s.installation(ctx, installedAppID)
	if err != nil {
		return 0, err
	}
	if !inst.ProductSelected() {
		return 0, ErrProductNotSelected
	}
	return inst.ZWaveProductID, nil
}

func (s *Configurator) bindProduct(ctx context.Context, inst *storage.Installation, info *product.Info) error {
	inst.ZWaveProductID = info.ID
	if err := s.installations.SaveInstallation(ctx, inst); err != nil {
		return fmt.Errorf("save installation: %w", err)
	}
	s.logger.Info("product bound",
		zap.String("installed_app_id", inst.InstalledAppID),
		zap.Int("zwave_product_id", info.ID))
	return s.dispatch(ctx, inst, zwave.SupportedConfigurations(info.ParameterNumbers()))
}

func (s *Configurator) installation(ctx context.Context, installedAppID string) (*storage.Installation, error) {
	inst, err := s.installations.GetInstallation(ctx, installedAppID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInstallationNotFound, installedAppID)
		}
		return nil, fmt.Errorf("load installation: %w", err)
	}
	return inst, nil
}

// selected 加载安装实例及其绑定产品
func (s *Configurator) selected(ctx context.Context, installedAppID string) (*storage.Installation, *product.Info, error) {
	inst, err := s.installation(ctx, installedAppID)
	if err != nil {
		return nil, nil, err
	}
	if !inst.ProductSelected() {
		return nil, nil, ErrProductNotSelected
	}
	info, err := s.catalog.Product(ctx, inst.ZWaveProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("load product %d: %w", inst.ZWaveProductID, err)
	}
	return inst, info, nil
}

func (s *Configurator) deviceState(ctx context.Context, inst *storage.Installation) (*zwave.DeviceState, error) {
	state, err := s.gateway.DeviceState(ctx, inst.DeviceID, inst.ComponentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return state, nil
}

func (s *Configurator) dispatch(ctx context.Context, inst *storage.Installation, cmd zwave.Command) error {
	if err := s.gateway.ExecuteCommand(ctx, inst.DeviceID, inst.ComponentID, cmd); err != nil {
		s.logger.Error("command dispatch failed",
			zap.String("device_id", inst.DeviceID),
			zap.String("command", cmd.Name),
			zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrGateway, cmd.Name, err)
	}
	s.logger.Debug("command dispatched",
		zap.String("device_id", inst.DeviceID),
		zap.String("command", cmd.Name),
		zap.Any("arguments", cmd.Arguments))
	return nil
}
