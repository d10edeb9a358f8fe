package storage

import (
	"context"
	"errors"
	"time"

	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

// ErrNotFound 记录不存在（各后端统一包装为该错误，调用方用 errors.Is 判断）
var ErrNotFound = errors.New("not found")

// Installation 单个应用安装实例的持久状态
type Installation struct {
	InstalledAppID string `json:"installedAppId"`
	DeviceID       string `json:"deviceId"`
	ComponentID    string `json:"componentId"`
	// ZWaveProductID Alliance 产品库编号，0 表示尚未选择产品
	ZWaveProductID int       `json:"zwaveProductId"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProductSelected 是否已绑定产品
func (i *Installation) ProductSelected() bool {
	return i != nil && i.ZWaveProductID > 0
}

// ProductMapping 厂商三元组（十六进制）到 Alliance 产品编号的映射
type ProductMapping struct {
	ManufacturerID string    `json:"manufacturerId"`
	ProductTypeID  string    `json:"productTypeId"`
	ProductID      string    `json:"productId"`
	ZWaveProductID int       `json:"zwaveProductId"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewProductMapping 以规范化（小写）十六进制构造映射
func NewProductMapping(h zwave.ManufacturerHex, productID int) *ProductMapping {
	h = NormalizeHex(h)
	return &ProductMapping{
		ManufacturerID: h.ManufacturerID,
		ProductTypeID:  h.ProductTypeID,
		ProductID:      h.ProductID,
		ZWaveProductID: productID,
	}
}

// InstallationStore 安装状态存储
// 约束：
// - Get 不存在时返回包装了 ErrNotFound 的错误
// - Save 为 upsert 语义
// - Delete 对不存在的记录不报错
type InstallationStore interface {
	GetInstallation(ctx context.Context, installedAppID string) (*Installation, error)
	SaveInstallation(ctx context.Context, inst *Installation) error
	DeleteInstallation(ctx context.Context, installedAppID string) error
}

// ProductMapStore 厂商信息 -> 产品编号映射存储
type ProductMapStore interface {
	FindProductMapping(ctx context.Context, h zwave.ManufacturerHex) (*ProductMapping, error)
	SaveProductMapping(ctx context.Context, m *ProductMapping) error
}
