package models

import (
	"time"
)

// 注意：
// - 保持与 db/migrations 中的表结构对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// ProductMapping 映射 product_mappings 表
type ProductMapping struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 厂商三元组（小写 0x%04x）
	ManufacturerID string `gorm:"column:manufacturer_id;type:varchar(6);not null;uniqueIndex:uq_product_mappings_manufacturer"`
	ProductTypeID  string `gorm:"column:product_type_id;type:varchar(6);not null;uniqueIndex:uq_product_mappings_manufacturer"`
	ProductID      string `gorm:"column:product_id;type:varchar(6);not null;uniqueIndex:uq_product_mappings_manufacturer"`
	// Alliance 产品库编号
	ZWaveProductID int `gorm:"column:zwave_product_id;not null"`
	// 审计字段
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductMapping) TableName() string { return "product_mappings" }

// Installation 映射 installations 表（pgx 仓储直接写 SQL，此处用于 gorm 迁移与调试查询）
type Installation struct {
	InstalledAppID string    `gorm:"column:installed_app_id;type:text;primaryKey"`
	DeviceID       string    `gorm:"column:device_id;type:text;not null"`
	ComponentID    string    `gorm:"column:component_id;type:text;not null;default:main"`
	ZWaveProductID int       `gorm:"column:zwave_product_id;not null;default:0"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Installation) TableName() string { return "installations" }
