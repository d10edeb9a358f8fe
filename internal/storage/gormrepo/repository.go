package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taoyao-code/zwave-configurator/internal/storage"
	"github.com/taoyao-code/zwave-configurator/internal/storage/models"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

// Open 基于已有 pgx 连接池创建 *gorm.DB（共享连接，不单独建池）
func Open(pool *pgxpool.Pool, logger *zap.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Discard}
	if logger != nil {
		cfg.Logger = gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), cfg)
}

// ProductMapRepository 基于 GORM 的厂商映射存储
type ProductMapRepository struct {
	db *gorm.DB
}

var _ storage.ProductMapStore = (*ProductMapRepository)(nil)

// NewProductMapRepository 返回使用给定 *gorm.DB 的映射仓储
func NewProductMapRepository(db *gorm.DB) *ProductMapRepository {
	return &ProductMapRepository{db: db}
}

// FindProductMapping 按厂商三元组查询
func (r *ProductMapRepository) FindProductMapping(ctx context.Context, h zwave.ManufacturerHex) (*storage.ProductMapping, error) {
	h = storage.NormalizeHex(h)
	var rec models.ProductMapping
	err := r.db.WithContext(ctx).
		Where("manufacturer_id = ? AND product_type_id = ? AND product_id = ?", h.ManufacturerID, h.ProductTypeID, h.ProductID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product mapping %s: %w", storage.MappingKey(h), storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &storage.ProductMapping{
		ManufacturerID: rec.ManufacturerID,
		ProductTypeID:  rec.ProductTypeID,
		ProductID:      rec.ProductID,
		ZWaveProductID: rec.ZWaveProductID,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

// SaveProductMapping 插入或覆盖映射（厂商三元组唯一）
func (r *ProductMapRepository) SaveProductMapping(ctx context.Context, m *storage.ProductMapping) error {
	h := storage.NormalizeHex(zwave.ManufacturerHex{
		ManufacturerID: m.ManufacturerID,
		ProductTypeID:  m.ProductTypeID,
		ProductID:      m.ProductID,
	})
	rec := &models.ProductMapping{
		ManufacturerID: h.ManufacturerID,
		ProductTypeID:  h.ProductTypeID,
		ProductID:      h.ProductID,
		ZWaveProductID: m.ZWaveProductID,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "manufacturer_id"}, {Name: "product_type_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"zwave_product_id": gorm.Expr("excluded.zwave_product_id"),
				"updated_at":       gorm.Expr("NOW()"),
			}),
		}).
		Create(rec).Error
	if err != nil {
		return err
	}
	m.UpdatedAt = rec.UpdatedAt
	return nil
}
