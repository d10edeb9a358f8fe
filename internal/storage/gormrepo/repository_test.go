package gormrepo

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/storage"
	"github.com/taoyao-code/zwave-configurator/internal/storage/models"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

func setupRepo(t *testing.T) *ProductMapRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL 未设置，跳过测试")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skip("测试数据库不可用，跳过测试")
	}
	t.Cleanup(pool.Close)
	if err := pool.Ping(ctx); err != nil {
		t.Skip("测试数据库不可用，跳过测试")
	}

	db, err := Open(pool, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ProductMapping{}))
	return NewProductMapRepository(db)
}

func TestProductMapRepository_Upsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	h := zwave.ManufacturerHex{ManufacturerID: "0x7FFF", ProductTypeID: "0x0001", ProductID: "0x0002"}
	t.Cleanup(func() {
		repo.db.Where("manufacturer_id = ?", "0x7fff").Delete(&models.ProductMapping{})
	})

	_, err := repo.FindProductMapping(ctx, h)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.SaveProductMapping(ctx, storage.NewProductMapping(h, 100)))
	require.NoError(t, repo.SaveProductMapping(ctx, storage.NewProductMapping(h, 200)))

	got, err := repo.FindProductMapping(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 200, got.ZWaveProductID)
	assert.Equal(t, "0x7fff", got.ManufacturerID)
}
