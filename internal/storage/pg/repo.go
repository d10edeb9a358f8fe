package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/zwave-configurator/internal/storage"
)

// Repository 基于 pgx 的安装状态存储
type Repository struct {
	Pool *pgxpool.Pool
}

var _ storage.InstallationStore = (*Repository)(nil)

// GetInstallation 读取安装状态
func (r *Repository) GetInstallation(ctx context.Context, installedAppID string) (*storage.Installation, error) {
	const q = `SELECT installed_app_id, device_id, component_id, zwave_product_id, updated_at
               FROM installations WHERE installed_app_id = $1`
	var inst storage.Installation
	err := r.Pool.QueryRow(ctx, q, installedAppID).Scan(
		&inst.InstalledAppID, &inst.DeviceID, &inst.ComponentID, &inst.ZWaveProductID, &inst.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("installation %s: %w", installedAppID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// SaveInstallation 插入或更新安装状态
func (r *Repository) SaveInstallation(ctx context.Context, inst *storage.Installation) error {
	const q = `INSERT INTO installations (installed_app_id, device_id, component_id, zwave_product_id, updated_at)
               VALUES ($1,$2,$3,$4,NOW())
               ON CONFLICT (installed_app_id)
               DO UPDATE SET device_id=EXCLUDED.device_id, component_id=EXCLUDED.component_id,
                             zwave_product_id=EXCLUDED.zwave_product_id, updated_at=NOW()
               RETURNING updated_at`
	return r.Pool.QueryRow(ctx, q, inst.InstalledAppID, inst.DeviceID, inst.ComponentID, inst.ZWaveProductID).
		Scan(&inst.UpdatedAt)
}

// DeleteInstallation 删除安装状态（不存在时不报错）
func (r *Repository) DeleteInstallation(ctx context.Context, installedAppID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM installations WHERE installed_app_id = $1`, installedAppID)
	return err
}
