package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/taoyao-code/zwave-configurator/internal/storage"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

var (
	bucketInstallations = []byte("installations")
	bucketProductMaps   = []byte("product_mappings")
)

// Store 基于 bbolt 的本地存储，单文件部署时替代 PostgreSQL
type Store struct {
	db *bolt.DB
}

var (
	_ storage.InstallationStore = (*Store)(nil)
	_ storage.ProductMapStore   = (*Store)(nil)
)

// Open 打开或创建数据库文件并初始化 bucket
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketInstallations, bucketProductMaps} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping 只读事务探活（健康检查用）
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketInstallations) == nil {
			return fmt.Errorf("bucket %q not found", bucketInstallations)
		}
		return nil
	})
}

// Path 数据库文件路径
func (s *Store) Path() string {
	return s.db.Path()
}

func (s *Store) put(bucket []byte, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucket)
		}
		return b.Put([]byte(key), data)
	})
}

func (s *Store) get(bucket []byte, key string, v any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucket)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s %s: %w", bucket, key, storage.ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

// GetInstallation 读取安装状态
func (s *Store) GetInstallation(ctx context.Context, installedAppID string) (*storage.Installation, error) {
	var inst storage.Installation
	if err := s.get(bucketInstallations, installedAppID, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

// SaveInstallation 覆盖写入安装状态
func (s *Store) SaveInstallation(ctx context.Context, inst *storage.Installation) error {
	inst.UpdatedAt = time.Now().UTC()
	return s.put(bucketInstallations, inst.InstalledAppID, inst)
}

// DeleteInstallation 删除安装状态
func (s *Store) DeleteInstallation(ctx context.Context, installedAppID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInstallations)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketInstallations)
		}
		return b.Delete([]byte(installedAppID))
	})
}

// FindProductMapping 按厂商三元组查询
func (s *Store) FindProductMapping(ctx context.Context, h zwave.ManufacturerHex) (*storage.ProductMapping, error) {
	var m storage.ProductMapping
	if err := s.get(bucketProductMaps, storage.MappingKey(h), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveProductMapping 覆盖写入映射
func (s *Store) SaveProductMapping(ctx context.Context, m *storage.ProductMapping) error {
	h := storage.NormalizeHex(zwave.ManufacturerHex{
		ManufacturerID: m.ManufacturerID,
		ProductTypeID:  m.ProductTypeID,
		ProductID:      m.ProductID,
	})
	m.ManufacturerID, m.ProductTypeID, m.ProductID = h.ManufacturerID, h.ProductTypeID, h.ProductID
	m.UpdatedAt = time.Now().UTC()
	return s.put(bucketProductMaps, storage.MappingKey(h), m)
}
