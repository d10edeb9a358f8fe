package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/zwave-configurator/internal/config"
	"github.com/taoyao-code/zwave-configurator/internal/health"
	"github.com/taoyao-code/zwave-configurator/internal/storage"
	boltstore "github.com/taoyao-code/zwave-configurator/internal/storage/bolt"
	"github.com/taoyao-code/zwave-configurator/internal/storage/gormrepo"
	pgstorage "github.com/taoyao-code/zwave-configurator/internal/storage/pg"
	redisstorage "github.com/taoyao-code/zwave-configurator/internal/storage/redis"
)

// Stores 按配置选择的存储后端
type Stores struct {
	Installations storage.InstallationStore
	ProductMaps   storage.ProductMapStore
	// Redis 启用缓存时非 nil（产品元数据缓存复用）
	Redis    *redisstorage.Client
	Checkers []health.Checker

	closers []func()
}

// Close 逆序释放资源
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// NewStores 初始化主存储（postgres 或 bolt），Redis 启用时在安装状态外包一层读缓存
func NewStores(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) (*Stores, error) {
	s := &Stores{}
	var err error
	switch cfg.Store.Driver {
	case cfgpkg.StoreDriverBolt:
		err = s.openBolt(cfg.Store, log)
	case cfgpkg.StoreDriverPostgres:
		err = s.openPostgres(ctx, cfg.Database, log)
	default:
		err = fmt.Errorf("unsupported store.driver %q", cfg.Store.Driver)
	}
	if err != nil {
		s.Close()
		return nil, err
	}

	client, err := NewRedisClient(cfg.Redis, log)
	if err != nil {
		// 缓存是可选组件，连接失败时不缓存继续运行
		log.Warn("redis unavailable, running without cache", zap.Error(err))
		return s, nil
	}
	if client != nil {
		s.Redis = client
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Installations = redisstorage.NewInstallationCache(s.Installations, client, cfg.Redis.InstallationTTL, log.Named("cache"))
		s.Checkers = append(s.Checkers, health.NewRedisChecker(client))
	}
	return s, nil
}

func (s *Stores) openBolt(cfg cfgpkg.StoreConfig, log *zap.Logger) error {
	store, err := boltstore.Open(cfg.BoltPath)
	if err != nil {
		return fmt.Errorf("open bolt store: %w", err)
	}
	s.closers = append(s.closers, func() { _ = store.Close() })
	s.Installations = store
	s.ProductMaps = store
	s.Checkers = append(s.Checkers, health.NewBoltChecker(store))
	log.Info("bolt store ready", zap.String("path", store.Path()))
	return nil
}

func (s *Stores) openPostgres(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) error {
	pool, err := ConnectDBAndMigrate(ctx, cfg, log)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, pool.Close)

	gdb, err := gormrepo.Open(pool, log)
	if err != nil {
		return fmt.Errorf("open gorm: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("gorm sql db: %w", err)
	}
	s.closers = append(s.closers, func() { _ = sqlDB.Close() })

	s.Installations = &pgstorage.Repository{Pool: pool}
	s.ProductMaps = gormrepo.NewProductMapRepository(gdb)
	s.Checkers = append(s.Checkers,
		health.NewDatabaseChecker(pool),
		health.NewPingChecker("gorm", sqlDB.PingContext, false),
	)
	log.Info("database ready", zap.String("dsn", maskDSN(cfg.DSN)))
	return nil
}
