package bootstrap

import (
	"go.uber.org/zap"

	"titanic_chat_backend/config"
	"titanic_chat_backend/pkg/logging"
	"titanic_chat_backend/platform/cache"
	"titanic_chat_backend/platform/database"
	"titanic_chat_backend/platform/dataset"
	"titanic_chat_backend/platform/redis"
	"titanic_chat_backend/platform/sandbox"
	"titanic_chat_backend/platform/storage"
)

type Infrastructure struct {
	Table    *dataset.Table
	Executor *sandbox.Executor
	Cache    cache.CacheService
	Redis    *redis.Service   // nil unless REDIS_URL is set
	DB       *database.DB     // nil unless PG_HOST is set
	Storage  *storage.Service // nil unless STORAGE_TYPE is set
}

func NewInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{}

	// dataset, loaded once and read-only from here on
	table, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	infra.Table = table
	logging.Logger.Info("dataset loaded and cleaned",
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", len(table.ColumnNames())),
	)

	// sandbox for generated analysis code
	infra.Executor = sandbox.NewExecutor(table, cfg.ExecTimeout)

	// answer cache: L1 always, Redis L2 when configured
	l1 := cache.InitL1Cache()
	var l2 cache.CacheService
	if cfg.RedisURL != "" {
		redisService, err := redis.InitRedis(cfg)
		if err != nil {
			logging.Logger.Error("fail initializing Redis", zap.Error(err))
			return nil, err
		}
		infra.Redis = redisService
		l2 = redisService
	} else {
		logging.Logger.Info("REDIS_URL empty, answer cache is in-process only")
	}
	infra.Cache = cache.NewCacheService(l1, l2)

	// chat history persistence when configured
	if cfg.Host != "" {
		db, err := database.InitPostgres(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(); err != nil {
			return nil, err
		}
		infra.DB = db
	} else {
		logging.Logger.Info("PG_HOST empty, chat history persistence disabled")
	}

	// chart archive when configured
	if cfg.StorageType != "" {
		storageService, err := storage.InitStorageService(cfg)
		if err != nil {
			logging.Logger.Error("fail initializing storage", zap.Error(err))
			return nil, err
		}
		infra.Storage = storageService
	}

	return infra, nil
}

func (infra *Infrastructure) Shutdown() error {
	if infra.DB != nil {
		if err := infra.DB.Close(); err != nil {
			logging.Logger.Error("fail closing database", zap.Error(err))
			return err
		}
	}
	if infra.Redis != nil {
		if err := infra.Redis.Rdb.Close(); err != nil {
			logging.Logger.Error("fail closing redis", zap.Error(err))
			return err
		}
	}
	return nil
}
