package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leke-chat/internal/config"
	"leke-chat/internal/database"
	"leke-chat/internal/repository"
)

// openStore connects the configured backend. The returned func releases
// its connections.
func openStore(cfg *config.Config, logger *zap.Logger) (repository.ConversationRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreFile:
		return repository.NewFileConversationRepo(cfg.DBFile), func() {}, nil

	case config.StorePostgres:
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("✓ Database migrations applied")
		return repository.NewPostgresConversationRepo(pool), pool.Close, nil

	case config.StoreRedis:
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("✓ Redis connected")
		return repository.NewRedisConversationRepo(client), func() { client.Close() }, nil

	case config.StoreMongo:
		client, err := database.NewMongoClient(cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("✓ MongoDB connected")

		repo := repository.NewMongoConversationRepo(client.Database(cfg.MongoDatabase))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to create MongoDB indexes", zap.Error(err))
		}

		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(ctx)
		}
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
