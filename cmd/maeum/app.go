package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/classifier"
	"github.com/xaenox/maeum/internal/responder"
	"github.com/xaenox/maeum/internal/storage"
	"github.com/xaenox/maeum/pkg/config"
	"github.com/xaenox/maeum/pkg/logger"
)

// app holds the components shared by the serve and bot commands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	classifier classifier.Classifier
	responder  responder.Responder
	store      storage.Storage
	shares     storage.ShareStore
}

func loadApp(ctx context.Context, path string) (*app, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		logger:     log,
		classifier: classifier.NewDefaultClassifier(),
		responder:  responder.New(cfg.OpenAI, responder.NewSelector(nil, nil), log),
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if cfg.Database.UseInMemory {
		log.Info("Using in-memory storage")
		a.store = storage.NewMemoryStorage()
	} else {
		log.Info("Using PostgreSQL storage")
		a.store, err = storage.NewPostgresStorage(connectCtx, storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, log)
		if err != nil {
			_ = log.Sync()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	}

	if cfg.Redis.Addr != "" {
		a.shares, err = storage.NewRedisShareStore(connectCtx, storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.ShareTTL,
		}, log)
		if err != nil {
			a.store.Close()
			_ = log.Sync()
			return nil, fmt.Errorf("failed to initialize share store: %w", err)
		}
	} else {
		log.Info("Using in-memory share store")
		a.shares = storage.NewMemoryShareStore()
	}

	return a, nil
}

func (a *app) Close() {
	if err := a.shares.Close(); err != nil {
		a.logger.Warn("Failed to close share store", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}
