// File: cmd/server/providers.go
package main

import (
	"context"
	"log"

	"ecowas_fisheries_backend/internal/app"
	"ecowas_fisheries_backend/internal/auth"
	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/indicator"
	"ecowas_fisheries_backend/internal/jobs"
	"ecowas_fisheries_backend/internal/middleware"
	"ecowas_fisheries_backend/internal/notification"
	"ecowas_fisheries_backend/internal/platform/database"
	platformElasticsearch "ecowas_fisheries_backend/internal/platform/elasticsearch"
	"ecowas_fisheries_backend/internal/platform/logger"
	"ecowas_fisheries_backend/internal/ratelimit"
	"ecowas_fisheries_backend/internal/upload"
	"ecowas_fisheries_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// commands bundles the services the CLI subcommands run against.
type commands struct {
	Logger     *zap.Logger
	Users      user.Service
	Uploads    upload.Service
	Indicators indicator.Service
	Search     *platformElasticsearch.ESClientWrapper
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	zapLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return zapLogger, func() {
		if err := zapLogger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}, nil
}

// provideDatabase opens the database and migrates every owned table.
func provideDatabase(cfg *config.Config, zapLogger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, zapLogger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db, app.Models()...); err != nil {
		database.CloseGORMDB(db, zapLogger)
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db, zapLogger) }, nil
}

func provideSessionStore(cfg *config.Config) auth.SessionStore {
	return auth.NewInMemorySessionStore(auth.InMemorySessionStoreConfig{TTL: cfg.SessionCacheTTL})
}

// provideSearchClient connects to Elasticsearch and makes sure the uploads index exists.
// A nil client means search is disabled.
func provideSearchClient(cfg *config.Config, zapLogger *zap.Logger) (*platformElasticsearch.ESClientWrapper, error) {
	client, err := platformElasticsearch.NewClient(cfg, zapLogger)
	if err != nil || client == nil {
		return nil, err
	}
	if err := platformElasticsearch.CreateUploadsIndexIfNotExists(context.Background(), client, zapLogger); err != nil {
		zapLogger.Error("Failed to create Elasticsearch uploads index", zap.Error(err))
	}
	return client, nil
}

// provideLimiter returns a nil Limiter, not a typed nil, when Redis is not configured.
func provideLimiter(cfg *config.Config, zapLogger *zap.Logger) (middleware.Limiter, func(), error) {
	limiter, err := ratelimit.NewFromConfig(cfg, zapLogger)
	if err != nil {
		return nil, nil, err
	}
	if limiter == nil {
		return nil, func() {}, nil
	}
	return limiter, func() {
		if err := limiter.Close(); err != nil {
			zapLogger.Warn("Failed to close rate limiter", zap.Error(err))
		}
	}, nil
}

func provideBroadcaster(service notification.Service) upload.Broadcaster {
	return service
}

func providePendingSource(service upload.Service) jobs.PendingSource {
	return service
}
