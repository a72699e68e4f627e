package service

import (
	"context"
	"fmt"

	"github.com/mandaraliyanage/ECDWA-Medisis/common/database"
	mqttcommon "github.com/mandaraliyanage/ECDWA-Medisis/common/mqtt"
	rediscommon "github.com/mandaraliyanage/ECDWA-Medisis/common/redis"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/aggregator"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/client"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/config"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/export"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// NewFromConfig connects the configured data source, Redis and MQTT and
// builds the dashboard service on top of them. Connections opened before a
// failing step are closed again.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (svc *DashboardService, err error) {
	var opts []Option
	var closers []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var provider DataProvider
	switch cfg.Dashboard.DataSource {
	case config.SourcePostgres:
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() {
			if cerr := database.Close(db); cerr != nil {
				logger.Warn("Failed to close database", zap.Error(cerr))
			}
		})
		provider = repository.NewSnapshotRepository(db, logger)
		opts = append(opts, WithDB(db))
	default:
		provider = client.NewAPIClient(
			cfg.Dashboard.API.BaseURL,
			cfg.APITimeout(),
			cfg.Dashboard.API.RetryCount,
			logger,
		)
	}

	// Redis backs the overview cache, the events trigger and the updates stream
	var redisClient *redis.Client
	if cfg.Dashboard.Cache.Enabled || cfg.Dashboard.TriggerMode == config.TriggerEvents || cfg.Dashboard.UpdatesStream != "" {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		closers = append(closers, func() {
			if cerr := rediscommon.Close(redisClient); cerr != nil {
				logger.Warn("Failed to close redis", zap.Error(cerr))
			}
		})
		if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		opts = append(opts, WithRedis(redisClient))
	}

	if cfg.Dashboard.Cache.Enabled {
		kv := aggregator.NewRedisKVStore(redisClient)
		opts = append(opts, WithCache(aggregator.NewCacheManager(cfg, kv, logger)))
	}

	if cfg.Dashboard.TriggerMode == config.TriggerMQTT {
		mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mqtt: %w", err)
		}
		closers = append(closers, mqttClient.Disconnect)
		opts = append(opts, WithMQTT(mqttClient))
	}

	if cfg.Dashboard.Export.Dir != "" {
		opts = append(opts, WithExporter(export.NewExporter(cfg.Dashboard.Export.Dir, logger)))
	}

	return NewDashboardService(cfg, provider, logger, opts...)
}
