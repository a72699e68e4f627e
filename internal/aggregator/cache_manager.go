package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/config"

	"go.uber.org/zap"
)

const defaultCacheTTL = time.Minute

// CacheManager publishes derived dashboard views to the shared KV store so
// every dashboard instance reads the same numbers.
type CacheManager struct {
	config *config.Config
	kv     KVStore
	logger *zap.Logger
}

// NewCacheManager creates a cache manager
func NewCacheManager(cfg *config.Config, kv KVStore, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config: cfg,
		kv:     kv,
		logger: logger,
	}
}

// LatestOverviewKey holds the overview of the newest snapshot
func (c *CacheManager) LatestOverviewKey() string {
	return fmt.Sprintf("%s:overview", c.prefix())
}

// SnapshotOverviewKey holds the overview of one snapshot
func (c *CacheManager) SnapshotOverviewKey(snapshotID string) string {
	return fmt.Sprintf("%s:snapshot:%s:overview", c.prefix(), snapshotID)
}

// UpdateOverviewCache writes ov under the latest key and its snapshot key
func (c *CacheManager) UpdateOverviewCache(ctx context.Context, ov *Overview) error {
	jsonData, err := json.Marshal(ov)
	if err != nil {
		return fmt.Errorf("failed to marshal overview: %w", err)
	}

	ttl := c.ttl()
	for _, key := range []string{c.SnapshotOverviewKey(ov.SnapshotID), c.LatestOverviewKey()} {
		if err := c.kv.Set(ctx, key, string(jsonData), ttl); err != nil {
			return fmt.Errorf("failed to set cache: %w", err)
		}
	}

	c.logger.Debug("Updated overview cache",
		zap.String("snapshot_id", ov.SnapshotID),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// GetOverview reads the latest cached overview. It returns ErrCacheMiss
// when nothing is cached.
func (c *CacheManager) GetOverview(ctx context.Context) (*Overview, error) {
	return c.getOverview(ctx, c.LatestOverviewKey())
}

// GetSnapshotOverview reads the cached overview of one snapshot.
func (c *CacheManager) GetSnapshotOverview(ctx context.Context, snapshotID string) (*Overview, error) {
	return c.getOverview(ctx, c.SnapshotOverviewKey(snapshotID))
}

func (c *CacheManager) getOverview(ctx context.Context, key string) (*Overview, error) {
	val, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get overview: %w", err)
	}

	var ov Overview
	if err := json.Unmarshal([]byte(val), &ov); err != nil {
		return nil, fmt.Errorf("failed to unmarshal overview: %w", err)
	}
	return &ov, nil
}

func (c *CacheManager) prefix() string {
	if c.config != nil && c.config.Dashboard.Cache.KeyPrefix != "" {
		return c.config.Dashboard.Cache.KeyPrefix
	}
	return "dashboard"
}

func (c *CacheManager) ttl() time.Duration {
	if c.config != nil && c.config.Dashboard.Cache.TTL > 0 {
		return c.config.CacheTTL()
	}
	return defaultCacheTTL
}
