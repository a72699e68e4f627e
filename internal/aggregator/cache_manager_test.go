package aggregator_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	agg "github.com/mandaraliyanage/ECDWA-Medisis/internal/aggregator"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCacheManager_UpdateOverviewCache_WritesJSON(t *testing.T) {
	kv := newFakeKVStore()
	cfg := &config.Config{}
	cfg.Dashboard.Cache.TTL = 15
	cfg.Dashboard.Cache.KeyPrefix = "ward-3"

	cm := agg.NewCacheManager(cfg, kv, zap.NewNop())

	ov := &agg.Overview{
		SnapshotID:     "snap-1",
		TotalPatients:  12,
		ActivePercent:  50,
		HeartRateGauge: 41,
	}
	require.NoError(t, cm.UpdateOverviewCache(context.Background(), ov))

	assert.Equal(t, 15*time.Second, kv.ttlOf("ward-3:overview"))
	assert.Equal(t, 15*time.Second, kv.ttlOf("ward-3:snapshot:snap-1:overview"))

	latest, err := cm.GetOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snap-1", latest.SnapshotID)
	assert.Equal(t, 12, latest.TotalPatients)

	bySnap, err := cm.GetSnapshotOverview(context.Background(), "snap-1")
	require.NoError(t, err)
	assert.Equal(t, 41, bySnap.HeartRateGauge)
}

func TestCacheManager_GetOverview_Miss(t *testing.T) {
	cm := agg.NewCacheManager(&config.Config{}, newFakeKVStore(), zap.NewNop())

	_, err := cm.GetOverview(context.Background())
	assert.ErrorIs(t, err, agg.ErrCacheMiss)
	assert.Equal(t, "dashboard:overview", cm.LatestOverviewKey())
}

func TestCacheManager_GetOverview_CorruptValue(t *testing.T) {
	kv := newFakeKVStore()
	require.NoError(t, kv.Set(context.Background(), "dashboard:overview", "{not json", 0))

	cm := agg.NewCacheManager(&config.Config{}, kv, zap.NewNop())
	_, err := cm.GetOverview(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal overview")
}

func TestRedisKVStore_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := agg.NewRedisKVStore(client)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, agg.ErrCacheMiss)

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	val, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
	assert.Equal(t, time.Minute, mr.TTL("k"))
}
