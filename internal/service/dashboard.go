package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/common/database"
	mqttcommon "github.com/mandaraliyanage/ECDWA-Medisis/common/mqtt"
	rediscommon "github.com/mandaraliyanage/ECDWA-Medisis/common/redis"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/aggregator"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/config"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/consumer"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/export"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/query"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DataProvider supplies the raw collections of one snapshot
type DataProvider interface {
	GetPatients(ctx context.Context) ([]models.Patient, error)
	GetAlerts(ctx context.Context) ([]models.Alert, error)
	GetStats(ctx context.Context) (*models.RawStats, error)
}

// Subscriber is the MQTT side of the mqtt trigger mode
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
	Disconnect()
}

// EventSnapshotRefreshed is published to the updates stream after each refresh
const EventSnapshotRefreshed = "snapshot.refreshed"

// DashboardService owns the current snapshot and serves the derived views
type DashboardService struct {
	config   *config.Config
	logger   *zap.Logger
	provider DataProvider
	loc      *time.Location
	now      func() time.Time

	db           *sql.DB
	redisClient  *redis.Client
	mqttClient   Subscriber
	cacheManager *aggregator.CacheManager
	exporter     *export.Exporter

	memo *query.Memo

	refreshMu sync.Mutex // serializes refreshes
	mu        sync.RWMutex
	snapshot  models.Snapshot
}

// Option configures optional infrastructure
type Option func(*DashboardService)

// WithDB hands the database over so Stop closes it
func WithDB(db *sql.DB) Option {
	return func(s *DashboardService) { s.db = db }
}

// WithRedis enables the events trigger mode and the updates stream
func WithRedis(client *redis.Client) Option {
	return func(s *DashboardService) { s.redisClient = client }
}

// WithMQTT enables the mqtt trigger mode
func WithMQTT(client Subscriber) Option {
	return func(s *DashboardService) { s.mqttClient = client }
}

// WithCache publishes each overview through the cache manager
func WithCache(cm *aggregator.CacheManager) Option {
	return func(s *DashboardService) { s.cacheManager = cm }
}

// WithExporter writes XLSX views after each refresh
func WithExporter(e *export.Exporter) Option {
	return func(s *DashboardService) { s.exporter = e }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) { s.now = now }
}

// NewDashboardService creates the dashboard service
func NewDashboardService(cfg *config.Config, provider DataProvider, logger *zap.Logger, opts ...Option) (*DashboardService, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if provider == nil {
		return nil, errors.New("data provider is required")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	s := &DashboardService{
		config:   cfg,
		logger:   logger,
		provider: provider,
		loc:      loc,
		now:      time.Now,
		memo:     query.NewMemo(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Refresh fetches a new snapshot and installs it. Patients and alerts are
// required: if either fails the previous snapshot stays in place. A stats
// failure only drops the server statistics.
func (s *DashboardService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	patients, err := s.provider.GetPatients(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch patients: %w", err)
	}
	alerts, err := s.provider.GetAlerts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch alerts: %w", err)
	}
	stats, err := s.provider.GetStats(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch server stats, using local derivations", zap.Error(err))
		stats = nil
	}

	snap := models.Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: s.now(),
		Patients:  patients,
		Alerts:    alerts,
		Stats:     stats,
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.logger.Info("Installed snapshot",
		zap.String("snapshot_id", snap.ID),
		zap.Int("patients", len(patients)),
		zap.Int("alerts", len(alerts)),
		zap.Bool("server_stats", stats != nil),
	)

	s.publish(ctx, snap)
	return nil
}

// publish pushes the new snapshot to the cache, the export dir and the
// updates stream. Failures are logged; the snapshot is already installed.
func (s *DashboardService) publish(ctx context.Context, snap models.Snapshot) {
	if s.cacheManager != nil {
		ov := aggregator.BuildOverview(snap, snap.FetchedAt, s.loc)
		if err := s.cacheManager.UpdateOverviewCache(ctx, &ov); err != nil {
			s.logger.Error("Failed to update overview cache", zap.Error(err))
		}
	}

	if s.exporter.Enabled() {
		pq, aq := s.exportQueries()
		patients := s.QueryPatients(pq)
		alerts := s.QueryAlerts(aq, snap.FetchedAt)
		if _, err := s.exporter.Export(snap.ID, patients, alerts); err != nil {
			s.logger.Error("Failed to export snapshot", zap.Error(err))
		}
	}

	if s.redisClient != nil && s.config.Dashboard.UpdatesStream != "" {
		event := map[string]interface{}{
			"event_type":  EventSnapshotRefreshed,
			"snapshot_id": snap.ID,
			"patients":    len(snap.Patients),
			"alerts":      len(snap.Alerts),
		}
		if _, err := rediscommon.PublishJSONToStream(ctx, s.redisClient, s.config.Dashboard.UpdatesStream, event); err != nil {
			s.logger.Warn("Failed to publish snapshot event", zap.Error(err))
		}
	}
}

// exportQueries returns the default views adjusted by the export settings.
// Validate has already rejected unknown alert windows.
func (s *DashboardService) exportQueries() (query.PatientQuery, query.AlertQuery) {
	dir := query.ParseDirection(s.config.Dashboard.Export.SortDir)

	pq := query.DefaultPatientQuery()
	pq.Dir = dir

	aq := query.DefaultAlertQuery()
	aq.Dir = dir
	aq.Window, _ = timewindow.ParseWindow(s.config.Dashboard.Export.AlertWindow)
	return pq, aq
}

// Snapshot returns the current snapshot; the zero value before the first refresh
func (s *DashboardService) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// QueryPatients filters and sorts the current patients. A nil q.Location
// uses the configured dashboard timezone.
func (s *DashboardService) QueryPatients(q query.PatientQuery) []models.Patient {
	snap := s.Snapshot()
	if q.Location == nil {
		q.Location = s.loc
	}
	return s.memo.Patients(snap.ID, snap.Patients, q)
}

// QueryAlerts filters and sorts the current alerts relative to now
func (s *DashboardService) QueryAlerts(q query.AlertQuery, now time.Time) []models.Alert {
	snap := s.Snapshot()
	return s.memo.Alerts(snap.ID, snap.Alerts, q, now)
}

// Cards returns the patient cards of the dashboard: the first limit rows of
// the query result, optionally only online patients.
func (s *DashboardService) Cards(q query.PatientQuery, onlyOnline bool, limit int) []models.Patient {
	return query.Cards(s.QueryPatients(q), onlyOnline, limit)
}

// PatientStats aggregates the current patients
func (s *DashboardService) PatientStats() aggregator.PatientStats {
	return aggregator.AggregatePatientStats(s.Snapshot().Patients)
}

// AlertStats aggregates the current alerts relative to now
func (s *DashboardService) AlertStats(now time.Time) aggregator.AlertStats {
	return aggregator.AggregateAlertStats(s.Snapshot().Alerts, now)
}

// Overview derives the dashboard page from the current snapshot
func (s *DashboardService) Overview(now time.Time) aggregator.Overview {
	return aggregator.BuildOverview(s.Snapshot(), now, s.loc)
}

// SharedOverview reads the overview last published by any dashboard
// instance. It returns aggregator.ErrCacheMiss when caching is off or empty.
func (s *DashboardService) SharedOverview(ctx context.Context) (*aggregator.Overview, error) {
	if s.cacheManager == nil {
		return nil, aggregator.ErrCacheMiss
	}
	return s.cacheManager.GetOverview(ctx)
}

// Start runs an initial refresh and then blocks in the configured trigger mode
func (s *DashboardService) Start(ctx context.Context) error {
	s.logger.Info("Starting dashboard service",
		zap.String("data_source", s.config.Dashboard.DataSource),
		zap.String("trigger_mode", s.config.Dashboard.TriggerMode),
		zap.Bool("cache_enabled", s.cacheManager != nil),
	)

	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("Failed to refresh snapshot on startup", zap.Error(err))
	}

	switch s.config.Dashboard.TriggerMode {
	case config.TriggerPolling:
		return s.startPollingMode(ctx)
	case config.TriggerEvents:
		return s.startEventDrivenMode(ctx)
	case config.TriggerMQTT:
		return s.startMQTTMode(ctx)
	default:
		return fmt.Errorf("unsupported trigger mode: %s", s.config.Dashboard.TriggerMode)
	}
}

func (s *DashboardService) startPollingMode(ctx context.Context) error {
	interval := s.config.PollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting polling mode", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("Failed to refresh snapshot", zap.Error(err))
			}
		}
	}
}

func (s *DashboardService) startEventDrivenMode(ctx context.Context) error {
	if s.redisClient == nil {
		return fmt.Errorf("event consumer not initialized: redis client is required")
	}
	s.logger.Info("Starting event-driven mode")

	c := consumer.NewRefreshConsumer(
		s.redisClient,
		s,
		s.logger,
		s.config.Dashboard.RefreshStream,
		s.config.Dashboard.ConsumerGroup,
		s.config.Dashboard.ConsumerName,
		int64(s.config.Dashboard.BatchSize),
		0,
	)
	return c.Start(ctx)
}

// startMQTTMode refreshes on telemetry messages. Messages arriving while a
// refresh is pending collapse into that refresh.
func (s *DashboardService) startMQTTMode(ctx context.Context) error {
	if s.mqttClient == nil {
		return fmt.Errorf("mqtt client not initialized")
	}
	topic := s.config.Dashboard.MQTTTopic
	qos := s.config.MQTT.QoS

	signal := make(chan struct{}, 1)
	handler := func(string, []byte) error {
		select {
		case signal <- struct{}{}:
		default:
		}
		return nil
	}
	if err := s.mqttClient.Subscribe(topic, qos, handler); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	defer func() {
		if err := s.mqttClient.Unsubscribe(topic); err != nil {
			s.logger.Warn("Failed to unsubscribe", zap.String("topic", topic), zap.Error(err))
		}
	}()

	s.logger.Info("Starting mqtt mode", zap.String("topic", topic))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signal:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("Failed to refresh snapshot", zap.Error(err))
			}
		}
	}
}

// Stop releases the infrastructure handed to the service
func (s *DashboardService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping dashboard service")

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			s.logger.Error("Error closing redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("Error closing database connection", zap.Error(err))
		}
	}

	hits, misses := s.memo.Stats()
	s.logger.Info("Dashboard service stopped",
		zap.Int("memo_hits", hits),
		zap.Int("memo_misses", misses),
	)
	return nil
}
