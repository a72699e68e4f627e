package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rediscommon "github.com/mandaraliyanage/ECDWA-Medisis/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Refresh event types published by the data side.
const (
	EventPatientsChanged = "patients.changed"
	EventAlertsChanged   = "alerts.changed"
	EventStatsChanged    = "stats.changed"
	EventRefresh         = "refresh"
)

// Refresher rebuilds the dashboard snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshConsumer turns Redis Streams change events into snapshot refreshes
type RefreshConsumer struct {
	redisClient  *redis.Client
	refresher    Refresher
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
}

// RefreshEvent is the payload of a change event
type RefreshEvent struct {
	EventType string `json:"event_type"`
	Source    string `json:"source,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewRefreshConsumer creates a refresh consumer
func NewRefreshConsumer(
	redisClient *redis.Client,
	refresher Refresher,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	block time.Duration,
) *RefreshConsumer {
	if block <= 0 {
		block = 2 * time.Second
	}
	return &RefreshConsumer{
		redisClient:  redisClient,
		refresher:    refresher,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        block,
	}
}

// Start consumes until ctx is done
func (c *RefreshConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Refresh consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeEvents(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("Failed to consume refresh events",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

// consumeEvents reads one batch. Entries left pending by a failed refresh
// are read before new ones. A batch with any valid event causes a single
// refresh; its entries are acked only when the refresh succeeds.
func (c *RefreshConsumer) consumeEvents(ctx context.Context) error {
	messages, err := rediscommon.ReadPendingFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read pending entries: %w", err)
	}
	if len(messages) > 0 {
		c.logger.Info("Retrying pending refresh events", zap.Int("count", len(messages)))
	} else {
		messages, err = rediscommon.ReadFromStream(
			ctx,
			c.redisClient,
			c.stream,
			c.groupName,
			c.consumerName,
			c.batchSize,
			c.block,
		)
		if err != nil {
			return fmt.Errorf("failed to read from stream: %w", err)
		}
	}
	if len(messages) == 0 {
		return nil
	}

	var pending []string
	for _, msg := range messages {
		event, err := c.parseEvent(msg)
		if err != nil {
			// malformed entries would otherwise be redelivered forever
			c.logger.Warn("Dropping malformed refresh event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			c.ackMessage(ctx, msg.ID)
			continue
		}
		if !isKnownEvent(event.EventType) {
			c.logger.Warn("Unknown event type",
				zap.String("event_type", event.EventType),
			)
			c.ackMessage(ctx, msg.ID)
			continue
		}
		pending = append(pending, msg.ID)
	}
	if len(pending) == 0 {
		return nil
	}

	c.logger.Info("Processing refresh events", zap.Int("count", len(pending)))
	if err := c.refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh snapshot: %w", err)
	}
	c.ackMessage(ctx, pending...)
	return nil
}

// parseEvent reads the JSON "data" field, else the flat stream fields
func (c *RefreshConsumer) parseEvent(msg rediscommon.StreamMessage) (*RefreshEvent, error) {
	if dataStr, ok := msg.Values["data"].(string); ok {
		var event RefreshEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err == nil && event.EventType != "" {
			return &event, nil
		}
	}

	event := &RefreshEvent{}
	if eventType, ok := msg.Values["event_type"].(string); ok {
		event.EventType = eventType
	}
	if source, ok := msg.Values["source"].(string); ok {
		event.Source = source
	}
	if patientID, ok := msg.Values["patient_id"].(string); ok {
		event.PatientID = patientID
	}

	if event.EventType == "" {
		return nil, fmt.Errorf("invalid event: missing event_type")
	}
	return event, nil
}

func (c *RefreshConsumer) ackMessage(ctx context.Context, ids ...string) {
	if err := rediscommon.Ack(ctx, c.redisClient, c.stream, c.groupName, ids...); err != nil {
		c.logger.Warn("Failed to ack message",
			zap.Strings("message_ids", ids),
			zap.Error(err),
		)
	}
}

func isKnownEvent(eventType string) bool {
	switch eventType {
	case EventPatientsChanged, EventAlertsChanged, EventStatsChanged, EventRefresh:
		return true
	}
	return false
}
