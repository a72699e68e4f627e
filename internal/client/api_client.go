package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"go.uber.org/zap"
)

// ErrAPI is returned for non-2xx responses
var ErrAPI = errors.New("dashboard api error")

// APIClient fetches the dashboard collections from the HTTP API
type APIClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewAPIClient creates an API client
func NewAPIClient(baseURL string, timeout time.Duration, retryCount int, logger *zap.Logger) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Accept", "application/json")

	return &APIClient{
		httpClient: client,
		logger:     logger,
	}
}

// GetPatients calls GET /patients
func (c *APIClient) GetPatients(ctx context.Context) ([]models.Patient, error) {
	body, err := c.get(ctx, "/patients")
	if err != nil {
		return nil, err
	}
	patients := make([]models.Patient, 0)
	if err := decodeList(body, &patients); err != nil {
		return nil, fmt.Errorf("failed to decode patients: %w", err)
	}
	return patients, nil
}

// GetAlerts calls GET /alerts
func (c *APIClient) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	body, err := c.get(ctx, "/alerts")
	if err != nil {
		return nil, err
	}
	alerts := make([]models.Alert, 0)
	if err := decodeList(body, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	return alerts, nil
}

// GetStats calls GET /stats. An empty or null body means the server has no
// statistics and yields nil.
func (c *APIClient) GetStats(ctx context.Context) (*models.RawStats, error) {
	body, err := c.get(ctx, "/stats")
	if err != nil {
		return nil, err
	}
	payload := unwrap(body)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, nil
	}
	var stats models.RawStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return &stats, nil
}

func (c *APIClient) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		c.logger.Error("Dashboard API call failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call %s: %w", path, err)
	}

	if resp.IsError() {
		c.logger.Error("Dashboard API returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrAPI, path, resp.StatusCode())
	}

	c.logger.Debug("Dashboard API call succeeded",
		zap.String("path", path),
		zap.Duration("latency", resp.Time()),
	)
	return resp.Body(), nil
}

// decodeList accepts a bare JSON array or a {"data": [...]} envelope.
// A null or missing list decodes to an empty one.
func decodeList(body []byte, out any) error {
	payload := unwrap(body)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil
	}
	return json.Unmarshal(payload, out)
}

func unwrap(body []byte) []byte {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Data == nil {
		return body
	}
	return bytes.TrimSpace(envelope.Data)
}
