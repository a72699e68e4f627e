package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"

	"go.uber.org/zap"
)

// SnapshotRepository reads the dashboard collections from Postgres. It only
// issues SELECTs.
type SnapshotRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// GetPatients returns every patient with their latest vitals
func (r *SnapshotRepository) GetPatients(ctx context.Context) ([]models.Patient, error) {
	query := `
		SELECT
			p.patient_id,
			p.name,
			p.gender,
			p.age,
			p.medical_conditions,
			p.connection_status,
			p.heart_rate,
			p.oxygen_level,
			p.last_reading
		FROM patients p
		ORDER BY p.patient_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients := make([]models.Patient, 0)
	for rows.Next() {
		var (
			patientID, name, gender, conditions, status sql.NullString
			age, heartRate, oxygen                      sql.NullFloat64
			lastReading                                 sql.NullTime
		)
		if err := rows.Scan(
			&patientID,
			&name,
			&gender,
			&age,
			&conditions,
			&status,
			&heartRate,
			&oxygen,
			&lastReading,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}

		patients = append(patients, models.Patient{
			PatientID:         models.Text(patientID.String),
			Name:              models.Text(name.String),
			Gender:            models.Text(gender.String),
			Age:               reading(age),
			MedicalConditions: models.Text(conditions.String),
			ConnectionStatus:  models.Text(status.String),
			HeartRate:         reading(heartRate),
			OxygenLevel:       reading(oxygen),
			LastReading:       timestamp(lastReading),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	r.logger.Debug("Loaded patients", zap.Int("count", len(patients)))
	return patients, nil
}

// GetAlerts returns every alert with the name of its patient
func (r *SnapshotRepository) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	query := `
		SELECT
			a.alert_id,
			a.patient_id,
			COALESCE(p.name, '') AS patient_name,
			a.severity_level,
			a.resolved,
			a.issue_detected,
			a.message,
			a.datetime
		FROM alerts a
		LEFT JOIN patients p ON p.patient_id = a.patient_id
		ORDER BY a.datetime DESC NULLS LAST
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		var (
			alertID, patientID, patientName, severity, issue, message sql.NullString
			resolved                                                  sql.NullBool
			datetime                                                  sql.NullTime
		)
		if err := rows.Scan(
			&alertID,
			&patientID,
			&patientName,
			&severity,
			&resolved,
			&issue,
			&message,
			&datetime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		alerts = append(alerts, models.Alert{
			AlertID:       models.Text(alertID.String),
			PatientID:     models.Text(patientID.String),
			PatientName:   models.Text(patientName.String),
			SeverityLevel: models.Text(severity.String),
			Resolved:      models.Flag(resolved.Valid && resolved.Bool),
			IssueDetected: models.Text(issue.String),
			Message:       models.Text(message.String),
			Datetime:      timestamp(datetime),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	r.logger.Debug("Loaded alerts", zap.Int("count", len(alerts)))
	return alerts, nil
}

// GetStats returns the latest server-side statistics row, or nil when the
// table is empty. NULL columns stay nil so the overview falls back to local
// derivations for them.
func (r *SnapshotRepository) GetStats(ctx context.Context) (*models.RawStats, error) {
	query := `
		SELECT
			total_patients,
			active_patients,
			critical_alerts_today,
			unresolved_alerts,
			avg_heart_rate_today,
			avg_oxygen_level_today,
			total_alerts_today
		FROM dashboard_stats
		ORDER BY computed_at DESC
		LIMIT 1
	`

	var (
		total, active, critical, unresolved, alertsToday sql.NullInt64
		avgHR, avgOxygen                                 sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, query).Scan(
		&total,
		&active,
		&critical,
		&unresolved,
		&avgHR,
		&avgOxygen,
		&alertsToday,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query dashboard stats: %w", err)
	}

	return &models.RawStats{
		TotalPatients:       intPtr(total),
		ActivePatients:      intPtr(active),
		CriticalAlertsToday: intPtr(critical),
		UnresolvedAlerts:    intPtr(unresolved),
		AvgHeartRateToday:   floatPtr(avgHR),
		AvgOxygenLevelToday: floatPtr(avgOxygen),
		TotalAlertsToday:    intPtr(alertsToday),
	}, nil
}

func reading(v sql.NullFloat64) models.Reading {
	if !v.Valid {
		return models.Reading{}
	}
	return models.Some(v.Float64)
}

// timestamp renders database times the way the API does (RFC 3339, UTC).
func timestamp(v sql.NullTime) models.Text {
	if !v.Valid {
		return ""
	}
	return models.Text(v.Time.UTC().Format(time.RFC3339Nano))
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
