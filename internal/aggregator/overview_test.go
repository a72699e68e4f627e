package aggregator_test

import (
	"testing"
	"time"

	agg "github.com/mandaraliyanage/ECDWA-Medisis/internal/aggregator"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"github.com/stretchr/testify/assert"
)

func overviewSnapshot() models.Snapshot {
	return models.Snapshot{
		ID: "snap-1",
		Patients: []models.Patient{
			{PatientID: "P1", ConnectionStatus: "Online", HeartRate: models.Some(80), OxygenLevel: models.Some(98)},
			{PatientID: "P2", ConnectionStatus: "Offline", HeartRate: models.Some(0), OxygenLevel: models.Some(92)},
			{PatientID: "P3", ConnectionStatus: "Online", HeartRate: models.Some(130), OxygenLevel: models.Some(85)},
		},
		Alerts: []models.Alert{
			{AlertID: "a1", SeverityLevel: "HIGH", Datetime: "2024-01-10T11:00:00Z"},
			{AlertID: "a2", SeverityLevel: "info", Resolved: true, Datetime: "garbage"},
		},
	}
}

func TestBuildOverview_LocalFallbacks(t *testing.T) {
	ov := agg.BuildOverview(overviewSnapshot(), now, time.UTC)

	assert.Equal(t, "snap-1", ov.SnapshotID)
	assert.Equal(t, 3, ov.TotalPatients)
	assert.Equal(t, 2, ov.ActivePatients)
	// P2 reports a heart rate of 0, which classifies as critical
	assert.Equal(t, 2, ov.CriticalPatients)
	assert.Equal(t, 1, ov.UnresolvedAlerts)
	assert.Equal(t, 105.0, ov.AvgHeartRate)
	assert.Equal(t, 92.0, ov.AvgOxygen)
	assert.Equal(t, 2, ov.TotalAlertsToday)

	assert.Equal(t, 67, ov.ActivePercent)
	assert.Equal(t, 81, ov.HeartRateGauge)
	assert.Equal(t, 47, ov.OxygenGauge)
	assert.Equal(t, 8, ov.AlertDensity)

	assert.Equal(t, map[string]int{"ok": 50, "warn": 0, "crit": 50}, ov.HeartRateDistribution.Percentages())
	assert.Equal(t, map[string]int{"ok": 33, "warn": 33, "crit": 33}, ov.OxygenDistribution.Percentages())
	assert.Equal(t, 1, ov.AlertsByHour[11])
	assert.Equal(t, 54, ov.HourBars[11])
	assert.Equal(t, "M 6 48 L 214 6", ov.HeartRateSparkline)
	assert.Equal(t, 1, ov.Alerts.Last24h)
}

func TestBuildOverview_ServerStatsTakePrecedence(t *testing.T) {
	total, active, zero := 10, 4, 0
	avgHR := 72.5
	snap := overviewSnapshot()
	snap.Stats = &models.RawStats{
		TotalPatients:       &total,
		ActivePatients:      &active,
		CriticalAlertsToday: &zero,
		AvgHeartRateToday:   &avgHR,
	}

	ov := agg.BuildOverview(snap, now, time.UTC)

	assert.Equal(t, 10, ov.TotalPatients)
	assert.Equal(t, 4, ov.ActivePatients)
	assert.Equal(t, 0, ov.CriticalPatients)
	assert.Equal(t, 40, ov.ActivePercent)
	assert.Equal(t, 72.5, ov.AvgHeartRate)
	assert.Equal(t, 41, ov.HeartRateGauge)
	// fields the server left out still come from the collections
	assert.Equal(t, 92.0, ov.AvgOxygen)
	assert.Equal(t, 1, ov.UnresolvedAlerts)
	// local derivations are kept alongside
	assert.Equal(t, 3, ov.Patients.Total)
}

func TestBuildOverview_EmptySnapshot(t *testing.T) {
	ov := agg.BuildOverview(models.Snapshot{}, now, time.UTC)
	assert.Equal(t, 0, ov.ActivePercent)
	assert.Equal(t, 0, ov.HeartRateGauge)
	assert.Equal(t, 0, ov.OxygenGauge)
	assert.Equal(t, "", ov.HeartRateSparkline)
	assert.Equal(t, 3, ov.HourBars[0])
}

func TestResolveStat(t *testing.T) {
	v := 7
	assert.Equal(t, 7, agg.ResolveStat(&v, 3))
	assert.Equal(t, 3, agg.ResolveStat[int](nil, 3))
}

func TestHeartRateSparkline_SamplesFirstFortySorted(t *testing.T) {
	values := make([]float64, 0, 50)
	for i := 50; i > 0; i-- {
		values = append(values, float64(i))
	}
	p := agg.HeartRateSparkline(values)
	assert.Len(t, p.Points, 40)
	assert.Equal(t, 48.0, p.Points[0].Y)
	assert.Equal(t, 6.0, p.Points[39].Y)
	assert.Equal(t, 50.0, values[0])
}
