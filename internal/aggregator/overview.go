package aggregator

import (
	"sort"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/chart"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
)

// sparklineSampleSize caps the heart-rate sparkline.
const sparklineSampleSize = 40

// Overview is the derived content of the dashboard page.
type Overview struct {
	SnapshotID  string    `json:"snapshot_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Headline numbers: server-supplied where present, else local.
	TotalPatients    int     `json:"total_patients"`
	ActivePatients   int     `json:"active_patients"`
	CriticalPatients int     `json:"critical_patients"`
	UnresolvedAlerts int     `json:"unresolved_alerts"`
	AvgHeartRate     float64 `json:"avg_heart_rate"`
	AvgOxygen        float64 `json:"avg_oxygen"`
	TotalAlertsToday int     `json:"total_alerts_today"`

	ActivePercent  int `json:"active_percent"`
	HeartRateGauge int `json:"heart_rate_gauge"`
	OxygenGauge    int `json:"oxygen_gauge"`
	AlertDensity   int `json:"alert_density"`

	HeartRateDistribution Distribution `json:"heart_rate_distribution"`
	OxygenDistribution    Distribution `json:"oxygen_distribution"`
	AlertsByHour          [24]int      `json:"alerts_by_hour"`
	HourBars              [24]int      `json:"hour_bars"`
	HeartRateSparkline    string       `json:"heart_rate_sparkline"`

	// Local derivations, always computed from the raw collections.
	Patients PatientStats `json:"patients"`
	Alerts   AlertStats   `json:"alerts"`
}

// ResolveStat prefers the server-supplied value and falls back to the local one.
func ResolveStat[T any](server *T, local T) T {
	if server != nil {
		return *server
	}
	return local
}

// BuildOverview derives the dashboard from one snapshot. now anchors the
// 24-hour counters and loc the hour-of-day buckets.
func BuildOverview(snap models.Snapshot, now time.Time, loc *time.Location) Overview {
	ps := AggregatePatientStats(snap.Patients)
	as := AggregateAlertStats(snap.Alerts, now)

	stats := snap.Stats
	if stats == nil {
		stats = &models.RawStats{}
	}

	ov := Overview{
		SnapshotID:  snap.ID,
		GeneratedAt: now,
		Patients:    ps,
		Alerts:      as,

		TotalPatients:    ResolveStat(stats.TotalPatients, ps.Total),
		ActivePatients:   ResolveStat(stats.ActivePatients, ps.Active),
		CriticalPatients: ResolveStat(stats.CriticalAlertsToday, ps.Critical),
		UnresolvedAlerts: ResolveStat(stats.UnresolvedAlerts, as.Unresolved),
		AvgHeartRate:     ResolveStat(stats.AvgHeartRateToday, float64(Round(ps.AvgHeartRate))),
		AvgOxygen:        ResolveStat(stats.AvgOxygenLevelToday, float64(Round(ps.AvgOxygen))),
		TotalAlertsToday: ResolveStat(stats.TotalAlertsToday, as.Total),
	}

	ov.ActivePercent = Percent(ov.ActivePatients, ov.TotalPatients)
	ov.HeartRateGauge = Clamp(Round((ov.AvgHeartRate-40)/(120-40)*100), 0, 100)
	ov.OxygenGauge = Clamp(Round((ov.AvgOxygen-85)/(100-85)*100), 0, 100)
	ov.AlertDensity = Clamp(ov.TotalAlertsToday*4, 0, 100)

	hr := HeartRateValues(snap.Patients)
	ov.HeartRateDistribution = Distribute(hr, HeartRateRules)
	ov.OxygenDistribution = Distribute(OxygenValues(snap.Patients), OxygenRules)
	ov.AlertsByHour = HourlyHistogram(snap.Alerts, loc)
	ov.HourBars = BarHeights(ov.AlertsByHour, BarMaxHeight, BarMinHeight)
	ov.HeartRateSparkline = HeartRateSparkline(hr).String()

	return ov
}

// HeartRateSparkline draws the first readings of the sample in ascending
// order on the default frame.
func HeartRateSparkline(values []float64) chart.Path {
	n := len(values)
	if n > sparklineSampleSize {
		n = sparklineSampleSize
	}
	sample := make([]float64, n)
	copy(sample, values[:n])
	sort.Float64s(sample)
	return chart.Sparkline(sample, chart.DefaultFrame)
}
