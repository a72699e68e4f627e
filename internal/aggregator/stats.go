// Package aggregator derives summary statistics from patient and alert
// snapshots and keeps the derived dashboard view in a shared cache.
package aggregator

import (
	"math"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/classify"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"
)

// PatientStats summarizes a patient collection.
type PatientStats struct {
	Total         int     `json:"total"`
	Active        int     `json:"active"`
	Offline       int     `json:"offline"`
	Critical      int     `json:"critical"`
	ActivePercent int     `json:"active_percent"`
	AvgHeartRate  float64 `json:"avg_heart_rate"`
	AvgOxygen     float64 `json:"avg_oxygen"`
}

// AlertStats summarizes an alert collection.
type AlertStats struct {
	Total      int `json:"total"`
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Info       int `json:"info"`
	Unresolved int `json:"unresolved"`
	Last24h    int `json:"last_24h"`
}

// AggregatePatientStats counts online, offline and critical patients and
// averages the positive heart-rate and oxygen readings. Absent, zero and
// non-numeric readings are left out of the averages; with nothing left the
// average is 0.
func AggregatePatientStats(patients []models.Patient) PatientStats {
	s := PatientStats{Total: len(patients)}
	for _, p := range patients {
		switch p.Connection() {
		case models.ConnectionOnline:
			s.Active++
		case models.ConnectionOffline:
			s.Offline++
		}
		if classify.IsCritical(p) {
			s.Critical++
		}
	}
	s.ActivePercent = Percent(s.Active, s.Total)
	s.AvgHeartRate = Mean(HeartRateValues(patients))
	s.AvgOxygen = Mean(OxygenValues(patients))
	return s
}

// AggregateAlertStats counts alerts by normalized severity, unresolved alerts
// and alerts raised within 24 hours of now. Alerts with unparsable timestamps
// are not counted as recent.
func AggregateAlertStats(alerts []models.Alert, now time.Time) AlertStats {
	s := AlertStats{Total: len(alerts)}
	for _, a := range alerts {
		switch classify.ClassifySeverity(string(a.SeverityLevel)) {
		case classify.SeverityCritical:
			s.Critical++
		case classify.SeverityWarning:
			s.Warning++
		default:
			s.Info++
		}
		if !bool(a.Resolved) {
			s.Unresolved++
		}
		if timewindow.Within24h(string(a.Datetime), now) {
			s.Last24h++
		}
	}
	return s
}

// HeartRateValues returns the positive heart-rate readings in input order.
func HeartRateValues(patients []models.Patient) []float64 {
	out := make([]float64, 0, len(patients))
	for _, p := range patients {
		if p.HeartRate.Positive() {
			out = append(out, p.HeartRate.Value)
		}
	}
	return out
}

// OxygenValues returns the positive oxygen readings in input order.
func OxygenValues(patients []models.Patient) []float64 {
	out := make([]float64, 0, len(patients))
	for _, p := range patients {
		if p.OxygenLevel.Positive() {
			out = append(out, p.OxygenLevel.Value)
		}
	}
	return out
}

// Mean is the arithmetic mean, 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Percent returns round(part/total*100) clamped to [0,100]; 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return Clamp(Round(float64(part)/float64(total)*100), 0, 100)
}

// Round rounds half up, the way the dashboard has always displayed numbers.
func Round(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
