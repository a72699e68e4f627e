package models

import (
	"encoding/json"
	"math"
	"time"
)

// RawStats are the overview numbers computed by the server. Any field may be
// missing, in which case the dashboard derives it from the raw collections.
type RawStats struct {
	TotalPatients       *int     `json:"total_patients,omitempty"`
	ActivePatients      *int     `json:"active_patients,omitempty"`
	CriticalAlertsToday *int     `json:"critical_alerts_today,omitempty"`
	UnresolvedAlerts    *int     `json:"unresolved_alerts,omitempty"`
	AvgHeartRateToday   *float64 `json:"avg_heart_rate_today,omitempty"`
	AvgOxygenLevelToday *float64 `json:"avg_oxygen_level_today,omitempty"`
	TotalAlertsToday    *int     `json:"total_alerts_today,omitempty"`
}

// UnmarshalJSON decodes each field like a Reading: numbers and numeric
// strings are accepted (counts are rounded), anything else leaves the field
// nil without failing the other fields.
func (s *RawStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		TotalPatients       Reading `json:"total_patients"`
		ActivePatients      Reading `json:"active_patients"`
		CriticalAlertsToday Reading `json:"critical_alerts_today"`
		UnresolvedAlerts    Reading `json:"unresolved_alerts"`
		AvgHeartRateToday   Reading `json:"avg_heart_rate_today"`
		AvgOxygenLevelToday Reading `json:"avg_oxygen_level_today"`
		TotalAlertsToday    Reading `json:"total_alerts_today"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = RawStats{
		TotalPatients:       raw.TotalPatients.intPtr(),
		ActivePatients:      raw.ActivePatients.intPtr(),
		CriticalAlertsToday: raw.CriticalAlertsToday.intPtr(),
		UnresolvedAlerts:    raw.UnresolvedAlerts.intPtr(),
		AvgHeartRateToday:   raw.AvgHeartRateToday.floatPtr(),
		AvgOxygenLevelToday: raw.AvgOxygenLevelToday.floatPtr(),
		TotalAlertsToday:    raw.TotalAlertsToday.intPtr(),
	}
	return nil
}

func (r Reading) intPtr() *int {
	v, ok := r.Get()
	if !ok {
		return nil
	}
	i := int(math.Round(v))
	return &i
}

func (r Reading) floatPtr() *float64 {
	v, ok := r.Get()
	if !ok {
		return nil
	}
	return &v
}

// Snapshot is one refresh worth of data. Snapshots are never mutated after
// they are built; a refresh replaces the whole value.
type Snapshot struct {
	ID        string    `json:"id"`
	FetchedAt time.Time `json:"fetched_at"`
	Patients  []Patient `json:"patients"`
	Alerts    []Alert   `json:"alerts"`
	Stats     *RawStats `json:"stats,omitempty"`
}
