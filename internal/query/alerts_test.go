package query

import (
	"testing"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func alertFixture() []models.Alert {
	return []models.Alert{
		{AlertID: "a1", PatientID: "P2", PatientName: "Bob", SeverityLevel: "HIGH", Resolved: false,
			IssueDetected: "Tachycardia", Message: "HR 130", Datetime: "2024-01-10T08:00:00Z"},
		{AlertID: "a2", PatientID: "P1", PatientName: "Alice", SeverityLevel: "medium", Resolved: true,
			IssueDetected: "Low SpO2", Message: "SpO2 92", Datetime: "2024-01-05T08:00:00Z"},
		{AlertID: "a3", PatientID: "P3", PatientName: "Carol", SeverityLevel: "note", Resolved: false,
			IssueDetected: "Sensor", Message: "lead off", Datetime: "garbage"},
		{AlertID: "a4", PatientID: "P1", PatientName: "Alice", SeverityLevel: "critical", Resolved: true,
			IssueDetected: "Bradycardia", Message: "HR 42", Datetime: "2023-11-01T08:00:00Z"},
	}
}

func alertIDs(rows []models.Alert) []string {
	ids := make([]string, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, string(a.AlertID))
	}
	return ids
}

func TestAlerts_DatetimeDescScenario(t *testing.T) {
	rows := []models.Alert{
		{AlertID: "alert1", SeverityLevel: "Critical", Resolved: false, Datetime: "2024-01-01T10:00:00Z"},
		{AlertID: "alert2", SeverityLevel: "info", Resolved: true, Datetime: "2024-01-02T10:00:00Z"},
	}
	got := Alerts(rows, AlertQuery{Window: timewindow.All, Sort: SortDatetime, Dir: Desc}, fixedNow)
	assert.Equal(t, []string{"alert2", "alert1"}, alertIDs(got))
}

func TestAlerts_DefaultQueryNewestFirstUnparsableLast(t *testing.T) {
	got := Alerts(alertFixture(), DefaultAlertQuery(), fixedNow)
	assert.Equal(t, []string{"a1", "a2", "a4", "a3"}, alertIDs(got))

	q := DefaultAlertQuery()
	q.Dir = Asc
	got = Alerts(alertFixture(), q, fixedNow)
	assert.Equal(t, []string{"a3", "a4", "a2", "a1"}, alertIDs(got))
}

func TestAlerts_TimeWindow(t *testing.T) {
	q := DefaultAlertQuery()

	q.Window = timewindow.Last24h
	assert.Equal(t, []string{"a1"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Window = timewindow.Last7d
	assert.Equal(t, []string{"a1", "a2"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Window = timewindow.Last30d
	assert.Equal(t, []string{"a1", "a2"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))
}

func TestAlerts_SeverityFilterUsesNormalizedSeverity(t *testing.T) {
	q := DefaultAlertQuery()

	q.Severity = "critical"
	assert.Equal(t, []string{"a1", "a4"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Severity = "Info"
	assert.Equal(t, []string{"a3"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Severity = "urgent"
	assert.Empty(t, Alerts(alertFixture(), q, fixedNow))
}

func TestAlerts_StatusFilter(t *testing.T) {
	q := DefaultAlertQuery()

	q.Status = StatusUnresolved
	assert.Equal(t, []string{"a1", "a3"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Status = StatusResolved
	assert.Equal(t, []string{"a2", "a4"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))
}

func TestAlerts_SearchFields(t *testing.T) {
	q := DefaultAlertQuery()

	q.Search = "alice"
	assert.Equal(t, []string{"a2", "a4"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Search = "LEAD"
	assert.Equal(t, []string{"a3"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Search = "high"
	assert.Equal(t, []string{"a1"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Search = "nobody"
	got := Alerts(alertFixture(), q, fixedNow)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAlerts_SortBySeverity(t *testing.T) {
	q := AlertQuery{Sort: SortSeverity, Dir: Desc}
	assert.Equal(t, []string{"a1", "a4", "a2", "a3"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Dir = Asc
	assert.Equal(t, []string{"a3", "a2", "a1", "a4"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))
}

func TestAlerts_SortByPatient(t *testing.T) {
	q := AlertQuery{Sort: SortPatient, Dir: Asc}
	assert.Equal(t, []string{"a2", "a4", "a1", "a3"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))
}

func TestAlerts_SortByStatus(t *testing.T) {
	q := AlertQuery{Sort: SortStatus, Dir: Asc}
	assert.Equal(t, []string{"a1", "a3", "a2", "a4"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))

	q.Dir = Desc
	assert.Equal(t, []string{"a2", "a4", "a1", "a3"}, alertIDs(Alerts(alertFixture(), q, fixedNow)))
}

func TestAlerts_StableForEqualTimestamps(t *testing.T) {
	rows := []models.Alert{
		{AlertID: "A", Datetime: "2024-01-01T00:00:01Z"},
		{AlertID: "B", Datetime: "2024-01-01T00:00:01Z"},
	}
	got := Alerts(rows, AlertQuery{Sort: SortDatetime, Dir: Asc}, fixedNow)
	assert.Equal(t, []string{"A", "B"}, alertIDs(got))
}
