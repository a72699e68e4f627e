package query

import (
	"testing"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"
	"github.com/stretchr/testify/assert"
)

func TestMemo_ReusesResultForSameSnapshotAndQuery(t *testing.T) {
	m := NewMemo()
	rows := patientFixture()
	q := DefaultPatientQuery()

	first := m.Patients("snap-1", rows, q)
	second := m.Patients("snap-1", rows, q)

	assert.Equal(t, first, second)
	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestMemo_InvalidatesOnQueryOrSnapshotChange(t *testing.T) {
	m := NewMemo()
	rows := patientFixture()
	q := DefaultPatientQuery()

	m.Patients("snap-1", rows, q)
	q.Search = "alice"
	assert.Equal(t, []string{"P2"}, patientIDs(m.Patients("snap-1", rows, q)))

	q.Search = ""
	got := m.Patients("snap-2", rows[:1], q)
	assert.Equal(t, []string{"P10"}, patientIDs(got))

	hits, misses := m.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 3, misses)
}

func TestMemo_ReturnsCopies(t *testing.T) {
	m := NewMemo()
	rows := patientFixture()

	got := m.Patients("snap-1", rows, DefaultPatientQuery())
	got[0].Name = "changed"

	again := m.Patients("snap-1", rows, DefaultPatientQuery())
	assert.Equal(t, "alice", string(again[0].Name))
}

func TestMemo_AlertsKeyedByNowOnlyForBoundedWindows(t *testing.T) {
	m := NewMemo()
	rows := alertFixture()

	q := DefaultAlertQuery()
	m.Alerts("snap-1", rows, q, fixedNow)
	m.Alerts("snap-1", rows, q, fixedNow.Add(1))
	hits, _ := m.Stats()
	assert.Equal(t, 1, hits)

	q.Window = timewindow.Last24h
	m.Alerts("snap-1", rows, q, fixedNow)
	m.Alerts("snap-1", rows, q, fixedNow.Add(1))
	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 3, misses)
}
