package query

import (
	"slices"
	"sync"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
)

const maxMemoEntries = 64

type alertMemoKey struct {
	q   AlertQuery
	loc *time.Location
	now int64
}

// Memo caches query results for one snapshot at a time. Results are keyed by
// the full query state; a different snapshot ID drops every entry.
// Alert results are also keyed by the zone of now, and by now itself under
// a bounded time window.
type Memo struct {
	mu         sync.Mutex
	snapshotID string
	patients   map[PatientQuery][]models.Patient
	alerts     map[alertMemoKey][]models.Alert
	hits       int
	misses     int
}

// NewMemo creates an empty memo.
func NewMemo() *Memo {
	return &Memo{
		patients: make(map[PatientQuery][]models.Patient),
		alerts:   make(map[alertMemoKey][]models.Alert),
	}
}

// Patients returns Patients(rows, q), reusing a previous result for the same
// snapshot and query.
func (m *Memo) Patients(snapshotID string, rows []models.Patient, q PatientQuery) []models.Patient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetIfStale(snapshotID)
	if cached, ok := m.patients[q]; ok {
		m.hits++
		return slices.Clone(cached)
	}
	m.misses++
	if len(m.patients) >= maxMemoEntries {
		clear(m.patients)
	}
	out := Patients(rows, q)
	m.patients[q] = out
	return slices.Clone(out)
}

// Alerts returns Alerts(rows, q, now), reusing a previous result for the same
// snapshot and query.
func (m *Memo) Alerts(snapshotID string, rows []models.Alert, q AlertQuery, now time.Time) []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetIfStale(snapshotID)
	key := alertMemoKey{q: q, loc: now.Location()}
	if _, bounded := q.Window.Duration(); bounded {
		key.now = now.UnixNano()
	}
	if cached, ok := m.alerts[key]; ok {
		m.hits++
		return slices.Clone(cached)
	}
	m.misses++
	if len(m.alerts) >= maxMemoEntries {
		clear(m.alerts)
	}
	out := Alerts(rows, q, now)
	m.alerts[key] = out
	return slices.Clone(out)
}

// Stats returns cache hit and miss counts.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

func (m *Memo) resetIfStale(snapshotID string) {
	if snapshotID == m.snapshotID {
		return
	}
	m.snapshotID = snapshotID
	clear(m.patients)
	clear(m.alerts)
}
