package query

import (
	"sort"
	"strings"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"
)

// PatientSortKey selects the patient ordering.
type PatientSortKey string

const (
	SortLastReading PatientSortKey = "last_reading"
	SortPatientID   PatientSortKey = "patient_id"
	SortName        PatientSortKey = "name"
	SortHeartRate   PatientSortKey = "heart_rate"
	SortOxygenLevel PatientSortKey = "oxygen_level"
)

// Connection status filter values.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// PatientQuery is the state of the patients list controls.
// Empty filter strings behave like "all"; an empty sort key sorts by last reading.
type PatientQuery struct {
	Search string
	Status string // all | online | offline
	Gender string // all | any gender value, case-insensitive
	Sort   PatientSortKey
	Dir    Direction
	// Location used for timestamps without an offset; nil means time.Local.
	Location *time.Location
}

// DefaultPatientQuery is the initial state of the patients view.
func DefaultPatientQuery() PatientQuery {
	return PatientQuery{Status: FilterAll, Gender: FilterAll, Sort: SortLastReading, Dir: Desc}
}

// Patients filters rows by search text, connection status and gender, then
// stable-sorts them by q.Sort.
func Patients(rows []models.Patient, q PatientQuery) []models.Patient {
	search := normalizeSearch(q.Search)
	out := make([]models.Patient, 0, len(rows))
	for _, p := range rows {
		if matchStatus(p, q.Status) && matchGender(p, q.Gender) && matchPatientText(p, search) {
			out = append(out, p)
		}
	}

	cmp := patientComparator(q)
	sign := q.Dir.sign()
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j])*sign < 0
	})
	return out
}

// Unknown status filter values match nothing. Any connection state other
// than online counts as offline.
func matchStatus(p models.Patient, filter string) bool {
	if isAll(filter) {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case StatusOnline:
		return p.IsOnline()
	case StatusOffline:
		return !p.IsOnline()
	default:
		return false
	}
}

func matchGender(p models.Patient, filter string) bool {
	if isAll(filter) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(string(p.Gender)), strings.TrimSpace(filter))
}

func matchPatientText(p models.Patient, q string) bool {
	return matchesAny(q,
		string(p.Name),
		string(p.PatientID),
		string(p.MedicalConditions),
		string(p.Gender),
	)
}

func patientComparator(q PatientQuery) func(a, b models.Patient) int {
	switch q.Sort {
	case SortPatientID:
		col := newCollator(true)
		return func(a, b models.Patient) int {
			return col.CompareString(string(a.PatientID), string(b.PatientID))
		}
	case SortName:
		col := newCollator(false)
		return func(a, b models.Patient) int {
			return col.CompareString(string(a.Name), string(b.Name))
		}
	case SortHeartRate:
		return func(a, b models.Patient) int {
			return compareFloat(readingKey(a.HeartRate), readingKey(b.HeartRate))
		}
	case SortOxygenLevel:
		return func(a, b models.Patient) int {
			return compareFloat(readingKey(a.OxygenLevel), readingKey(b.OxygenLevel))
		}
	default:
		loc := q.Location
		return func(a, b models.Patient) int {
			return compareFloat(
				timewindow.SortKey(string(a.LastReading), loc),
				timewindow.SortKey(string(b.LastReading), loc),
			)
		}
	}
}

func readingKey(r models.Reading) float64 {
	if v, ok := r.Get(); ok {
		return v
	}
	return negInf
}

// Cards picks the patients shown as cards: the first limit rows of an
// already queried sequence, optionally online patients only. limit <= 0
// keeps every row.
func Cards(rows []models.Patient, onlyOnline bool, limit int) []models.Patient {
	out := make([]models.Patient, 0, len(rows))
	for _, p := range rows {
		if onlyOnline && !p.IsOnline() {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out
}
