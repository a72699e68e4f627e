package query

import (
	"sort"
	"strings"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/classify"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"
)

// AlertSortKey selects the alert ordering.
type AlertSortKey string

const (
	SortDatetime AlertSortKey = "datetime"
	SortSeverity AlertSortKey = "severity"
	SortPatient  AlertSortKey = "patient"
	SortStatus   AlertSortKey = "status"
)

// Resolution filter values.
const (
	StatusUnresolved = "unresolved"
	StatusResolved   = "resolved"
)

// AlertQuery is the state of the alerts list controls.
type AlertQuery struct {
	Search   string
	Severity string // all | critical | warning | info
	Status   string // all | unresolved | resolved
	Window   timewindow.Window
	Sort     AlertSortKey
	Dir      Direction
}

// DefaultAlertQuery is the initial state of the alerts view: everything,
// newest first.
func DefaultAlertQuery() AlertQuery {
	return AlertQuery{
		Severity: FilterAll,
		Status:   FilterAll,
		Window:   timewindow.All,
		Sort:     SortDatetime,
		Dir:      Desc,
	}
}

// Alerts filters rows by time window, resolution, normalized severity and
// search text, then stable-sorts them by q.Sort. now anchors the time window.
func Alerts(rows []models.Alert, q AlertQuery, now time.Time) []models.Alert {
	search := normalizeSearch(q.Search)
	out := make([]models.Alert, 0, len(rows))
	for _, a := range rows {
		if timewindow.InWindow(string(a.Datetime), q.Window, now) &&
			matchResolution(a, q.Status) &&
			matchSeverity(a, q.Severity) &&
			matchAlertText(a, search) {
			out = append(out, a)
		}
	}

	cmp := alertComparator(q.Sort, now.Location())
	sign := q.Dir.sign()
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j])*sign < 0
	})
	return out
}

func matchResolution(a models.Alert, filter string) bool {
	if isAll(filter) {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case StatusUnresolved:
		return !bool(a.Resolved)
	case StatusResolved:
		return bool(a.Resolved)
	default:
		return false
	}
}

func matchSeverity(a models.Alert, filter string) bool {
	if isAll(filter) {
		return true
	}
	return string(classify.ClassifySeverity(string(a.SeverityLevel))) == strings.ToLower(strings.TrimSpace(filter))
}

func matchAlertText(a models.Alert, q string) bool {
	return matchesAny(q,
		string(a.PatientName),
		string(a.PatientID),
		string(a.IssueDetected),
		string(a.Message),
		string(a.SeverityLevel),
	)
}

func alertComparator(key AlertSortKey, loc *time.Location) func(a, b models.Alert) int {
	switch key {
	case SortSeverity:
		return func(a, b models.Alert) int {
			return severityRank(a) - severityRank(b)
		}
	case SortPatient:
		col := newCollator(false)
		return func(a, b models.Alert) int {
			return col.CompareString(
				string(a.PatientName)+string(a.PatientID),
				string(b.PatientName)+string(b.PatientID),
			)
		}
	case SortStatus:
		return func(a, b models.Alert) int {
			return compareBool(bool(a.Resolved), bool(b.Resolved))
		}
	default:
		return func(a, b models.Alert) int {
			return compareFloat(
				timewindow.SortKey(string(a.Datetime), loc),
				timewindow.SortKey(string(b.Datetime), loc),
			)
		}
	}
}

func severityRank(a models.Alert) int {
	return classify.ClassifySeverity(string(a.SeverityLevel)).Rank()
}
