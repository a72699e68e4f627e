package aggregator

import (
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"
)

// Bar chart geometry of the alerts-by-hour card.
const (
	BarMaxHeight = 54
	BarMinHeight = 3
)

// HourlyHistogram counts alerts per hour of day in loc. The calendar date is
// ignored, so alerts from different days at the same hour share a slot: the
// chart shows a daily rhythm. Unparsable timestamps are skipped.
func HourlyHistogram(alerts []models.Alert, loc *time.Location) [24]int {
	if loc == nil {
		loc = time.Local
	}
	var out [24]int
	for _, a := range alerts {
		t, ok := timewindow.Parse(string(a.Datetime), loc)
		if !ok {
			continue
		}
		out[t.In(loc).Hour()]++
	}
	return out
}

// BarHeights scales counts to bar heights relative to the largest slot:
// max(minHeight, round(count/maxCount*maxHeight)), with maxCount at least 1.
func BarHeights(counts [24]int, maxHeight, minHeight int) [24]int {
	maxCount := 1
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	var out [24]int
	for i, c := range counts {
		h := Round(float64(c) / float64(maxCount) * float64(maxHeight))
		if h < minHeight {
			h = minHeight
		}
		out[i] = h
	}
	return out
}
