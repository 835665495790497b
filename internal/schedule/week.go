package schedule

import (
	"time"

	"tcsched/internal/model"
)

// Grid geometry. Cells cover the teaching hours 08:00..19:00 on
// Monday..Saturday; Sunday never appears on the grid.
const (
	GridStartHour = 8
	GridEndHour   = 20 // exclusive bound; the last cell is 19:00
	DaysPerWeek   = 6
)

// Week is the Monday–Saturday window used to bucket sessions for display.
// It has no identity of its own: it is always recomputed from a reference
// date via WeekOf.
type Week struct {
	// Start is the Monday of the window, truncated to midnight.
	Start time.Time
	// End is Start + 5 days (the Saturday).
	End time.Time
}

// WeekOf returns the week window containing ref. Sunday is treated as the
// tail end of the preceding week, so for a Sunday reference the window is
// the previous Monday–Saturday span. WeekOf is idempotent across the
// window: any date within [Start, End] maps back to the same window.
func WeekOf(ref time.Time) Week {
	d := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	offset := 1 - int(d.Weekday()) // Weekday: Sunday=0 .. Saturday=6
	if d.Weekday() == time.Sunday {
		offset = -6
	}

	start := d.AddDate(0, 0, offset)
	return Week{Start: start, End: start.AddDate(0, 0, 5)}
}

// Days returns the six dates of the window, Monday first.
func (w Week) Days() []time.Time {
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Contains reports whether date falls within [Start, End] inclusive.
// Comparison is on the ISO date key, matching the backend's date encoding.
func (w Week) Contains(date time.Time) bool {
	k := date.Format("2006-01-02")
	return k >= w.Start.Format("2006-01-02") && k <= w.End.Format("2006-01-02")
}

// DayIndex returns the 0-based offset of date within the window
// (0=Monday .. 5=Saturday), or -1 when the date is outside it.
func (w Week) DayIndex(date time.Time) int {
	if !w.Contains(date) {
		return -1
	}
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, w.Start.Location())
	return int(d.Sub(w.Start).Hours() / 24)
}

// Previous and Next shift the reference by a full week; Previous then Next
// always lands back on the same window.
func (w Week) Previous() Week { return WeekOf(w.Start.AddDate(0, 0, -7)) }
func (w Week) Next() Week     { return WeekOf(w.Start.AddDate(0, 0, 7)) }

// FilterWeek keeps the sessions whose date falls inside the window,
// bounds inclusive. The input order is preserved.
func FilterWeek(sessions []model.Session, w Week) []model.Session {
	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if w.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

// GridHours returns the absolute hours covered by the grid rows, 8..19.
func GridHours() []int {
	hours := make([]int, 0, GridEndHour-GridStartHour)
	for h := GridStartHour; h < GridEndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}
