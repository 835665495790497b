package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tcsched/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart time.Time
	}{
		{"monday maps to itself", date(2024, 6, 3), date(2024, 6, 3)},
		{"tuesday maps back to monday", date(2024, 6, 4), date(2024, 6, 3)},
		{"saturday maps back to monday", date(2024, 6, 8), date(2024, 6, 3)},
		{"sunday belongs to the preceding week", date(2024, 6, 9), date(2024, 6, 3)},
		{"next monday starts a new week", date(2024, 6, 10), date(2024, 6, 10)},
		{"year boundary", date(2025, 1, 1), date(2024, 12, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WeekOf(tt.ref)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantStart.AddDate(0, 0, 5), w.End)
			assert.Equal(t, time.Monday, w.Start.Weekday())
			assert.Equal(t, time.Saturday, w.End.Weekday())
		})
	}
}

func TestWeekOfIdempotentAcrossWindow(t *testing.T) {
	w := WeekOf(date(2024, 6, 4))
	for _, d := range w.Days() {
		assert.Equal(t, w, WeekOf(d), "WeekOf(%s) must return the same window", d.Format("2006-01-02"))
	}
}

func TestWeekOfIgnoresTimeOfDay(t *testing.T) {
	ref := time.Date(2024, 6, 5, 23, 45, 12, 0, time.UTC)
	assert.Equal(t, WeekOf(date(2024, 6, 5)), WeekOf(ref))
}

func TestWeekNavigationRoundTrip(t *testing.T) {
	w := WeekOf(date(2024, 6, 4))
	assert.Equal(t, w, w.Previous().Next())
	assert.Equal(t, w, w.Next().Previous())
	assert.Equal(t, date(2024, 5, 27), w.Previous().Start)
	assert.Equal(t, date(2024, 6, 10), w.Next().Start)
}

func TestWeekDays(t *testing.T) {
	w := WeekOf(date(2024, 6, 3))
	days := w.Days()
	assert.Len(t, days, 6)
	assert.Equal(t, date(2024, 6, 3), days[0])
	assert.Equal(t, date(2024, 6, 8), days[5])
}

func TestWeekDayIndex(t *testing.T) {
	w := WeekOf(date(2024, 6, 3))
	assert.Equal(t, 0, w.DayIndex(date(2024, 6, 3)))
	assert.Equal(t, 2, w.DayIndex(date(2024, 6, 5)))
	assert.Equal(t, 5, w.DayIndex(date(2024, 6, 8)))
	assert.Equal(t, -1, w.DayIndex(date(2024, 6, 9)))
	assert.Equal(t, -1, w.DayIndex(date(2024, 6, 2)))
}

func TestFilterWeek(t *testing.T) {
	w := WeekOf(date(2024, 6, 4))
	sessions := []model.Session{
		{ID: 1, Date: date(2024, 6, 3), StartHour: 8, EndHour: 10, CourseID: 1},
		{ID: 2, Date: date(2024, 6, 8), StartHour: 14, EndHour: 15, CourseID: 2},
		{ID: 3, Date: date(2024, 6, 2), StartHour: 9, EndHour: 10, CourseID: 1},  // previous week
		{ID: 4, Date: date(2024, 6, 10), StartHour: 9, EndHour: 10, CourseID: 1}, // next week
	}

	got := FilterWeek(sessions, w)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}
