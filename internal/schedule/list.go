package schedule

import (
	"sort"

	appLog "tcsched/internal/log"
	"tcsched/internal/model"
)

// DayGroup is one date's worth of sessions in the list view.
type DayGroup struct {
	Date     string // ISO date key
	Sessions []model.Session
}

// GroupByDate produces the list view: sessions grouped by calendar date,
// dates ascending, and within each date ordered by ascending start hour.
// Sessions with a non-positive duration are dropped here under the same
// rule the grid applies, so both views agree on the total count for any
// session the grid can display. Sessions starting outside the 08..19
// band are the one exemption: the grid has no row for them, but the list
// keeps them so an unusual slot is still visible somewhere.
func GroupByDate(sessions []model.Session) []DayGroup {
	byDate := make(map[string][]model.Session)
	for _, s := range sessions {
		if s.Duration() <= 0 {
			appLog.Warn("list: dropping session with non-positive duration",
				"session_id", s.ID, "start", s.StartHour, "end", s.EndHour)
			continue
		}
		key := s.DateKey()
		byDate[key] = append(byDate[key], s)
	}

	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]DayGroup, 0, len(keys))
	for _, k := range keys {
		day := byDate[k]
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].StartHour < day[j].StartHour
		})
		groups = append(groups, DayGroup{Date: k, Sessions: day})
	}
	return groups
}

// Count sums the sessions across all groups.
func Count(groups []DayGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Sessions)
	}
	return n
}

// Stats is the quick-stats strip shown above both views.
type Stats struct {
	Sessions int // sessions this week
	Hours    int // total teaching hours
	Courses  int // distinct courses
}

// ComputeStats derives the stats strip from the week's session list.
// Non-positive durations contribute nothing, consistent with the views.
func ComputeStats(sessions []model.Session) Stats {
	var st Stats
	seen := make(map[int]bool)
	for _, s := range sessions {
		if s.Duration() <= 0 {
			continue
		}
		st.Sessions++
		st.Hours += s.Duration()
		if !seen[s.CourseID] {
			seen[s.CourseID] = true
			st.Courses++
		}
	}
	return st
}
