package schedule

import (
	appLog "tcsched/internal/log"
	"tcsched/internal/model"
)

// Cell is one (day, hour) slot of the grid. A multi-hour session appears
// only in its starting cell, with Span recording how many hour-rows it
// covers; the following cells stay empty.
type Cell struct {
	Session model.Session
	Span    int
}

// Grid is the day × hour matrix for one week window.
type Grid struct {
	Week  Week
	cells [DaysPerWeek][GridEndHour - GridStartHour]*Cell
	count int
}

// BuildGrid places each session into the cell matching its date and first
// hour. Defensive rules:
//
//   - sessions with a non-positive duration are skipped (never placed,
//     never crash the layout);
//   - sessions outside the window or outside the 08..19 hour band are
//     skipped with a warning;
//   - when two sessions start in the same cell (a scheduling conflict in
//     the source data) the first one in iteration order wins and the
//     collision is logged; nothing is stacked.
func BuildGrid(sessions []model.Session, w Week) Grid {
	g := Grid{Week: w}

	for _, s := range sessions {
		if s.Duration() <= 0 {
			appLog.Warn("grid: dropping session with non-positive duration",
				"session_id", s.ID, "start", s.StartHour, "end", s.EndHour)
			continue
		}

		day := w.DayIndex(s.Date)
		if day < 0 {
			appLog.Warn("grid: session outside week window", "session_id", s.ID, "date", s.DateKey())
			continue
		}
		if s.StartHour < GridStartHour || s.StartHour >= GridEndHour {
			appLog.Warn("grid: session starts outside grid hours", "session_id", s.ID, "start", s.StartHour)
			continue
		}

		row := s.StartHour - GridStartHour
		if existing := g.cells[day][row]; existing != nil {
			// Data-quality assumption: the backend should not schedule two
			// sessions in the same slot. First one wins.
			appLog.Warn("grid: conflicting sessions in one slot; keeping first",
				"kept", existing.Session.ID, "dropped", s.ID, "date", s.DateKey(), "hour", s.StartHour)
			continue
		}

		span := s.Duration()
		if s.StartHour+span > GridEndHour {
			span = GridEndHour - s.StartHour
		}
		g.cells[day][row] = &Cell{Session: s, Span: span}
		g.count++
	}

	return g
}

// At returns the cell starting at (day index 0..5, absolute hour 8..19),
// or nil when the slot is empty or out of range.
func (g *Grid) At(day, hour int) *Cell {
	if day < 0 || day >= DaysPerWeek {
		return nil
	}
	if hour < GridStartHour || hour >= GridEndHour {
		return nil
	}
	return g.cells[day][hour-GridStartHour]
}

// Covered reports whether the slot is occupied by a session that started
// in an earlier row, i.e. the cell is inside some session's span but is
// not its starting cell. Renderers use this to skip drawing slot borders
// under a spanning card.
func (g *Grid) Covered(day, hour int) bool {
	if day < 0 || day >= DaysPerWeek {
		return false
	}
	for h := GridStartHour; h < hour; h++ {
		if c := g.cells[day][h-GridStartHour]; c != nil && h+c.Span > hour {
			return true
		}
	}
	return false
}

// Count returns the number of sessions placed on the grid.
func (g *Grid) Count() int { return g.count }
