package schedule

import "tcsched/internal/model"

// PaletteSize is the number of distinct course color slots. A ninth
// distinct course cycles back to slot 0.
const PaletteSize = 8

// AssignColors maps each course id to a palette slot. Iterating the
// sessions in list order, the first time a course id is seen it takes the
// next unused slot, cycling mod PaletteSize. The assignment is
// deterministic for a given session list; it is not stable across week
// navigation or reloads, which is fine for a purely cosmetic property.
func AssignColors(sessions []model.Session) map[int]int {
	colors := make(map[int]int)
	for _, s := range sessions {
		if _, ok := colors[s.CourseID]; !ok {
			colors[s.CourseID] = len(colors) % PaletteSize
		}
	}
	return colors
}

// Legend returns course (id, title) pairs in first-seen order, one per
// distinct course, for rendering the color legend under the views.
func Legend(sessions []model.Session) []model.Ref {
	seen := make(map[int]bool)
	out := make([]model.Ref, 0)
	for _, s := range sessions {
		if seen[s.CourseID] {
			continue
		}
		seen[s.CourseID] = true
		out = append(out, model.Ref{ID: s.CourseID, Name: s.CourseTitle})
	}
	return out
}
