package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcsched/internal/model"
)

// Fixture from the week of Mon 2024-06-03: a two-hour Monday session and a
// one-hour Wednesday session.
func exampleSessions() []model.Session {
	return []model.Session{
		{ID: 1, Date: date(2024, 6, 3), StartHour: 8, EndHour: 10, CourseID: 1, CourseTitle: "Go"},
		{ID: 2, Date: date(2024, 6, 5), StartHour: 14, EndHour: 15, CourseID: 2, CourseTitle: "SQL"},
	}
}

func TestBuildGridPlacement(t *testing.T) {
	w := WeekOf(date(2024, 6, 4))
	g := BuildGrid(exampleSessions(), w)

	assert.Equal(t, 2, g.Count())

	mon := g.At(0, 8)
	require.NotNil(t, mon)
	assert.Equal(t, 1, mon.Session.ID)
	assert.Equal(t, 2, mon.Span)

	// A multi-hour session renders once: nothing in the 09:00 or 10:00 cells.
	assert.Nil(t, g.At(0, 9))
	assert.Nil(t, g.At(0, 10))

	wed := g.At(2, 14)
	require.NotNil(t, wed)
	assert.Equal(t, 2, wed.Session.ID)
	assert.Equal(t, 1, wed.Span)
}

func TestBuildGridTwoHourSessionOccupiesOnlyStartCell(t *testing.T) {
	w := WeekOf(date(2024, 6, 3))
	s := model.Session{ID: 7, Date: date(2024, 6, 3), StartHour: 9, EndHour: 11, CourseID: 3}
	g := BuildGrid([]model.Session{s}, w)

	require.NotNil(t, g.At(0, 9))
	assert.Equal(t, 2, g.At(0, 9).Span)
	assert.Nil(t, g.At(0, 10))
	assert.True(t, g.Covered(0, 10))
	assert.False(t, g.Covered(0, 11))
	assert.False(t, g.Covered(0, 9))
}

func TestBuildGridSkipsNonPositiveDuration(t *testing.T) {
	w := WeekOf(date(2024, 6, 3))
	sessions := []model.Session{
		{ID: 1, Date: date(2024, 6, 3), StartHour: 10, EndHour: 10, CourseID: 1},
		{ID: 2, Date: date(2024, 6, 3), StartHour: 11, EndHour: 9, CourseID: 1},
	}

	assert.NotPanics(t, func() {
		g := BuildGrid(sessions, w)
		assert.Equal(t, 0, g.Count())
	})
}

func TestBuildGridConflictFirstWins(t *testing.T) {
	w := WeekOf(date(2024, 6, 3))
	sessions := []model.Session{
		{ID: 1, Date: date(2024, 6, 3), StartHour: 9, EndHour: 10, CourseID: 1},
		{ID: 2, Date: date(2024, 6, 3), StartHour: 9, EndHour: 11, CourseID: 2},
	}

	g := BuildGrid(sessions, w)
	assert.Equal(t, 1, g.Count())
	require.NotNil(t, g.At(0, 9))
	assert.Equal(t, 1, g.At(0, 9).Session.ID)
}

func TestBuildGridClampsSpanToGridEnd(t *testing.T) {
	w := WeekOf(date(2024, 6, 3))
	s := model.Session{ID: 3, Date: date(2024, 6, 3), StartHour: 18, EndHour: 22, CourseID: 1}
	g := BuildGrid([]model.Session{s}, w)

	require.NotNil(t, g.At(0, 18))
	assert.Equal(t, 2, g.At(0, 18).Span)
}

func TestGridAndListViewsAgreeOnCount(t *testing.T) {
	w := WeekOf(date(2024, 6, 4))
	sessions := []model.Session{
		{ID: 1, Date: date(2024, 6, 3), StartHour: 8, EndHour: 10, CourseID: 1},
		{ID: 2, Date: date(2024, 6, 3), StartHour: 14, EndHour: 16, CourseID: 2},
		{ID: 3, Date: date(2024, 6, 5), StartHour: 9, EndHour: 10, CourseID: 1},
		{ID: 4, Date: date(2024, 6, 8), StartHour: 11, EndHour: 13, CourseID: 3},
		// Anomalous record: dropped identically by both views.
		{ID: 5, Date: date(2024, 6, 6), StartHour: 12, EndHour: 12, CourseID: 2},
	}

	filtered := FilterWeek(sessions, w)
	g := BuildGrid(filtered, w)
	groups := GroupByDate(filtered)

	assert.Equal(t, 4, g.Count())
	assert.Equal(t, g.Count(), Count(groups))
}

// Counts agree for anything the grid can display; a session starting
// outside the 08..19 band is the deliberate exemption. The grid has no
// row for it, but the list and stats keep it so it stays visible.
func TestOutOfBandHourKeptInListOnly(t *testing.T) {
	w := WeekOf(date(2024, 6, 3))
	sessions := []model.Session{
		{ID: 1, Date: date(2024, 6, 3), StartHour: 7, EndHour: 8, CourseID: 1},
		{ID: 2, Date: date(2024, 6, 3), StartHour: 9, EndHour: 10, CourseID: 1},
	}

	g := BuildGrid(sessions, w)
	groups := GroupByDate(sessions)

	assert.Equal(t, 1, g.Count())
	assert.Equal(t, 2, Count(groups))
	assert.Equal(t, 2, ComputeStats(sessions).Sessions)
}

func TestGroupByDateOrdering(t *testing.T) {
	sessions := []model.Session{
		{ID: 1, Date: date(2024, 6, 5), StartHour: 14, EndHour: 15, CourseID: 2},
		{ID: 2, Date: date(2024, 6, 3), StartHour: 10, EndHour: 12, CourseID: 1},
		{ID: 3, Date: date(2024, 6, 3), StartHour: 8, EndHour: 10, CourseID: 1},
	}

	groups := GroupByDate(sessions)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-06-03", groups[0].Date)
	assert.Equal(t, []int{3, 2}, []int{groups[0].Sessions[0].ID, groups[0].Sessions[1].ID})
	assert.Equal(t, "2024-06-05", groups[1].Date)
}

func TestComputeStats(t *testing.T) {
	sessions := []model.Session{
		{ID: 1, Date: date(2024, 6, 3), StartHour: 8, EndHour: 10, CourseID: 1},
		{ID: 2, Date: date(2024, 6, 4), StartHour: 9, EndHour: 12, CourseID: 1},
		{ID: 3, Date: date(2024, 6, 5), StartHour: 14, EndHour: 15, CourseID: 2},
		{ID: 4, Date: date(2024, 6, 6), StartHour: 9, EndHour: 9, CourseID: 9}, // dropped
	}

	st := ComputeStats(sessions)
	assert.Equal(t, Stats{Sessions: 3, Hours: 6, Courses: 2}, st)
}

func TestAssignColors(t *testing.T) {
	sessions := make([]model.Session, 0, 10)
	for i := 0; i < 10; i++ {
		sessions = append(sessions, model.Session{
			ID: i, Date: date(2024, 6, 3), StartHour: 8, EndHour: 9, CourseID: i + 100,
		})
	}
	// Same course seen again later keeps its slot.
	sessions = append(sessions, model.Session{ID: 99, Date: date(2024, 6, 4), StartHour: 8, EndHour: 9, CourseID: 100})

	colors := AssignColors(sessions)
	assert.Equal(t, 0, colors[100])
	assert.Equal(t, 7, colors[107])
	// Ninth distinct course cycles back to slot 0.
	assert.Equal(t, 0, colors[108])
	assert.Equal(t, 1, colors[109])
	assert.Len(t, colors, 10)
}

func TestLegendFirstSeenOrder(t *testing.T) {
	sessions := []model.Session{
		{ID: 1, CourseID: 2, CourseTitle: "SQL", Date: date(2024, 6, 3), StartHour: 8, EndHour: 9},
		{ID: 2, CourseID: 1, CourseTitle: "Go", Date: date(2024, 6, 3), StartHour: 9, EndHour: 10},
		{ID: 3, CourseID: 2, CourseTitle: "SQL", Date: date(2024, 6, 4), StartHour: 8, EndHour: 9},
	}

	legend := Legend(sessions)
	require.Len(t, legend, 2)
	assert.Equal(t, model.Ref{ID: 2, Name: "SQL"}, legend[0])
	assert.Equal(t, model.Ref{ID: 1, Name: "Go"}, legend[1])
}
