package model

import (
	"fmt"
	"strings"
	"time"
)

// Ref is a lightweight reference to a named entity (group, instructor).
type Ref struct {
	ID   int
	Name string
}

// Session represents a single scheduled class meeting as delivered by the
// portal backend, after normalization. Times are hour-granular: a session
// occupies the half-open interval [StartHour, EndHour) on Date.
type Session struct {
	ID int

	// Date is the calendar day of the session, truncated to midnight in the
	// display timezone. The time component is never used.
	Date time.Time

	StartHour int
	EndHour   int

	CourseID    int
	CourseTitle string

	Room       string // empty when the backend did not assign one
	Group      *Ref   // nil when the session is not bound to a cohort
	Instructor *Ref   // nil when unknown; only shown to students
}

// Duration returns the session length in whole hours.
func (s Session) Duration() int {
	return s.EndHour - s.StartHour
}

// On reports whether the session takes place on the given calendar day.
func (s Session) On(day time.Time) bool {
	return s.Date.Year() == day.Year() && s.Date.YearDay() == day.YearDay()
}

// DateKey returns the session date in ISO form (YYYY-MM-DD), the key used
// for week filtering and list grouping.
func (s Session) DateKey() string {
	return s.Date.Format("2006-01-02")
}

// TimeRange renders the occupied interval, e.g. "09:00 - 11:00".
func (s Session) TimeRange() string {
	return fmt.Sprintf("%02d:00 - %02d:00", s.StartHour, s.EndHour)
}

// Identity describes the signed-in portal user as far as the client needs
// to know: who they are and which role predicates hold. It is passed
// explicitly into every renderer so the schedule engine stays testable
// without ambient auth state.
type Identity struct {
	Username string
	Roles    []string
}

// HasRole accepts both the backend's "ROLE_X" spelling and the bare "X".
func (id Identity) HasRole(role string) bool {
	want := strings.TrimPrefix(role, "ROLE_")
	for _, r := range id.Roles {
		if strings.TrimPrefix(r, "ROLE_") == want {
			return true
		}
	}
	return false
}

func (id Identity) IsStudent() bool    { return id.HasRole("ETUDIANT") }
func (id Identity) IsInstructor() bool { return id.HasRole("FORMATEUR") }
func (id Identity) IsAdmin() bool      { return id.HasRole("ADMIN") }
