package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRoles(t *testing.T) {
	student := Identity{Username: "mdupont", Roles: []string{"ROLE_ETUDIANT"}}
	assert.True(t, student.IsStudent())
	assert.False(t, student.IsInstructor())
	assert.False(t, student.IsAdmin())

	// Both spellings are accepted, on either side.
	bare := Identity{Roles: []string{"FORMATEUR"}}
	assert.True(t, bare.IsInstructor())
	assert.True(t, bare.HasRole("ROLE_FORMATEUR"))
	assert.True(t, student.HasRole("ETUDIANT"))
	assert.False(t, Identity{}.IsStudent())
}

func TestSessionHelpers(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := Session{ID: 1, Date: day, StartHour: 9, EndHour: 11}

	assert.Equal(t, 2, s.Duration())
	assert.Equal(t, "2024-06-03", s.DateKey())
	assert.Equal(t, "09:00 - 11:00", s.TimeRange())
	assert.True(t, s.On(time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)))
	assert.False(t, s.On(day.AddDate(0, 0, 1)))
}
