// Package ical serializes a week's sessions as an iCalendar file so the
// schedule can be imported into a regular calendar application.
package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"tcsched/internal/model"
	"tcsched/internal/schedule"
)

// WriteWeek writes one VEVENT per session to w. Sessions with a
// non-positive duration are skipped under the same rule the views apply.
// The identity decides whether instructor names are included, mirroring
// the on-screen rendering.
func WriteWeek(w io.Writer, week schedule.Week, sessions []model.Session, ident model.Identity) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tcsched//schedule export//FR")

	now := time.Now()

	for _, s := range sessions {
		if s.Duration() <= 0 {
			continue
		}

		ev := cal.AddEvent(fmt.Sprintf("tcsched-session-%d@%s", s.ID, s.DateKey()))
		ev.SetDtStampTime(now)
		ev.SetStartAt(hourOn(s.Date, s.StartHour))
		ev.SetEndAt(hourOn(s.Date, s.EndHour))
		ev.SetSummary(s.CourseTitle)
		if s.Room != "" {
			ev.SetLocation(s.Room)
		}
		if desc := describe(s, ident); desc != "" {
			ev.SetDescription(desc)
		}
	}

	return cal.SerializeTo(w)
}

func hourOn(date time.Time, hour int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
}

func describe(s model.Session, ident model.Identity) string {
	var parts []string
	if s.Group != nil && s.Group.Name != "" {
		parts = append(parts, "Groupe: "+s.Group.Name)
	}
	if ident.IsStudent() && s.Instructor != nil && s.Instructor.Name != "" {
		parts = append(parts, "Formateur: "+s.Instructor.Name)
	}
	return strings.Join(parts, "\n")
}
