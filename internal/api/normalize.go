package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	appLog "tcsched/internal/log"
	"tcsched/internal/model"
)

// The backend's session records changed shape over time: course info may
// be flat (coursId/coursTitre) or nested (cours.id/cours.titre), and
// formateur/groupe may be a display string or an object. Everything is
// normalized here so the rendering engine never branches on shape.

// wireProfile is the GET /profile response.
type wireProfile struct {
	Username      string        `json:"username"`
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	Roles         []string      `json:"roles"`
	EmploiDuTemps []wireSession `json:"emploiDuTemps"`
}

// wireSession is a single schedule record as sent by the backend.
type wireSession struct {
	ID         int         `json:"id"`
	Date       string      `json:"date"`
	HeureDebut string      `json:"heureDebut"`
	HeureFin   string      `json:"heureFin"`
	CoursID    int         `json:"coursId"`
	CoursTitre string      `json:"coursTitre"`
	Cours      *wireCourse `json:"cours"`
	Salle      string      `json:"salle"`
	Formateur  looseRef    `json:"formateur"`
	Groupe     looseRef    `json:"groupe"`
}

type wireCourse struct {
	ID    int    `json:"id"`
	Titre string `json:"titre"`
}

// looseRef accepts null, a bare display string, or an object with
// id/nom(/prenom) fields, and collapses all three into *model.Ref.
type looseRef struct {
	Ref *model.Ref
}

func (l *looseRef) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || trimmed == "null" {
		l.Ref = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			l.Ref = nil
			return nil
		}
		l.Ref = &model.Ref{Name: s}
		return nil
	}

	var obj struct {
		ID     int    `json:"id"`
		Nom    string `json:"nom"`
		Prenom string `json:"prenom"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	name := obj.Nom
	if obj.Prenom != "" {
		name = strings.TrimSpace(obj.Nom + " " + obj.Prenom)
	}
	l.Ref = &model.Ref{ID: obj.ID, Name: name}
	return nil
}

// NormalizeSessions converts wire records into model.Session values.
// Malformed records (bad date, bad time string, end not after start) are
// dropped with a warning; they must never reach the views in any form.
func NormalizeSessions(records []wireSession, loc *time.Location) []model.Session {
	out := make([]model.Session, 0, len(records))
	for _, rec := range records {
		s, err := normalizeSession(rec, loc)
		if err != nil {
			appLog.Warn("dropping malformed schedule record", "session_id", rec.ID, "reason", err)
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalizeSession(rec wireSession, loc *time.Location) (model.Session, error) {
	var s model.Session
	s.ID = rec.ID

	date, err := time.ParseInLocation("2006-01-02", rec.Date, loc)
	if err != nil {
		return s, fmt.Errorf("bad date %q", rec.Date)
	}
	s.Date = date

	s.StartHour, err = parseHour(rec.HeureDebut)
	if err != nil {
		return s, fmt.Errorf("bad start time %q", rec.HeureDebut)
	}
	s.EndHour, err = parseHour(rec.HeureFin)
	if err != nil {
		return s, fmt.Errorf("bad end time %q", rec.HeureFin)
	}
	if s.EndHour <= s.StartHour {
		return s, fmt.Errorf("end %02d:00 not after start %02d:00", s.EndHour, s.StartHour)
	}

	s.CourseID = rec.CoursID
	s.CourseTitle = rec.CoursTitre
	if rec.Cours != nil {
		if s.CourseID == 0 {
			s.CourseID = rec.Cours.ID
		}
		if s.CourseTitle == "" {
			s.CourseTitle = rec.Cours.Titre
		}
	}
	if s.CourseTitle == "" {
		s.CourseTitle = "Cours"
	}

	s.Room = rec.Salle
	s.Group = rec.Groupe.Ref
	s.Instructor = rec.Formateur.Ref

	return s, nil
}

// parseHour extracts the hour from an "HH:MM" time-of-day string. Minutes
// are accepted but ignored: the grid is hour-granular.
func parseHour(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty time")
	}
	head, _, found := strings.Cut(v, ":")
	if !found {
		head = v
	}
	h, err := strconv.Atoi(head)
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour %d out of range", h)
	}
	return h, nil
}
