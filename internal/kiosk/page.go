package kiosk

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	appLog "tcsched/internal/log"
	"tcsched/internal/model"
	"tcsched/internal/schedule"
)

//go:embed templates/week.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/week.html"))

// French labels, matching the portal the kiosk replaces.
var (
	dayNamesShort = [...]string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}
	dayNamesLong  = [...]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}
	monthNames    = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

type dayHeaderView struct {
	Name  string
	Num   int
	Today bool
}

type cellView struct {
	Empty bool
	Span  int
	Color int

	Title      string
	Time       string
	Room       string
	Group      string
	Instructor string
}

type rowView struct {
	Hour  string
	Cells []cellView
}

type listSessionView struct {
	Time       string
	Title      string
	Room       string
	Group      string
	Instructor string
	Color      int
}

type listGroupView struct {
	Label    string
	Sessions []listSessionView
}

type legendView struct {
	Name  string
	Color int
}

type pageData struct {
	MonthYear string
	WeekLabel string
	Days      []dayHeaderView
	Rows      []rowView
	Groups    []listGroupView
	Stats     schedule.Stats
	Legend    []legendView
	Error     string
	UpdatedAt string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	snap := s.current()
	week := s.refWeek(r)
	filtered := schedule.FilterWeek(snap.Sessions, week)

	data := buildPageData(week, filtered, snap, time.Now().In(s.loc))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		appLog.Error("kiosk: page render failed", err)
	}
}

func buildPageData(week schedule.Week, sessions []model.Session, snap snapshot, now time.Time) pageData {
	grid := schedule.BuildGrid(sessions, week)
	colors := schedule.AssignColors(sessions)
	isStudent := snap.Identity.IsStudent()

	data := pageData{
		MonthYear: fmt.Sprintf("%s %d", monthNames[week.Start.Month()-1], week.Start.Year()),
		WeekLabel: fmt.Sprintf("%02d %s – %02d %s",
			week.Start.Day(), monthNames[week.Start.Month()-1],
			week.End.Day(), monthNames[week.End.Month()-1]),
		Stats: schedule.ComputeStats(sessions),
		Error: snap.Err,
	}
	if !snap.UpdatedAt.IsZero() {
		data.UpdatedAt = snap.UpdatedAt.Format("15:04")
	}

	today := now.Format("2006-01-02")
	for _, d := range week.Days() {
		data.Days = append(data.Days, dayHeaderView{
			Name:  dayNamesShort[int(d.Weekday())-1],
			Num:   d.Day(),
			Today: d.Format("2006-01-02") == today,
		})
	}

	for _, hour := range schedule.GridHours() {
		row := rowView{Hour: fmt.Sprintf("%02d:00", hour)}
		for day := 0; day < schedule.DaysPerWeek; day++ {
			if grid.Covered(day, hour) {
				// Inside a spanning card; the rowspan above owns this slot.
				continue
			}
			cell := grid.At(day, hour)
			if cell == nil {
				row.Cells = append(row.Cells, cellView{Empty: true, Span: 1})
				continue
			}
			cv := cellView{
				Span:  cell.Span,
				Color: colors[cell.Session.CourseID],
				Title: cell.Session.CourseTitle,
				Time:  cell.Session.TimeRange(),
				Room:  cell.Session.Room,
			}
			if cell.Session.Group != nil {
				cv.Group = cell.Session.Group.Name
			}
			if isStudent && cell.Session.Instructor != nil {
				cv.Instructor = cell.Session.Instructor.Name
			}
			row.Cells = append(row.Cells, cv)
		}
		data.Rows = append(data.Rows, row)
	}

	for _, g := range schedule.GroupByDate(sessions) {
		gv := listGroupView{Label: listDayLabel(g.Date)}
		for _, sess := range g.Sessions {
			sv := listSessionView{
				Time:  sess.TimeRange(),
				Title: sess.CourseTitle,
				Room:  sess.Room,
				Color: colors[sess.CourseID],
			}
			if sess.Group != nil {
				sv.Group = sess.Group.Name
			}
			if isStudent && sess.Instructor != nil {
				sv.Instructor = sess.Instructor.Name
			}
			gv.Sessions = append(gv.Sessions, sv)
		}
		data.Groups = append(data.Groups, gv)
	}

	for _, ref := range schedule.Legend(sessions) {
		data.Legend = append(data.Legend, legendView{Name: ref.Name, Color: colors[ref.ID]})
	}

	return data
}

// listDayLabel renders an ISO date key as "Lundi 03 juin".
func listDayLabel(isoDate string) string {
	d, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	name := dayNamesLong[(int(d.Weekday())+6)%7]
	return fmt.Sprintf("%s %02d %s", name, d.Day(), monthNames[d.Month()-1])
}
