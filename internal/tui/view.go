package tui

import (
	"fmt"
	"strings"
	"time"

	"tcsched/internal/schedule"
)

var (
	dayNamesShort = [...]string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}
	dayNamesLong  = [...]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}
	monthNames    = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

const hourColWidth = 6

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render("Mon Emploi du Temps")
	sub := subtitleStyle.Render(fmt.Sprintf("%s %d · semaine du %02d %s au %02d %s",
		monthNames[m.refDate.Month()-1], m.refDate.Year(),
		m.week.Start.Day(), monthNames[m.week.Start.Month()-1],
		m.week.End.Day(), monthNames[m.week.End.Month()-1]))
	b.WriteString(title + sub + "\n")

	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr) + "\n")
	}

	if m.loading {
		b.WriteString("\n " + m.spinner.View() + " Chargement de l'emploi du temps...\n")
		b.WriteString("\n" + m.renderHelp())
		return b.String()
	}

	st := schedule.ComputeStats(m.sessions)
	b.WriteString(statStyle.Render(fmt.Sprintf("  %d séances · %dh de cours · %d cours différents",
		st.Sessions, st.Hours, st.Courses)) + "\n\n")

	switch m.mode {
	case modeWeek:
		b.WriteString(m.renderGrid())
	case modeList:
		b.WriteString(m.renderList())
	}

	if legend := m.renderLegend(); legend != "" {
		b.WriteString("\n" + legend + "\n")
	}

	b.WriteString("\n" + m.renderHelp())
	return b.String()
}

func (m Model) dayColWidth() int {
	w := (m.width - hourColWidth - 1) / schedule.DaysPerWeek
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) renderGrid() string {
	grid := schedule.BuildGrid(m.sessions, m.week)
	colors := schedule.AssignColors(m.sessions)
	colW := m.dayColWidth()

	var b strings.Builder

	// Day header row.
	b.WriteString(strings.Repeat(" ", hourColWidth))
	today := nowIn(m.loc).Format("2006-01-02")
	for i, d := range m.week.Days() {
		label := fmt.Sprintf("%s %02d", dayNamesShort[i], d.Day())
		style := dayHeaderStyle
		if d.Format("2006-01-02") == today {
			style = todayHeaderStyle
		}
		b.WriteString(style.Width(colW).Render(label))
	}
	b.WriteString("\n")

	for _, hour := range schedule.GridHours() {
		b.WriteString(hourStyle.Width(hourColWidth).Render(fmt.Sprintf("%02d:00 ", hour)))
		for day := 0; day < schedule.DaysPerWeek; day++ {
			cell := grid.At(day, hour)
			if cell == nil {
				// Empty, or the tail of a spanning session: either way the
				// slot renders blank; a session appears only in its start cell.
				b.WriteString(strings.Repeat(" ", colW))
				continue
			}
			s := cell.Session
			label := truncate(fmt.Sprintf("%s %s", s.CourseTitle, s.TimeRange()), colW-2)
			b.WriteString(" " + palette[colors[s.CourseID]].Width(colW-2).Render(label) + " ")
		}
		b.WriteString("\n")
	}

	if grid.Count() == 0 {
		b.WriteString("\n" + dimStyle.Render("  Aucune séance cette semaine") + "\n")
	}

	return b.String()
}

func (m Model) renderList() string {
	groups := schedule.GroupByDate(m.sessions)
	if len(groups) == 0 {
		return dimStyle.Render("  Aucune séance cette semaine") + "\n"
	}

	colors := schedule.AssignColors(m.sessions)
	var b strings.Builder

	for _, g := range groups {
		b.WriteString(listDayStyle.Render(listDayLabel(g.Date)) + "\n")
		for _, s := range g.Sessions {
			dot := paletteDot[colors[s.CourseID]].Render("▌")
			line := fmt.Sprintf("%s %s  %s", dot, s.TimeRange(), s.CourseTitle)
			if s.Room != "" {
				line += dimStyle.Render("  · " + s.Room)
			}
			if m.ident.IsStudent() && s.Instructor != nil {
				line += dimStyle.Render("  · " + s.Instructor.Name)
			}
			if s.Group != nil {
				line += dimStyle.Render("  · " + s.Group.Name)
			}
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (m Model) renderLegend() string {
	legend := schedule.Legend(m.sessions)
	if len(legend) == 0 {
		return ""
	}
	colors := schedule.AssignColors(m.sessions)

	parts := make([]string, 0, len(legend))
	for _, ref := range legend {
		parts = append(parts, paletteDot[colors[ref.ID]].Render("■")+" "+ref.Name)
	}
	return "  " + dimStyle.Render("Cours : ") + strings.Join(parts, "   ")
}

func (m Model) renderHelp() string {
	modeLabel := "liste"
	if m.mode == modeList {
		modeLabel = "semaine"
	}
	return helpStyle.Render(fmt.Sprintf(
		"  ←/→: semaine préc./suiv.  t: aujourd'hui  tab: vue %s  r: recharger  q: quitter", modeLabel))
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

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func nowIn(loc *time.Location) time.Time {
	return time.Now().In(loc)
}
