// Package tui is the interactive terminal client: a Monday–Saturday week
// grid and a chronological list view over the signed-in user's schedule,
// with previous/next/today navigation.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tcsched/internal/model"
	"tcsched/internal/schedule"
)

type viewMode int

const (
	modeWeek viewMode = iota
	modeList
)

// Loader fetches the signed-in user's identity and full session list.
// api.Client.FetchSchedule satisfies it as a method value.
type Loader func(ctx context.Context) (model.Identity, []model.Session, error)

// fetchDoneMsg carries the outcome of a week load. Seq ties it to the
// navigation that requested it; stale results are discarded so the most
// recent navigation always wins.
type fetchDoneMsg struct {
	seq      int
	ident    model.Identity
	sessions []model.Session
	err      error
}

const loadErrMessage = "Erreur lors du chargement de l'emploi du temps"

type Model struct {
	loader Loader
	loc    *time.Location

	ident    model.Identity
	refDate  time.Time
	week     schedule.Week
	sessions []model.Session // current week only, already filtered

	mode     viewMode
	loading  bool
	loadErr  string
	fetchSeq int

	spinner  spinner.Model
	width    int
	height   int
	quitting bool
}

// NewModel builds the TUI model. ref is the initial reference date
// (usually today in the display timezone).
func NewModel(loader Loader, ref time.Time, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		loader:  loader,
		loc:     loc,
		refDate: ref,
		week:    schedule.WeekOf(ref),
		loading: true,
		spinner: sp,
		width:   100,
		height:  30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd(m.fetchSeq))
}

// fetchCmd loads the schedule and filters it to the week captured at
// dispatch time. One network call per navigation; no dedup, no
// cancellation of in-flight requests (user-paced).
func (m Model) fetchCmd(seq int) tea.Cmd {
	loader := m.loader
	week := m.week
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		ident, sessions, err := loader(ctx)
		if err != nil {
			return fetchDoneMsg{seq: seq, err: err}
		}
		return fetchDoneMsg{seq: seq, ident: ident, sessions: schedule.FilterWeek(sessions, week)}
	}
}

// navigate moves the reference date, recomputes the window and kicks off
// a fresh load under a new sequence number.
func (m Model) navigate(ref time.Time) (Model, tea.Cmd) {
	m.refDate = ref
	m.week = schedule.WeekOf(ref)
	m.loading = true
	m.loadErr = ""
	m.fetchSeq++
	return m, tea.Batch(m.spinner.Tick, m.fetchCmd(m.fetchSeq))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchDoneMsg:
		if msg.seq != m.fetchSeq {
			// A newer navigation superseded this fetch.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			// Fail closed: never show another week's data under this heading.
			m.sessions = nil
			m.loadErr = loadErrMessage
			return m, nil
		}
		m.ident = msg.ident
		m.sessions = msg.sessions
		m.loadErr = ""
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		return m.navigate(m.refDate.AddDate(0, 0, -7))

	case "right", "l":
		return m.navigate(m.refDate.AddDate(0, 0, 7))

	case "t":
		return m.navigate(time.Now().In(m.loc))

	case "r":
		return m.navigate(m.refDate)

	case "tab", "v":
		// Pure presentation toggle: no refetch, operates on loaded data.
		if m.mode == modeWeek {
			m.mode = modeList
		} else {
			m.mode = modeWeek
		}
		return m, nil
	}
	return m, nil
}

// Week exposes the current window, mainly for tests.
func (m Model) Week() schedule.Week { return m.week }
