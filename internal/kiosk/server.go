// Package kiosk serves the weekly schedule as a small HTML/JSON site for
// wall displays. The portal is only contacted by a cron-driven refresh
// loop; HTTP handlers work entirely off the cached snapshot.
package kiosk

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tcsched/internal/config"
	appLog "tcsched/internal/log"
	"tcsched/internal/model"
	"tcsched/internal/schedule"
)

// Loader fetches the signed-in user's identity and full session list.
// api.Client.FetchSchedule satisfies it as a method value.
type Loader func(ctx context.Context) (model.Identity, []model.Session, error)

// snapshot is the cached result of the latest refresh. On a failed
// refresh the session list is emptied and Err records why: the kiosk
// fails closed rather than keep serving data of unknown staleness.
type snapshot struct {
	Identity  model.Identity
	Sessions  []model.Session
	Err       string
	UpdatedAt time.Time
}

// Server is the kiosk HTTP server.
type Server struct {
	cfg    *config.Config
	loader Loader
	loc    *time.Location
	mux    *http.ServeMux

	mu   sync.RWMutex
	snap snapshot
}

// NewServer constructs a kiosk server. loc is the display timezone used
// to resolve "the current week".
func NewServer(cfg *config.Config, loader Loader, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg:    cfg,
		loader: loader,
		loc:    loc,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/week", s.handleWeekJSON)
	s.mux.HandleFunc("/", s.handlePage)
	return s
}

// Handler returns the http.Handler, wrapped with basic auth when
// configured. /health always stays reachable without credentials.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("kiosk basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// LoopbackHandler returns the handlers without the basic auth wrapper.
// Snapshot capture serves the page on an ephemeral loopback listener and
// the headless browser carries no credentials, so auth stays on the
// public listener only.
func (s *Server) LoopbackHandler() http.Handler {
	return s.mux
}

// Run refreshes once, starts the cron refresh loop, and serves HTTP until
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.Refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.RefreshCron, func() { s.Refresh(ctx) }); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{Addr: s.cfg.Listen, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLog.Info("kiosk serving", "listen", "http://"+s.cfg.Listen, "refresh", s.cfg.RefreshCron)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Refresh refetches the schedule into the cached snapshot.
func (s *Server) Refresh(ctx context.Context) {
	ident, sessions, err := s.loader(ctx)

	snap := snapshot{UpdatedAt: time.Now()}
	if err != nil {
		appLog.Error("kiosk refresh failed", err)
		snap.Err = "Erreur lors du chargement de l'emploi du temps"
	} else {
		snap.Identity = ident
		snap.Sessions = sessions
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *Server) current() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="tcsched", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// refWeek resolves the requested week window: ?week=YYYY-MM-DD selects the
// window containing that date, otherwise today's window is used.
func (s *Server) refWeek(r *http.Request) schedule.Week {
	if q := r.URL.Query().Get("week"); q != "" {
		if d, err := time.ParseInLocation("2006-01-02", q, s.loc); err == nil {
			return schedule.WeekOf(d)
		}
		appLog.Warn("kiosk: ignoring bad week parameter", "week", q)
	}
	return schedule.WeekOf(time.Now().In(s.loc))
}

// sessionDTO is the JSON shape of one session in /api/week.
type sessionDTO struct {
	ID          int    `json:"id"`
	Date        string `json:"date"`
	StartHour   int    `json:"start_hour"`
	EndHour     int    `json:"end_hour"`
	CourseID    int    `json:"course_id"`
	CourseTitle string `json:"course_title"`
	Room        string `json:"room,omitempty"`
	Group       string `json:"group,omitempty"`
	Instructor  string `json:"instructor,omitempty"`
	Color       int    `json:"color"`
}

type weekResponse struct {
	WeekStart string         `json:"week_start"`
	WeekEnd   string         `json:"week_end"`
	Sessions  []sessionDTO   `json:"sessions"`
	Stats     schedule.Stats `json:"stats"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (s *Server) handleWeekJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	week := s.refWeek(r)

	filtered := schedule.FilterWeek(snap.Sessions, week)
	colors := schedule.AssignColors(filtered)

	dtos := make([]sessionDTO, 0, len(filtered))
	for _, sess := range filtered {
		dto := sessionDTO{
			ID:          sess.ID,
			Date:        sess.DateKey(),
			StartHour:   sess.StartHour,
			EndHour:     sess.EndHour,
			CourseID:    sess.CourseID,
			CourseTitle: sess.CourseTitle,
			Room:        sess.Room,
			Color:       colors[sess.CourseID],
		}
		if sess.Group != nil {
			dto.Group = sess.Group.Name
		}
		if snap.Identity.IsStudent() && sess.Instructor != nil {
			dto.Instructor = sess.Instructor.Name
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, http.StatusOK, weekResponse{
		WeekStart: week.Start.Format("2006-01-02"),
		WeekEnd:   week.End.Format("2006-01-02"),
		Sessions:  dtos,
		Stats:     schedule.ComputeStats(filtered),
		Error:     snap.Err,
		UpdatedAt: snap.UpdatedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("kiosk: failed to write JSON response", err)
	}
}
