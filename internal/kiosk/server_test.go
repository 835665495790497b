package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcsched/internal/config"
	"tcsched/internal/model"
)

func kioskFixture() (model.Identity, []model.Session) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	ident := model.Identity{Username: "mdupont", Roles: []string{"ROLE_ETUDIANT"}}
	sessions := []model.Session{
		{ID: 1, Date: day, StartHour: 8, EndHour: 10, CourseID: 1, CourseTitle: "Go", Room: "A1",
			Instructor: &model.Ref{Name: "Durand Alice"}},
		{ID: 2, Date: day.AddDate(0, 0, 2), StartHour: 14, EndHour: 15, CourseID: 2, CourseTitle: "SQL"},
		{ID: 3, Date: day.AddDate(0, 0, 14), StartHour: 9, EndHour: 10, CourseID: 1, CourseTitle: "Go"},
	}
	return ident, sessions
}

func testServer(t *testing.T, loader Loader, ba *config.BasicAuthConfig) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BasicAuth = ba
	s := NewServer(cfg, loader, time.UTC)
	s.Refresh(context.Background())
	return s
}

func okLoader() Loader {
	ident, sessions := kioskFixture()
	return func(ctx context.Context) (model.Identity, []model.Session, error) {
		return ident, sessions, nil
	}
}

func TestWeekJSON(t *testing.T) {
	s := testServer(t, okLoader(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/week?week=2024-06-04", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp weekResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "2024-06-03", resp.WeekStart)
	assert.Equal(t, "2024-06-08", resp.WeekEnd)
	// Session 3 is two weeks out and must be filtered away.
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, 2, resp.Stats.Sessions)
	assert.Equal(t, 3, resp.Stats.Hours)
	assert.Equal(t, 2, resp.Stats.Courses)
	// Student viewer: instructor names are included.
	assert.Equal(t, "Durand Alice", resp.Sessions[0].Instructor)
	assert.Empty(t, resp.Error)
}

func TestWeekJSONSelectsOtherWeek(t *testing.T) {
	s := testServer(t, okLoader(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/week?week=2024-06-17", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp weekResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, 3, resp.Sessions[0].ID)
}

func TestRefreshFailureFailsClosed(t *testing.T) {
	calls := 0
	loader := func(ctx context.Context) (model.Identity, []model.Session, error) {
		calls++
		if calls == 1 {
			ident, sessions := kioskFixture()
			return ident, sessions, nil
		}
		return model.Identity{}, nil, errors.New("backend down")
	}
	s := testServer(t, loader, nil)

	// Second refresh fails: the cached sessions must be cleared, not kept.
	s.Refresh(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/week?week=2024-06-04", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp weekResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Sessions)
	assert.NotEmpty(t, resp.Error)
}

func TestBasicAuth(t *testing.T) {
	ba := &config.BasicAuthConfig{Username: "kiosk", Password: "hunter2"}
	s := testServer(t, okLoader(), ba)
	h := s.Handler()

	// /health bypasses auth.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Everything else 401s without credentials.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/week", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/week", nil)
	req.SetBasicAuth("kiosk", "hunter2")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoopbackHandlerBypassesBasicAuth(t *testing.T) {
	ba := &config.BasicAuthConfig{Username: "kiosk", Password: "hunter2"}
	s := testServer(t, okLoader(), ba)

	// The capture browser sends no credentials; through the public
	// handler the page request is rejected and the ready marker never
	// appears.
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?week=2024-06-03", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), `data-ready="true"`)

	// The loopback handler used by snapshot capture serves it anyway.
	rec = httptest.NewRecorder()
	s.LoopbackHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?week=2024-06-03", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-ready="true"`)
}

func TestPageRender(t *testing.T) {
	s := testServer(t, okLoader(), nil)

	req := httptest.NewRequest(http.MethodGet, "/?week=2024-06-04", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	// Snapshot capture waits on this marker.
	assert.Contains(t, body, `data-ready="true"`)
	assert.Contains(t, body, "Go")
	assert.Contains(t, body, `rowspan="2"`)
	assert.Contains(t, body, "Lun 3")
	assert.Contains(t, body, "Séances cette semaine")
	// Grid and list agree: two cards each.
	assert.Equal(t, 2, strings.Count(body, `class="card`))
	assert.Equal(t, 2, strings.Count(body, `class="list-card"`))
}

func TestPageNotFoundOutsideRoot(t *testing.T) {
	s := testServer(t, okLoader(), nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
