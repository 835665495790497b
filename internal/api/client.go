// Package api is the HTTP client for the training-center portal backend.
// It owns everything wire-related: authentication, the profile/schedule
// fetch, response caching, and normalization of the backend's loose
// session records into model.Session values.
package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "tcsched/internal/log"
	"tcsched/internal/model"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// Callers react by discarding the persisted token and logging in again.
var ErrUnauthorized = errors.New("api: unauthorized")

// Client talks to the portal REST API.
type Client struct {
	baseURL  string
	cacheDir string
	loc      *time.Location
	http     *http.Client
	token    string
}

// NewClient creates a portal client. cacheDir holds the HTTP response
// cache; loc is the display timezone used when normalizing session dates.
func NewClient(baseURL, cacheDir string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		loc:      loc,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetToken installs a bearer token for subsequent requests.
func (c *Client) SetToken(tok string) { c.token = tok }

// Token returns the current bearer token (possibly refreshed by Login).
func (c *Client) Token() string { return c.token }

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string   `json:"access_token"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
}

// Login authenticates against POST /auth/login and installs the returned
// bearer token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (model.Identity, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return model.Identity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return model.Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Identity{}, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.Identity{}, fmt.Errorf("login: %w", ErrUnauthorized)
	default:
		return model.Identity{}, fmt.Errorf("login: %s", resp.Status)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return model.Identity{}, fmt.Errorf("login: decode response: %w", err)
	}
	if lr.AccessToken == "" {
		return model.Identity{}, errors.New("login: response carries no access token")
	}

	c.token = lr.AccessToken
	ident := model.Identity{Username: lr.Username, Roles: lr.Roles}
	if ident.Username == "" {
		ident.Username = username
	}

	appLog.Info("login ok", "username", ident.Username, "roles", strings.Join(ident.Roles, ","))
	return ident, nil
}

// FetchSchedule retrieves GET /profile and returns the signed-in user's
// identity together with the full, unfiltered session list. Week filtering
// happens in the schedule engine; malformed records are dropped here.
func (c *Client) FetchSchedule(ctx context.Context) (model.Identity, []model.Session, error) {
	body, err := c.get(ctx, c.baseURL+"/profile")
	if err != nil {
		return model.Identity{}, nil, err
	}

	var prof wireProfile
	if err := json.Unmarshal(body, &prof); err != nil {
		return model.Identity{}, nil, fmt.Errorf("profile: decode response: %w", err)
	}

	ident := model.Identity{Username: prof.Username, Roles: prof.Roles}
	sessions := NormalizeSessions(prof.EmploiDuTemps, c.loc)

	appLog.Info("schedule fetched",
		"username", ident.Username,
		"records", len(prof.EmploiDuTemps),
		"sessions", len(sessions),
	)
	return ident, sessions, nil
}

// get performs an authenticated conditional GET. ETag / Last-Modified
// validators from the disk cache are sent along; a 304 answer reuses the
// cached body, which the server has just confirmed to be current. There
// is deliberately no fallback to the cached body on network errors: a
// failed load must surface as a failure so the views can fail closed
// instead of presenting possibly stale data as fresh.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	cachePath, err := c.cachePathForURL(url)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, err
	}

	meta, _ := loadCacheMeta(cachePath)
	cachedBody, _ := loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if len(cachedBody) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := saveCache(cachePath, newMeta, body); err != nil {
			// Cache write failure is not fatal; the fresh body is still good.
			appLog.Error("response cache save failed", err, "url", url)
		}
		return body, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, errors.New("fetch: 304 Not Modified but no cached body available")
		}
		appLog.Debug("fetch not modified; using cached body", "url", url)
		return cachedBody, nil

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("fetch: %w", ErrUnauthorized)

	default:
		return nil, fmt.Errorf("fetch: %s", resp.Status)
	}
}

// cacheEntry holds HTTP cache metadata for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Client) cachePathForURL(url string) (string, error) {
	if url == "" {
		return "", errors.New("empty url")
	}
	sum := sha256.Sum256([]byte(url))
	dir := hex.EncodeToString(sum[:8])
	return filepath.Join(c.cacheDir, "http", dir), nil
}

func loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.json"))
}

func saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
