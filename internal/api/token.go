package api

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"tcsched/internal/model"
)

// Bearer tokens are persisted under the cache dir so repeat invocations
// skip the login round-trip until the token expires. The client never
// verifies token signatures (the server does); it only reads claims.

const tokenFile = "token"

// SaveToken persists the bearer token with 0600 permissions.
func SaveToken(cacheDir, token string) error {
	if cacheDir == "" {
		return errors.New("cache dir is empty")
	}
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cacheDir, tokenFile), []byte(token), 0o600)
}

// LoadToken reads a previously persisted token. A missing file is not an
// error; it returns the empty string.
func LoadToken(cacheDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(cacheDir, tokenFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// DropToken removes the persisted token (after an ErrUnauthorized).
func DropToken(cacheDir string) {
	_ = os.Remove(filepath.Join(cacheDir, tokenFile))
}

// IdentityFromToken reads the identity claims out of a JWT without
// verifying its signature, and reports the expiry time when present.
func IdentityFromToken(token string) (model.Identity, time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return model.Identity{}, time.Time{}, err
	}

	var ident model.Identity
	if sub, ok := claims["sub"].(string); ok {
		ident.Username = sub
	}
	if u, ok := claims["username"].(string); ok && u != "" {
		ident.Username = u
	}
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				ident.Roles = append(ident.Roles, s)
			}
		}
	}

	var exp time.Time
	if v, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0)
	}
	return ident, exp, nil
}

// TokenUsable reports whether the token parses and is not due to expire
// within the next minute. Tokens without an exp claim are considered
// usable; the server will reject them if it disagrees.
func TokenUsable(token string) bool {
	if token == "" {
		return false
	}
	_, exp, err := IdentityFromToken(token)
	if err != nil {
		return false
	}
	if exp.IsZero() {
		return true
	}
	return time.Until(exp) > time.Minute
}
