package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSaveLoadToken(t *testing.T) {
	dir := t.TempDir()

	got, err := LoadToken(dir)
	require.NoError(t, err)
	assert.Equal(t, "", got, "missing token file is not an error")

	require.NoError(t, SaveToken(dir, "tok123"))
	got, err = LoadToken(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok123", got)

	DropToken(dir)
	got, err = LoadToken(dir)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestIdentityFromToken(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub":   "mdupont",
		"roles": []string{"ROLE_ETUDIANT"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	ident, exp, err := IdentityFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "mdupont", ident.Username)
	assert.True(t, ident.IsStudent())
	assert.False(t, ident.IsInstructor())
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestTokenUsable(t *testing.T) {
	fresh := signedToken(t, jwt.MapClaims{"sub": "a", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signedToken(t, jwt.MapClaims{"sub": "a", "exp": time.Now().Add(-time.Hour).Unix()})
	noExp := signedToken(t, jwt.MapClaims{"sub": "a"})

	assert.True(t, TokenUsable(fresh))
	assert.False(t, TokenUsable(expired), "expired stored token must force re-login")
	assert.True(t, TokenUsable(noExp))
	assert.False(t, TokenUsable(""))
	assert.False(t, TokenUsable("garbage"))
}
