package main

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	var out strings.Builder
	assert.NoError(t, run([]string{"--help"}, &out))
	assert.Empty(t, out.String())
}

func TestRequiresSubject(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.EqualError(t, run(nil, &strings.Builder{}), "--sub is required")
}

func TestMintsOperatorToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "5")
	var out strings.Builder
	require.NoError(t, run([]string{"--sub", "alice"}, &out))

	raw := strings.TrimSpace(out.String())
	tok, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("cli-secret"), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, "OPERATOR", claims["role"])
}
