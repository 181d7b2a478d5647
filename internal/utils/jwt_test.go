package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("k", "ops-1", "OPERATOR", 15)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("k"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "ops-1", claims["sub"])
	assert.Equal(t, "OPERATOR", claims["role"])
	assert.Equal(t, float64(tok.Exp.Unix()), claims["exp"])
}

func TestNewAccessTokenValidates(t *testing.T) {
	_, err := NewAccessToken("", "x", "OPERATOR", 1)
	assert.Error(t, err)
	_, err = NewAccessToken("k", "x", "OPERATOR", 0)
	assert.Error(t, err)
}
