package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/freshharvest/internal/config"
)

func TestGenerateAndParseToken(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}

	token, err := GenerateToken(cfg, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(&config.JWTConfig{Secret: "secret-a"}, "admin")
	require.NoError(t, err)

	_, err = ParseToken(&config.JWTConfig{Secret: "secret-b"}, token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(&config.JWTConfig{Secret: "test-secret"}, "not-a-jwt")
	assert.Error(t, err)
}
