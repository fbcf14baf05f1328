package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("REDIS_HOST", "localhost")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"PORT", "APP_ENV", "CART_STORE", "TOKEN_TTL", "LOGIN_BURST",
		"MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_HOST", "MYSQL_PORT", "MYSQL_DATABASE"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis", cfg.CartStore)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.False(t, cfg.Production())
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/storefront?charset=utf8mb4&parseTime=True&loc=Local", cfg.MySQL.DSN())
}

func TestFromEnv_RequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("CART_STORE", "memory")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SESSION_SECRET", "")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CART_STORE", "memory")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("SESSION_SECURE", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.CartStore)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SessionSecure)
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	setRequired(t)

	t.Setenv("CART_STORE", "disk")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("CART_STORE", "memory")
	t.Setenv("CART_TTL", "soon")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "CART_TTL")
}
