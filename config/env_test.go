package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Setenv("PASETO_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGO_MODE", "local")
	t.Setenv("MONGO_URI_LOCAL", "mongodb://localhost:27017/test")
}

func TestLoad_Defaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "storefront", cfg.MongoDB)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_AtlasRequiresURI(t *testing.T) {
	setValidEnv(t)
	t.Setenv("MONGO_MODE", "atlas")
	t.Setenv("MONGO_URI_ATLAS", "")

	_, err := Load()
	assert.ErrorContains(t, err, "MONGO_URI_ATLAS")
}

func TestLoad_PasetoKeyLength(t *testing.T) {
	setValidEnv(t)
	t.Setenv("PASETO_SECRET_KEY", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "32 characters")

	// Maintenance commands do not need token secrets.
	cfg, err := LoadForTools()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/test", cfg.MongoURI)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "CACHE_TTL")
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a:1", "http://b"}, splitCSV(" a:1 , ,http://b/ "))
	assert.Empty(t, splitCSV(""))
}
