package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.FeedDefaultBatch)
	assert.Equal(t, 100, cfg.FeedMaxBatch)
	assert.Equal(t, 5*time.Second, cfg.FeedQueryTimeout)
	assert.Equal(t, 2.0, cfg.PopularLikeWeight)
	assert.Equal(t, 0.5, cfg.PopularViewWeight)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("FEED_QUERY_TIMEOUT", "250ms")
	t.Setenv("POPULAR_VIEW_WEIGHT", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.FeedQueryTimeout)
	assert.Equal(t, 0.25, cfg.PopularViewWeight)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
}

func TestLoad_JWTSecretRequiredOutsideDevelopment(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "")

	t.Setenv("ENV", "production")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, developmentJWTSecret, cfg.JWTSecret)
}

func TestNewLogger_LevelFollowsEnvironment(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, NewLogger(&Config{Env: "dev"}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger(&Config{Env: "production"}).GetLevel())
}

func TestLoad_MongoStorageNeedsConnections(t *testing.T) {
	t.Setenv("STORAGE", "mongo")
	t.Setenv("MONGO_URI", "")
	t.Setenv("POSTGRES_CONN_STR", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE", "sqlite")
	_, err = Load()
	assert.Error(t, err)
}
