package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "development", cfg.Env)
}

func TestLoadKafkaBrokers(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "topsecret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
}

func TestInvalidEnvRejected(t *testing.T) {
	t.Setenv("ENV", "staging")

	_, err := Load()
	assert.Error(t, err)
}
