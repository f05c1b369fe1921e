package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8084", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.FX.CacheTTL)
	assert.Equal(t, "@every 10m", cfg.Jobs.ExpirySchedule)
	assert.Equal(t, 48*time.Hour, cfg.Jobs.ExpiryMaxAge)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BOOKING_SERVICE_PORT", "9090")
	t.Setenv("BOOKING_DB_HOST", "db.internal")
	t.Setenv("BOOKING_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BOOKING_SUBSCRIPTION_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port, "a bare port gets a colon prefix")
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Subscription.Timeout)
}

func TestLoadRequiresJWTSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKING_JWT_SECRET")

	t.Setenv("BOOKING_JWT_SECRET", "super-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "super-secret", cfg.JWT.Secret)
}

func TestDatabaseConfigRenderings(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "booking", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/booking?sslmode=disable", db.DatabaseURL())
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=booking sslmode=disable", db.DSN())
}
