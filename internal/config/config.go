package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port   string
	AppEnv string

	DB           DatabaseConfig
	JWT          JWTConfig
	Kafka        KafkaConfig
	Redis        RedisConfig
	Subscription SubscriptionConfig
	FX           FXConfig
	Jobs         JobsConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DatabaseURL renders the config as a postgres:// URL for the migration runner.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// DSN renders the config as a GORM/pgx DSN.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// JWTConfig holds token validation settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds the cache connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SubscriptionConfig points at the coverage ledger RPC.
type SubscriptionConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FXConfig points at the exchange-rate source.
type FXConfig struct {
	RateURL  string
	CacheTTL time.Duration
}

// JobsConfig controls the background expiry job.
type JobsConfig struct {
	ExpirySchedule string
	ExpiryMaxAge   time.Duration
}

// Load reads configuration from environment variables with the BOOKING_ prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8084")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "booking")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "autorentar-")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SUBSCRIPTION_BASE_URL", "http://localhost:8086")
	v.SetDefault("SUBSCRIPTION_TIMEOUT", "10s")

	v.SetDefault("FX_RATE_URL", "https://dolarapi.com/v1/dolares/oficial")
	v.SetDefault("FX_CACHE_TTL", "15m")

	v.SetDefault("JOBS_EXPIRY_SCHEDULE", "@every 10m")
	v.SetDefault("JOBS_EXPIRY_MAX_AGE", "48h")

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" && v.GetString("APP_ENV") != "development" {
		return nil, fmt.Errorf("BOOKING_JWT_SECRET is required outside development")
	}
	if jwtSecret == "" {
		jwtSecret = "dev-only-secret"
	}

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{Secret: jwtSecret},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Subscription: SubscriptionConfig{
			BaseURL: v.GetString("SUBSCRIPTION_BASE_URL"),
			Timeout: v.GetDuration("SUBSCRIPTION_TIMEOUT"),
		},
		FX: FXConfig{
			RateURL:  v.GetString("FX_RATE_URL"),
			CacheTTL: v.GetDuration("FX_CACHE_TTL"),
		},
		Jobs: JobsConfig{
			ExpirySchedule: v.GetString("JOBS_EXPIRY_SCHEDULE"),
			ExpiryMaxAge:   v.GetDuration("JOBS_EXPIRY_MAX_AGE"),
		},
	}, nil
}
