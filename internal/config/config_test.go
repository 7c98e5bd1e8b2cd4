package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv() {
	envVars := []string{
		"PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"KAFKA_BROKERS", "KAFKA_BOOKING_TOPIC",
		"MIN_BOOKING_IN_ADVANCE", "MAX_BOOKING_HOLD", "HOLD_SWEEP_INTERVAL",
	}
	for _, env := range envVars {
		os.Unsetenv(env)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv()

	cfg := Load()

	// Server defaults
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)

	// Database defaults
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "flight_booking", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	// Redis defaults
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 0, cfg.Redis.DB)

	// Kafka defaults
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "booking-events", cfg.Kafka.Topic)

	// Booking defaults
	assert.Equal(t, 60*time.Minute, cfg.Booking.MinBookingInAdvance)
	assert.Equal(t, 30*time.Minute, cfg.Booking.MaxBookingHold)
	assert.Equal(t, 1*time.Minute, cfg.Booking.SweepInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv()
	os.Setenv("PORT", "9090")
	os.Setenv("DB_NAME", "flight_booking_test")
	os.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	os.Setenv("MIN_BOOKING_IN_ADVANCE", "90m")
	os.Setenv("MAX_BOOKING_HOLD", "15m")
	os.Setenv("HOLD_SWEEP_INTERVAL", "30s")
	defer clearEnv()

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "flight_booking_test", cfg.Database.DBName)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Minute, cfg.Booking.MinBookingInAdvance)
	assert.Equal(t, 15*time.Minute, cfg.Booking.MaxBookingHold)
	assert.Equal(t, 30*time.Second, cfg.Booking.SweepInterval)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv()
	os.Setenv("MAX_BOOKING_HOLD", "not-a-duration")
	defer clearEnv()

	cfg := Load()

	// 不正な値はデフォルトにフォールバック
	assert.Equal(t, 30*time.Minute, cfg.Booking.MaxBookingHold)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.example.com", Port: "5432",
		User: "app", Password: "secret",
		DBName: "flight_booking", SSLMode: "require",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "host=db.example.com")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "user=app")
	assert.Contains(t, dsn, "password=secret")
	assert.Contains(t, dsn, "dbname=flight_booking")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.example.com", Port: "6380"}
	assert.Equal(t, "cache.example.com:6380", cfg.Addr())
}
