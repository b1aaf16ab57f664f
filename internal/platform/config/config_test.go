package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("FACE_MATCH_THRESHOLD", "")
	t.Setenv("FACE_DAILY_LIMIT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := FromEnv()

	assert.Equal(t, 80.0, cfg.Face.Threshold)
	assert.Equal(t, 300, cfg.Budget.DailyLimit)
	assert.Equal(t, 900, cfg.Budget.MonthlyLimit)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.Registration.TTL)
	assert.Equal(t, 3, cfg.Registration.MaxAttempts)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FACE_MATCH_THRESHOLD", "75.5")
	t.Setenv("BUDGET_BACKEND", "redis")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("VENDOR_TIMEOUT", "8s")

	cfg := FromEnv()

	assert.Equal(t, 75.5, cfg.Face.Threshold)
	assert.Equal(t, BudgetBackendRedis, cfg.Budget.Backend)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 8*time.Second, cfg.VendorTimeout)
}
