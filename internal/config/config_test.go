package config_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/example/batch-email-service/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("KAFKA_BROKERS", "broker-a:9092")
	t.Setenv("KAFKA_EMAIL_REQUEST_TOPIC", "email.personalization.request")
	t.Setenv("EMAIL_CONSUMER_GROUP", "email-workers")
	t.Setenv("REDIS_ADDR", "localhost:6379")
}

func TestLoadSuccess(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9093")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_DELAY_SECONDS", "7")
	t.Setenv("WORKER_CONCURRENCY", "4")
	t.Setenv("FAILURE_PROBABILITY", "0.25")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Env != "production" || cfg.App.LogLevel != "warn" {
		t.Fatalf("unexpected app config: %+v", cfg.App)
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"broker-a:9092", "broker-b:9093"}) {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.RequestTopic != "email.personalization.request" {
		t.Fatalf("unexpected topic: %s", cfg.Kafka.RequestTopic)
	}
	if cfg.Retry.MaxRetries != 5 || cfg.Retry.RetryDelaySeconds != 7 || cfg.Retry.WorkerConcurrency != 4 {
		t.Fatalf("unexpected retry config: %+v", cfg.Retry)
	}
	if cfg.Chaos.FailureProbability != 0.25 {
		t.Fatalf("unexpected failure probability: %f", cfg.Chaos.FailureProbability)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Retry.MaxRetries != 3 {
		t.Fatalf("expected default max retries 3, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.RetryDelaySeconds != 5 {
		t.Fatalf("expected default retry delay 5, got %d", cfg.Retry.RetryDelaySeconds)
	}
	if cfg.Chaos.FailureProbability != 0 {
		t.Fatalf("expected injection disabled by default, got %f", cfg.Chaos.FailureProbability)
	}
	if cfg.App.Env != "development" {
		t.Fatalf("expected development default, got %s", cfg.App.Env)
	}
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_EMAIL_REQUEST_TOPIC", "")
	t.Setenv("EMAIL_CONSUMER_GROUP", "")
	t.Setenv("REDIS_ADDR", "")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for missing required keys")
	}
	for _, key := range []string{"KAFKA_BROKERS", "KAFKA_EMAIL_REQUEST_TOPIC", "EMAIL_CONSUMER_GROUP", "REDIS_ADDR"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to name %s, got %v", key, err)
		}
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_RETRIES", "-1")
	t.Setenv("FAILURE_PROBABILITY", "1.5")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for out-of-range values")
	}
	if !strings.Contains(err.Error(), "MAX_RETRIES") || !strings.Contains(err.Error(), "FAILURE_PROBABILITY") {
		t.Fatalf("expected both violations reported, got %v", err)
	}
}

func TestLoadRejectsNonNumeric(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RETRY_DELAY_SECONDS", "soon")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for non-numeric delay")
	}
}
