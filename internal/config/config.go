package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration for the batch email worker.
type Config struct {
	App   AppConfig
	Kafka KafkaConfig
	Redis RedisConfig
	Retry RetryConfig
	Chaos ChaosConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	LogLevel string
}

// KafkaConfig defines broker information plus the request topic and consumer
// group this worker binds to.
type KafkaConfig struct {
	Brokers       []string
	RequestTopic  string
	ConsumerGroup string
}

// RedisConfig points at the status store endpoint shared by all worker
// instances.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RetryConfig controls the bounded-retry behaviour. MaxRetries counts retries
// after the first delivery, so a value of 3 allows four attempts in total
// before a resubmission is triggered.
type RetryConfig struct {
	MaxRetries        int
	RetryDelaySeconds int
	WorkerConcurrency int
}

// ChaosConfig configures the simulated failure gate. FailureProbability is a
// value in [0, 1]; zero disables injection.
type ChaosConfig struct {
	FailureProbability float64
}

// Load reads environment variables, applies defaults, validates required
// values and returns a populated Config instance. A local .env file is
// honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)

	cfg.Kafka.Brokers = ldr.getStringSlice("KAFKA_BROKERS", true)
	cfg.Kafka.RequestTopic = ldr.getString("KAFKA_EMAIL_REQUEST_TOPIC", "", true)
	cfg.Kafka.ConsumerGroup = ldr.getString("EMAIL_CONSUMER_GROUP", "", true)

	cfg.Redis.Addr = ldr.getString("REDIS_ADDR", "", true)
	cfg.Redis.Password = ldr.getString("REDIS_PASSWORD", "", false)
	cfg.Redis.DB = ldr.getInt("REDIS_DB", 0, false)

	cfg.Retry.MaxRetries = ldr.getInt("MAX_RETRIES", 3, false)
	cfg.Retry.RetryDelaySeconds = ldr.getInt("RETRY_DELAY_SECONDS", 5, false)
	cfg.Retry.WorkerConcurrency = ldr.getInt("WORKER_CONCURRENCY", 10, false)

	cfg.Chaos.FailureProbability = ldr.getFloat("FAILURE_PROBABILITY", 0, false)

	if cfg.Retry.MaxRetries < 0 {
		ldr.addError("MAX_RETRIES cannot be negative")
	}
	if cfg.Retry.RetryDelaySeconds < 0 {
		ldr.addError("RETRY_DELAY_SECONDS cannot be negative")
	}
	if cfg.Retry.WorkerConcurrency < 1 {
		ldr.addError("WORKER_CONCURRENCY must be >= 1")
	}
	if cfg.Chaos.FailureProbability < 0 || cfg.Chaos.FailureProbability > 1 {
		ldr.addError("FAILURE_PROBABILITY must be within [0, 1]")
	}

	if err := ldr.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			if required {
				l.addError(fmt.Sprintf("%s is required", key))
			}
			return def
		}
		return val
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) getFloat(key string, def float64, required bool) float64 {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid number", key))
		return def
	}
	return f
}

func (l *envLoader) getStringSlice(key string, required bool) []string {
	raw := l.getString(key, "", required)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if required && len(out) == 0 {
		l.addError(fmt.Sprintf("%s must contain at least one entry", key))
	}
	return out
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
