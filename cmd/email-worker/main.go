package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/example/batch-email-service/internal/chaos"
	"github.com/example/batch-email-service/internal/config"
	"github.com/example/batch-email-service/internal/kafka/consumer"
	"github.com/example/batch-email-service/internal/kafka/producer"
	"github.com/example/batch-email-service/internal/kafka/publisher"
	"github.com/example/batch-email-service/internal/logger"
	emailprovider "github.com/example/batch-email-service/internal/providers/email"
	"github.com/example/batch-email-service/internal/statusstore"
	"github.com/example/batch-email-service/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fail("config load", err)
	}

	baseLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fail("logger init", err)
	}
	log := baseLogger.With().Str("service", "email-worker").Logger()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}()

	store, err := statusstore.NewRedisStore(redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create status store")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		cancel()
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("status store unreachable")
	}
	cancel()

	prod, err := producer.New(cfg.Kafka.Brokers, log.With().Str("component", "producer").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka producer")
	}
	defer func() {
		if err := prod.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka producer")
		}
	}()

	cons, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, log.With().Str("component", "consumer").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka consumer")
	}
	defer func() {
		if err := cons.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka consumer")
		}
	}()

	requeuer, err := publisher.NewRequeuer(prod, cfg.Kafka.RequestTopic, log.With().Str("component", "requeuer").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create requeue publisher")
	}

	provider := emailprovider.NewLogProvider(log.With().Str("component", "email-provider").Logger())
	injector := chaos.NewInjector(cfg.Chaos.FailureProbability)

	engine, err := worker.NewEngine(worker.Config{
		MaxRetries:        cfg.Retry.MaxRetries,
		RetryDelay:        time.Duration(cfg.Retry.RetryDelaySeconds) * time.Second,
		WorkerConcurrency: cfg.Retry.WorkerConcurrency,
	}, worker.Dependencies{
		Store:    store,
		Provider: provider,
		Injector: injector,
		Requeuer: requeuer,
		Logger:   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise worker engine")
	}

	handler := worker.KafkaHandler(engine, cons)

	errCh := make(chan error, 1)
	go func() {
		if err := cons.Consume(ctx, []string{cfg.Kafka.RequestTopic}, handler); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().
		Str("request_topic", cfg.Kafka.RequestTopic).
		Str("consumer_group", cfg.Kafka.ConsumerGroup).
		Float64("failure_probability", cfg.Chaos.FailureProbability).
		Msg("email worker started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("consumer terminated with error")
		}
	}
}

func fail(stage string, err error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Fatal().Err(err).Str("stage", stage).Msg("email worker init failed")
}
