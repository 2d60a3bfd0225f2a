// Package worker implements the consumer-side processing protocol for batch
// email requests: idempotent per-recipient delivery against the status store,
// failure injection, bounded queue-delegated retry and resubmission on retry
// exhaustion.
package worker

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/example/batch-email-service/internal/chaos"
	"github.com/example/batch-email-service/internal/kafka/publisher"
	"github.com/example/batch-email-service/internal/models"
	"github.com/example/batch-email-service/internal/personalizer"
	email "github.com/example/batch-email-service/internal/providers/email"
	"github.com/example/batch-email-service/internal/statusstore"
)

// Config contains the runtime settings the engine relies on for retry and
// concurrency behaviour. MaxRetries counts retries after the first delivery:
// with MaxRetries=3 a request gets four attempts before resubmission.
type Config struct {
	MaxRetries        int
	RetryDelay        time.Duration
	WorkerConcurrency int
}

// Record represents a queue message delivered to the engine, decoupled from
// the concrete consumer implementation. Headers carry the attempt counter
// between redeliveries; commit acknowledges the underlying offset.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string][]byte

	commit func(ctx context.Context) error
}

// NewRecord constructs a Record bound to the supplied commit function.
func NewRecord(topic string, partition int32, offset int64, key, value []byte, headers map[string][]byte, commit func(ctx context.Context) error) *Record {
	return &Record{
		Topic:     topic,
		Partition: partition,
		Offset:    offset,
		Key:       key,
		Value:     value,
		Headers:   headers,
		commit:    commit,
	}
}

// Injector is the chaos gate evaluated once per batch.
type Injector interface {
	ShouldFail() bool
}

// Requeuer hands failed deliveries back to the request topic. ScheduleRetry
// reports the publish outcome through done so the caller can tie the inbound
// acknowledgement to the retry durably reaching the topic.
type Requeuer interface {
	ScheduleRetry(key, payload []byte, attempt int, delay time.Duration, done func(error))
	Resubmit(key, payload []byte) error
}

// Renderer produces the personalized body for one recipient.
type Renderer func(recipient, template string, personalizationData map[string]map[string]string) (string, error)

// Dependencies collects the runtime collaborators required by the engine.
type Dependencies struct {
	Store    statusstore.Store
	Provider email.Provider
	Injector Injector
	Requeuer Requeuer
	Logger   zerolog.Logger
	Render   Renderer
}

// Engine orchestrates the per-delivery state machine: decode, chaos gate,
// idempotent recipient loop, then retry or resubmission disposition.
type Engine struct {
	cfg      Config
	store    statusstore.Store
	provider email.Provider
	injector Injector
	requeuer Requeuer
	logger   zerolog.Logger
	render   Renderer

	semaphore *semaphore.Weighted
}

// NewEngine constructs an engine using the supplied configuration and
// collaborators. Configuration and dependencies are validated upfront so a
// misconfigured worker fails at startup rather than on the first batch.
func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if cfg.MaxRetries < 0 {
		return nil, errors.New("worker: max retries cannot be negative")
	}
	if cfg.RetryDelay < 0 {
		return nil, errors.New("worker: retry delay cannot be negative")
	}
	if cfg.WorkerConcurrency < 1 {
		return nil, errors.New("worker: worker concurrency must be >= 1")
	}
	if deps.Store == nil {
		return nil, errors.New("worker: status store dependency is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("worker: email provider dependency is required")
	}
	if deps.Injector == nil {
		return nil, errors.New("worker: failure injector dependency is required")
	}
	if deps.Requeuer == nil {
		return nil, errors.New("worker: requeuer dependency is required")
	}

	logger := deps.Logger
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	logger = logger.With().Str("component", "worker_engine").Logger()

	render := deps.Render
	if render == nil {
		render = personalizer.Render
	}

	return &Engine{
		cfg:       cfg,
		store:     deps.Store,
		provider:  deps.Provider,
		injector:  deps.Injector,
		requeuer:  deps.Requeuer,
		logger:    logger,
		render:    render,
		semaphore: semaphore.NewWeighted(int64(cfg.WorkerConcurrency)),
	}, nil
}

// HandleRecord processes one task delivery end to end. The offset is
// committed only after the batch succeeds or its retry has durably reached
// the request topic (late acknowledgement); on failure the commit happens in
// the retry publish callback, which may fire after this call returns.
// Concurrency across deliveries is bounded by the configured semaphore; the
// recipient loop within a delivery is strictly sequential.
func (e *Engine) HandleRecord(ctx context.Context, record *Record) {
	if record == nil {
		return
	}

	if err := e.semaphore.Acquire(ctx, 1); err != nil {
		e.logger.Error().Err(err).Msg("worker: failed to acquire concurrency semaphore")
		return
	}
	defer e.semaphore.Release(1)

	attempt := publisher.AttemptFromHeaders(record.Headers)

	req, err := models.DecodeBatchEmailRequest(record.Value)
	if err != nil {
		// Producer defect, not a transient condition. Drop without retry.
		e.logger.Error().
			Err(err).
			Str("topic", record.Topic).
			Int64("offset", record.Offset).
			Msg("worker: malformed batch email request discarded")
		e.commitRecord(ctx, record)
		return
	}

	log := e.logger.With().
		Str("request_id", req.RequestID).
		Int("attempt", attempt).
		Int("recipients", len(req.Recipients)).
		Logger()

	if err := e.processBatch(ctx, log, req); err != nil {
		log.Error().Err(err).Msg("worker: batch processing failed")
		e.dispatchFailure(ctx, log, record, attempt)
		return
	}

	log.Info().Msg("worker: batch processed")
	e.commitRecord(ctx, record)
}

// processBatch runs the chaos gate and the ordered per-recipient loop. Any
// error aborts the remaining loop and fails the whole attempt.
func (e *Engine) processBatch(ctx context.Context, log zerolog.Logger, req *models.BatchEmailRequest) error {
	if e.injector.ShouldFail() {
		// The whole batch is marked failed, overwriting any success entries
		// recorded by earlier attempts of this request.
		for _, recipient := range req.Recipients {
			if err := e.store.Set(ctx, req.RequestID, recipient, models.StatusFailed); err != nil {
				return err
			}
		}
		return fmt.Errorf("%w: request %s", chaos.ErrSimulatedFailure, req.RequestID)
	}

	for _, recipient := range req.Recipients {
		status, found, err := e.store.Get(ctx, req.RequestID, recipient)
		if err != nil {
			return err
		}
		if found && status == models.StatusSuccess {
			log.Debug().Str("recipient", recipient).Msg("worker: recipient already delivered, skipping")
			continue
		}

		body, err := e.render(recipient, req.Body, req.PersonalizationData)
		if err != nil {
			return err
		}

		if err := e.provider.Send(ctx, &email.Payload{
			RequestID: req.RequestID,
			Recipient: recipient,
			Subject:   req.Subject,
			Body:      body,
		}); err != nil {
			return err
		}

		if err := e.store.Set(ctx, req.RequestID, recipient, models.StatusSuccess); err != nil {
			return err
		}
	}

	return nil
}

// dispatchFailure hands the failed delivery back to the queue. Below the
// retry budget the same payload is rescheduled with an incremented attempt
// counter. Once the budget is exhausted the original payload is resubmitted
// as a brand-new message with the counter reset, and the in-flight delivery
// still receives its final scheduled retry; a request that keeps failing
// re-enters the queue rather than terminating, and there is no dead-letter
// destination.
func (e *Engine) dispatchFailure(ctx context.Context, log zerolog.Logger, record *Record, attempt int) {
	if attempt >= e.cfg.MaxRetries {
		if err := e.requeuer.Resubmit(record.Key, record.Value); err != nil {
			log.Error().Err(err).Msg("worker: resubmission after retry exhaustion failed")
		} else {
			log.Warn().Msg("worker: retry budget exhausted, request resubmitted as fresh message")
		}
	}

	// The inbound offset is acknowledged only once the retry has durably
	// landed on the topic. A crash during the delay window or a failed
	// publish leaves the offset uncommitted, so the broker redelivers the
	// original and the request is never lost.
	e.requeuer.ScheduleRetry(record.Key, record.Value, attempt+1, e.cfg.RetryDelay, func(err error) {
		if err != nil {
			log.Error().Err(err).Msg("worker: retry publish failed, offset left uncommitted for redelivery")
			return
		}
		e.commitRecord(ctx, record)
	})
	log.Info().
		Dur("delay", e.cfg.RetryDelay).
		Int("next_attempt", attempt+1).
		Msg("worker: retry handed back to queue")
}

func (e *Engine) commitRecord(ctx context.Context, record *Record) {
	if record == nil || record.commit == nil {
		return
	}
	if err := record.commit(ctx); err != nil {
		e.logger.Error().
			Str("topic", record.Topic).
			Int32("partition", record.Partition).
			Int64("offset", record.Offset).
			Err(err).
			Msg("worker: failed to commit record offset")
	}
}
