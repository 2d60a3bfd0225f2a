// Package publisher hands failed batch deliveries back to the request topic.
// A retry is a delayed republish of the same payload with an incremented
// attempt header; a resubmission is an immediate republish of the original
// payload as a brand-new message with the counter stripped. Together they
// replace a dead-letter destination: a request that keeps failing is never
// permanently dropped.
package publisher

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// AttemptHeader is the Kafka header carrying the delivery attempt counter.
// Absent means first delivery (attempt 0).
const AttemptHeader = "x-delivery-attempt"

var errProducerNotInitialised = errors.New("requeue publisher: producer not initialised")

// SyncProducer captures the subset of producer behaviour the requeuer needs.
type SyncProducer interface {
	PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error
}

// Option customises the requeuer during construction.
type Option func(*Requeuer)

// WithAfterFunc replaces the timer primitive used for delayed retries. Tests
// use this to fire retries synchronously.
func WithAfterFunc(after func(d time.Duration, f func()) *time.Timer) Option {
	return func(r *Requeuer) {
		if after != nil {
			r.after = after
		}
	}
}

// Requeuer publishes retry and resubmission traffic onto the request topic
// through the shared producer.
type Requeuer struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
	after    func(d time.Duration, f func()) *time.Timer
}

// NewRequeuer constructs a Requeuer bound to the given request topic.
func NewRequeuer(prod SyncProducer, topic string, logger zerolog.Logger, opts ...Option) (*Requeuer, error) {
	if prod == nil {
		return nil, errProducerNotInitialised
	}
	if topic == "" {
		return nil, errors.New("requeue publisher: topic is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	r := &Requeuer{
		producer: prod,
		topic:    topic,
		logger:   logger,
		after:    time.AfterFunc,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// ScheduleRetry arranges for the payload to be republished with the supplied
// attempt counter once the delay elapses. The call never blocks: the delay
// runs on a timer. When the publish attempt completes, done (if non-nil) is
// invoked with its result so the caller can hold the inbound acknowledgement
// until the retry has durably landed on the topic; a failed publish must
// leave the original uncommitted so the broker redelivers it.
func (r *Requeuer) ScheduleRetry(key, payload []byte, attempt int, delay time.Duration, done func(error)) {
	headers := map[string][]byte{
		AttemptHeader: []byte(strconv.Itoa(attempt)),
	}

	publish := func() {
		err := r.producer.PublishSync(r.topic, key, headers, payload)
		if err != nil {
			r.logger.Error().
				Err(err).
				Int("attempt", attempt).
				Str("topic", r.topic).
				Msg("requeue publisher: retry publish failed")
		} else {
			r.logger.Info().
				Int("attempt", attempt).
				Str("topic", r.topic).
				Msg("requeue publisher: retry landed on request topic")
		}
		if done != nil {
			done(err)
		}
	}

	if delay <= 0 {
		publish()
		return
	}
	r.after(delay, publish)
}

// Resubmit publishes the original payload as a brand-new message with the
// attempt counter reset, synchronously. This is the retry-exhaustion path:
// the request re-enters the queue from scratch rather than terminating.
func (r *Requeuer) Resubmit(key, payload []byte) error {
	if err := r.producer.PublishSync(r.topic, key, nil, payload); err != nil {
		return fmt.Errorf("requeue publisher: resubmit: %w", err)
	}
	r.logger.Info().
		Str("topic", r.topic).
		Msg("requeue publisher: request resubmitted as fresh message")
	return nil
}

// AttemptFromHeaders extracts the delivery attempt counter from record
// headers. Missing or malformed headers count as the first delivery.
func AttemptFromHeaders(headers map[string][]byte) int {
	raw, ok := headers[AttemptHeader]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
