package worker

import (
	"context"

	"github.com/example/batch-email-service/internal/kafka/consumer"
)

// KafkaHandler returns a consumer.Handler that converts Kafka consumer
// records into engine records and delegates processing. The commit callback
// is bound to the consumer so the engine controls when the offset is flushed.
func KafkaHandler(engine *Engine, cons *consumer.Consumer) consumer.Handler {
	return func(ctx context.Context, rec *consumer.Record) error {
		if engine == nil || rec == nil {
			return nil
		}

		commit := func(context.Context) error { return nil }
		if cons != nil {
			commit = func(c context.Context) error {
				return cons.Commit(c, rec)
			}
		}

		record := NewRecord(rec.Topic, rec.Partition, rec.Offset, rec.Key, rec.Value, rec.Headers, commit)
		engine.HandleRecord(ctx, record)
		return nil
	}
}
