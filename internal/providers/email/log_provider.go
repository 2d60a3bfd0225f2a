package email

import (
	"context"
	"errors"
	"reflect"

	"github.com/rs/zerolog"
)

// LogProvider is the reference transport: each send emits a confirmation log
// line instead of contacting a mail server.
type LogProvider struct {
	logger zerolog.Logger
}

// NewLogProvider constructs the logging transport.
func NewLogProvider(logger zerolog.Logger) *LogProvider {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &LogProvider{logger: logger}
}

// Send implements Provider.
func (p *LogProvider) Send(ctx context.Context, payload *Payload) error {
	if payload == nil {
		return errors.New("email provider: payload is required")
	}
	if payload.Recipient == "" {
		return errors.New("email provider: recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Info().
		Str("request_id", payload.RequestID).
		Str("recipient", payload.Recipient).
		Str("subject", payload.Subject).
		Str("body", payload.Body).
		Msg("email sent")
	return nil
}
