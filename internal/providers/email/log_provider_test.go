package email_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	email "github.com/example/batch-email-service/internal/providers/email"
)

func TestLogProviderEmitsSendConfirmation(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	provider := email.NewLogProvider(log)

	err := provider.Send(context.Background(), &email.Payload{
		RequestID: "r1",
		Recipient: "a@x.com",
		Subject:   "Test Subject",
		Body:      "Hi A",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"recipient":"a@x.com"`, `"subject":"Test Subject"`, `"body":"Hi A"`, "email sent"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output, got %s", want, out)
		}
	}
}

func TestLogProviderRejectsNilPayload(t *testing.T) {
	provider := email.NewLogProvider(zerolog.Nop())
	if err := provider.Send(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}

func TestLogProviderRejectsMissingRecipient(t *testing.T) {
	provider := email.NewLogProvider(zerolog.Nop())
	if err := provider.Send(context.Background(), &email.Payload{}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestLogProviderHonoursCancelledContext(t *testing.T) {
	provider := email.NewLogProvider(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := provider.Send(ctx, &email.Payload{Recipient: "a@x.com"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
