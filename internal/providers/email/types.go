package email

import "context"

// Payload is the canonical representation of a single outbound personalized
// email handed to the provider.
type Payload struct {
	RequestID string
	Recipient string
	Subject   string
	Body      string
}

// Provider is the transport contract. The reference implementation logs the
// send; swapping in a real SMTP or API-backed transport only requires another
// implementation of this interface.
type Provider interface {
	Send(ctx context.Context, payload *Payload) error
}
