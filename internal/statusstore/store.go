// Package statusstore tracks per-recipient delivery outcomes for batch email
// requests. The store is the worker's sole idempotence guard: before sending,
// the worker reads the recipient's status and skips anything already marked
// success. Records are plain last-write-wins point operations with no expiry;
// the store acts as a permanent dedupe ledger per request id.
package statusstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/batch-email-service/internal/models"
)

// KeySeparator joins the request id and recipient address into a store key.
const KeySeparator = "::"

// ErrUnavailable wraps connectivity failures against the backing store. The
// worker treats it like any other processing failure and follows the standard
// retry path.
var ErrUnavailable = errors.New("status store unavailable")

// Key builds the store key for a request/recipient pair.
func Key(requestID, recipient string) string {
	return requestID + KeySeparator + recipient
}

// Store is the contract the worker depends on. Implementations must be safe
// for concurrent use by multiple worker goroutines; no compare-and-swap is
// offered and none is expected.
type Store interface {
	// Get returns the recorded status for the pair and whether a record
	// exists at all.
	Get(ctx context.Context, requestID, recipient string) (models.Status, bool, error)
	// Set writes the status for the pair, overwriting any prior record.
	Set(ctx context.Context, requestID, recipient string, status models.Status) error
}

func wrapUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
