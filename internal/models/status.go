package models

// Status records the delivery outcome for a single recipient of a batch
// request. The serialized form is stored verbatim in the status store.
type Status string

const (
	// StatusSuccess marks a recipient whose personalized email was sent.
	StatusSuccess Status = "success"
	// StatusFailed marks a recipient belonging to a failed batch attempt.
	StatusFailed Status = "failed"
)

// ParseStatus maps raw status store bytes back onto a Status value. Unknown
// values are returned as-is so callers can decide how strict to be; only an
// exact StatusSuccess match may ever suppress a send.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusSuccess:
		return StatusSuccess
	case StatusFailed:
		return StatusFailed
	default:
		return Status(raw)
	}
}
