package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// BatchEmailRequest is the queue message produced by the ingress service. One
// request correlates a request identifier with an ordered list of recipients,
// a shared subject, a body template and the per-recipient substitution data.
// Recipients are not deduplicated and are processed in the order given.
type BatchEmailRequest struct {
	RequestID           string                       `json:"request_id"`
	Recipients          []string                     `json:"recipients"`
	Subject             string                       `json:"subject"`
	Body                string                       `json:"body"`
	PersonalizationData map[string]map[string]string `json:"personalization_data"`
}

// DecodeBatchEmailRequest parses a queue payload into a BatchEmailRequest.
// A failure here is a defect in the producer, not a transient condition, so
// callers must treat a non-nil error as permanent and never retry it. Fields
// this worker does not know about are ignored so the ingress can evolve
// without stranding in-flight batches, and an empty recipient list is a
// valid batch that completes trivially.
func DecodeBatchEmailRequest(payload []byte) (*BatchEmailRequest, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("models: empty batch email payload")
	}

	var req BatchEmailRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("models: decode batch email request: %w", err)
	}

	if _, err := uuid.Parse(req.RequestID); err != nil {
		return nil, fmt.Errorf("models: request_id is not a valid uuid: %w", err)
	}

	return &req, nil
}
