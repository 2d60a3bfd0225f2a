package models_test

import (
	"testing"

	"github.com/example/batch-email-service/internal/models"
)

func TestDecodeBatchEmailRequest(t *testing.T) {
	payload := []byte(`{
		"request_id": "88e227b5-18f5-4c6b-9578-8e25adf8598e",
		"recipients": ["test@example.com"],
		"subject": "Test Subject",
		"body": "Hello {first_name}, your email is {email}",
		"personalization_data": {
			"test@example.com": {"first_name": "John", "email": "test@example.com"}
		}
	}`)

	req, err := models.DecodeBatchEmailRequest(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.RequestID != "88e227b5-18f5-4c6b-9578-8e25adf8598e" {
		t.Fatalf("unexpected request id: %s", req.RequestID)
	}
	if len(req.Recipients) != 1 || req.Recipients[0] != "test@example.com" {
		t.Fatalf("unexpected recipients: %v", req.Recipients)
	}
	if req.PersonalizationData["test@example.com"]["first_name"] != "John" {
		t.Fatalf("unexpected personalization data: %v", req.PersonalizationData)
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	if _, err := models.DecodeBatchEmailRequest(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := models.DecodeBatchEmailRequest([]byte(`{"request_id":`)); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	payload := []byte(`{
		"request_id": "88e227b5-18f5-4c6b-9578-8e25adf8598e",
		"recipients": ["a@x.com"],
		"subject": "s",
		"body": "b",
		"personalization_data": {},
		"priority": "high"
	}`)
	req, err := models.DecodeBatchEmailRequest(payload)
	if err != nil {
		t.Fatalf("extra fields from the ingress must not fail decoding: %v", err)
	}
	if len(req.Recipients) != 1 || req.Recipients[0] != "a@x.com" {
		t.Fatalf("unexpected recipients: %v", req.Recipients)
	}
}

func TestDecodeRejectsInvalidRequestID(t *testing.T) {
	payload := []byte(`{
		"request_id": "not-a-uuid",
		"recipients": ["a@x.com"],
		"subject": "s",
		"body": "b",
		"personalization_data": {}
	}`)
	if _, err := models.DecodeBatchEmailRequest(payload); err == nil {
		t.Fatal("expected error for invalid request id")
	}
}

func TestDecodeAllowsEmptyRecipients(t *testing.T) {
	payload := []byte(`{
		"request_id": "88e227b5-18f5-4c6b-9578-8e25adf8598e",
		"recipients": [],
		"subject": "s",
		"body": "b",
		"personalization_data": {}
	}`)
	req, err := models.DecodeBatchEmailRequest(payload)
	if err != nil {
		t.Fatalf("an empty batch is valid and completes trivially: %v", err)
	}
	if len(req.Recipients) != 0 {
		t.Fatalf("unexpected recipients: %v", req.Recipients)
	}
}

func TestParseStatus(t *testing.T) {
	if models.ParseStatus("success") != models.StatusSuccess {
		t.Fatal("expected success")
	}
	if models.ParseStatus("failed") != models.StatusFailed {
		t.Fatal("expected failed")
	}
	if models.ParseStatus("weird") == models.StatusSuccess {
		t.Fatal("unknown values must never read as success")
	}
}
