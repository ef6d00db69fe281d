package models

// WebhookEvent is the common subset of a SendGrid event webhook object.
// Pointer fields distinguish a missing key from an empty value.
// See https://docs.sendgrid.com/for-developers/tracking-events/event#event-objects
type WebhookEvent struct {
	Email       *string `json:"email" validate:"required,email"`
	Timestamp   *int64  `json:"timestamp" validate:"required"`
	SMTPID      *string `json:"smtp-id" validate:"required"`
	Event       *string `json:"event" validate:"required"`
	Category    *string `json:"category,omitempty"`
	SGEventID   *string `json:"sg_event_id" validate:"required"`
	SGMessageID *string `json:"sg_message_id" validate:"required"`
}

// EncodedRecord is one sink record carrying a whole webhook batch
type EncodedRecord struct {
	Data       string `json:"data"`        // base64 of newline-terminated compact JSON lines
	EventCount int    `json:"event_count"` // number of events in the batch
	SizeBytes  int    `json:"size_bytes"`  // decoded payload size
}

// DeliveryResult is returned after a record is accepted by the sink
type DeliveryResult struct {
	RecordID   string `json:"record_id"`
	EventCount int    `json:"event_count"`
	SizeBytes  int    `json:"size_bytes"`
}

// DefaultMaxRecordBytes is the Firehose per-record size limit
const DefaultMaxRecordBytes = 1_024_000
