package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/repository"
	"github.com/lambdaless-api/internal/validation"
	"github.com/rs/zerolog"
)

// webhookService is the concrete implementation of WebhookService
type webhookService struct {
	sink           repository.EventSink
	validator      *validation.Validator
	maxRecordBytes int
	log            zerolog.Logger
}

// newWebhookService creates a new WebhookService
func newWebhookService(sink repository.EventSink, v *validation.Validator, cfg config.WebhookConfig, log zerolog.Logger) *webhookService {
	maxBytes := cfg.MaxRecordBytes
	if maxBytes <= 0 {
		maxBytes = models.DefaultMaxRecordBytes
	}
	return &webhookService{
		sink:           sink,
		validator:      v,
		maxRecordBytes: maxBytes,
		log:            log.With().Str("service", "webhook").Logger(),
	}
}

// TransformBatch validates every event of a JSON array and encodes the
// batch as one record: each event compacted onto its own line, every line
// terminated by a newline, the whole payload base64 encoded. Event order
// and each event's own key order are preserved.
func (s *webhookService) TransformBatch(raw []byte) (*models.EncodedRecord, error) {
	items, err := s.validator.DecodeArray(raw, func() interface{} { return &models.WebhookEvent{} })
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, item := range items {
		if err := json.Compact(&buf, item); err != nil {
			return nil, fmt.Errorf("compact event %d: %w", i, err)
		}
		buf.WriteByte('\n')
	}

	if buf.Len() > s.maxRecordBytes {
		return nil, &models.ValidationError{
			Field:      "$",
			Constraint: "max_record_size",
			Message:    fmt.Sprintf("batch of %d bytes exceeds the %d byte record limit", buf.Len(), s.maxRecordBytes),
			Value:      buf.Len(),
		}
	}

	return &models.EncodedRecord{
		Data:       base64.StdEncoding.EncodeToString(buf.Bytes()),
		EventCount: len(items),
		SizeBytes:  buf.Len(),
	}, nil
}

// Deliver transforms the batch and hands it to the sink in a single call
func (s *webhookService) Deliver(ctx context.Context, raw []byte) (*models.DeliveryResult, error) {
	record, err := s.TransformBatch(raw)
	if err != nil {
		return nil, err
	}

	recordID, err := s.sink.PutRecord(ctx, []byte(record.Data))
	if err != nil {
		s.log.Error().Err(err).Int("events", record.EventCount).Msg("Record delivery failed")
		return nil, sinkError("deliver record", err)
	}

	s.log.Info().
		Str("record_id", recordID).
		Int("events", record.EventCount).
		Int("bytes", record.SizeBytes).
		Msg("Webhook batch delivered")

	return &models.DeliveryResult{
		RecordID:   recordID,
		EventCount: record.EventCount,
		SizeBytes:  record.SizeBytes,
	}, nil
}
