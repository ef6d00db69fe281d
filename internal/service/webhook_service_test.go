package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/mocks"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventA = `{"email":"a@example.com","timestamp":1513299569,"smtp-id":"<14c5d75ce93.dfd.64b469@ismtpd-555>","event":"processed","category":"cat facts","sg_event_id":"sg_event_id_a","sg_message_id":"sg_message_id_a"}`
	eventB = `{"email":"b@example.com","timestamp":1513299570,"smtp-id":"<14c5d75ce93.dfd.64b470@ismtpd-555>","event":"delivered","sg_event_id":"sg_event_id_b","sg_message_id":"sg_message_id_b","response":"250 OK"}`
)

func decodeLines(t *testing.T, record *models.EncodedRecord) []string {
	t.Helper()
	payload, err := base64.StdEncoding.DecodeString(record.Data)
	require.NoError(t, err)
	assert.Equal(t, len(payload), record.SizeBytes)
	require.True(t, strings.HasSuffix(string(payload), "\n"), "every line is newline terminated")
	return strings.Split(strings.TrimSuffix(string(payload), "\n"), "\n")
}

func TestWebhookService_TransformBatch(t *testing.T) {
	h := newTestHarness(t)

	record, err := h.services.Webhook.TransformBatch([]byte("[" + eventA + "," + eventB + "]"))
	require.NoError(t, err)
	assert.Equal(t, 2, record.EventCount)
	assert.Equal(t, []string{eventA, eventB}, decodeLines(t, record))
}

func TestWebhookService_TransformCompactsWhitespace(t *testing.T) {
	h := newTestHarness(t)
	pretty := `[
  {
    "email": "a@example.com",
    "timestamp": 1,
    "smtp-id": "x",
    "event": "open",
    "sg_event_id": "e",
    "sg_message_id": "m",
    "nested": {"a": [1, 2, 3]}
  }
]`

	record, err := h.services.Webhook.TransformBatch([]byte(pretty))
	require.NoError(t, err)
	assert.Equal(t,
		[]string{`{"email":"a@example.com","timestamp":1,"smtp-id":"x","event":"open","sg_event_id":"e","sg_message_id":"m","nested":{"a":[1,2,3]}}`},
		decodeLines(t, record))
}

func TestWebhookService_TransformPreservesOrder(t *testing.T) {
	h := newTestHarness(t)

	var events []string
	for i := 0; i < 50; i++ {
		events = append(events, fmt.Sprintf(
			`{"email":"u%d@example.com","timestamp":%d,"smtp-id":"s%d","event":"open","sg_event_id":"e%d","sg_message_id":"m%d"}`,
			i, 1000+i, i, i, i))
	}

	record, err := h.services.Webhook.TransformBatch([]byte("[" + strings.Join(events, ",") + "]"))
	require.NoError(t, err)
	assert.Equal(t, events, decodeLines(t, record))
}

func TestWebhookService_TransformRejectsBatch(t *testing.T) {
	h := newTestHarness(t)

	tests := []struct {
		name           string
		body           string
		wantIndex      *int
		wantField      string
		wantConstraint string
	}{
		{
			name:           "empty array",
			body:           `[]`,
			wantField:      "$",
			wantConstraint: "min_items",
		},
		{
			name:           "not an array",
			body:           eventA,
			wantField:      "$",
			wantConstraint: "type",
		},
		{
			name:           "second element missing event",
			body:           `[` + eventA + `,{"email":"b@example.com","timestamp":1,"smtp-id":"x","sg_event_id":"e","sg_message_id":"m"}]`,
			wantIndex:      intPtr(1),
			wantField:      "event",
			wantConstraint: "required",
		},
		{
			name:           "string timestamp",
			body:           `[{"email":"b@example.com","timestamp":"1","smtp-id":"x","event":"open","sg_event_id":"e","sg_message_id":"m"}]`,
			wantIndex:      intPtr(0),
			wantField:      "timestamp",
			wantConstraint: "type",
		},
		{
			name:           "bad email",
			body:           `[{"email":"nope","timestamp":1,"smtp-id":"x","event":"open","sg_event_id":"e","sg_message_id":"m"}]`,
			wantIndex:      intPtr(0),
			wantField:      "email",
			wantConstraint: "email",
		},
		{
			name:           "upper-case keys",
			body:           `[{"EMAIL":"a@example.com","TIMESTAMP":1,"SMTP-ID":"x","EVENT":"open","SG_EVENT_ID":"e","SG_MESSAGE_ID":"m"}]`,
			wantIndex:      intPtr(0),
			wantField:      "email",
			wantConstraint: "required",
		},
		{
			name:           "duplicate email key",
			body:           `[` + eventB + `,{"email":"not-an-email","email":"a@example.com","timestamp":1,"smtp-id":"x","event":"open","sg_event_id":"e","sg_message_id":"m"}]`,
			wantIndex:      intPtr(1),
			wantField:      "email",
			wantConstraint: "duplicate_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.services.Webhook.TransformBatch([]byte(tt.body))
			require.ErrorIs(t, err, models.ErrValidationFailed)

			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantConstraint, ve.Constraint)
			assert.Equal(t, tt.wantIndex, ve.Index)
		})
	}
}

func TestWebhookService_RecordSizeLimit(t *testing.T) {
	repos, _, _, sink := mocks.NewMockRepositories()
	cfg := &config.Config{
		Comments: config.CommentsConfig{DefaultPageSize: 30, MaxPageSize: 100},
		Webhook:  config.WebhookConfig{MaxRecordBytes: len(eventA) + 1},
	}
	svcs := service.NewServices(repos, cfg, zerolog.Nop())

	_, err := svcs.Webhook.TransformBatch([]byte("[" + eventA + "]"))
	require.NoError(t, err, "a record exactly at the limit is accepted")

	_, err = svcs.Webhook.Deliver(context.Background(), []byte("["+eventA+","+eventA+"]"))
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "max_record_size", ve.Constraint)
	assert.Zero(t, sink.PutCalls)
}

func TestWebhookService_Deliver(t *testing.T) {
	h := newTestHarness(t)

	result, err := h.services.Webhook.Deliver(context.Background(), []byte("["+eventA+","+eventB+"]"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.RecordID)
	assert.Equal(t, 2, result.EventCount)

	require.Len(t, h.sink.Records, 1, "one sink call per batch")
	payload, err := base64.StdEncoding.DecodeString(string(h.sink.Records[0]))
	require.NoError(t, err)
	assert.Equal(t, eventA+"\n"+eventB+"\n", string(payload))
	assert.Equal(t, len(payload), result.SizeBytes)
}

func TestWebhookService_DeliverInvalidSkipsSink(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.services.Webhook.Deliver(context.Background(), []byte(`[`+eventA+`,{"email":"x@example.com"}]`))
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	assert.Zero(t, h.sink.PutCalls)
}

func TestWebhookService_DeliverRejectsCaseFoldedKeys(t *testing.T) {
	h := newTestHarness(t)
	upper := `{"EMAIL":"a@example.com","TIMESTAMP":1,"SMTP-ID":"x","EVENT":"open","SG_EVENT_ID":"e","SG_MESSAGE_ID":"m"}`

	_, err := h.services.Webhook.Deliver(context.Background(), []byte("["+eventA+","+upper+"]"))
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	assert.Zero(t, h.sink.PutCalls)
	assert.Empty(t, h.sink.Records)
}

func TestWebhookService_DeliverSinkUnavailable(t *testing.T) {
	h := newTestHarness(t)
	h.sink.PutError = errors.New("stream unavailable")

	_, err := h.services.Webhook.Deliver(context.Background(), []byte("["+eventA+"]"))
	assert.ErrorIs(t, err, models.ErrSinkUnavailable)
	assert.NotErrorIs(t, err, models.ErrValidationFailed)
	assert.Equal(t, 1, h.sink.PutCalls, "no retry")
}
