package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/mocks"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/service"
	"github.com/rs/zerolog"
)

type testHarness struct {
	services *service.Services
	comments *mocks.MockCommentStore
	subs     *mocks.MockSubscriptionStore
	sink     *mocks.MockEventSink
	clock    time.Time
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	repos, comments, subs, sink := mocks.NewMockRepositories()
	cfg := &config.Config{
		Comments: config.CommentsConfig{
			DefaultPageSize: models.DefaultPageSize,
			MaxPageSize:     100,
		},
		Webhook: config.WebhookConfig{
			MaxRecordBytes: models.DefaultMaxRecordBytes,
		},
	}

	return &testHarness{
		services: service.NewServices(repos, cfg, zerolog.Nop()),
		comments: comments,
		subs:     subs,
		sink:     sink,
		clock:    time.UnixMilli(1_700_000_000_000),
	}
}

// nextMeta plays the front door: a fresh request id and a strictly
// increasing arrival time
func (h *testHarness) nextMeta() models.RequestMeta {
	h.clock = h.clock.Add(time.Millisecond)
	return models.RequestMeta{RequestID: uuid.New().String(), ReceivedAt: h.clock}
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }
