package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/mocks"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/service"
	"github.com/lambdaless-api/internal/validation"
	"github.com/rs/zerolog"
)

func benchConfig() *config.Config {
	return &config.Config{
		Comments: config.CommentsConfig{DefaultPageSize: 30, MaxPageSize: 100},
		Webhook:  config.WebhookConfig{MaxRecordBytes: models.DefaultMaxRecordBytes},
	}
}

func webhookBatch(n int) []byte {
	events := make([]string, n)
	for i := range events {
		events[i] = fmt.Sprintf(
			`{"email":"user%06d@test.com","timestamp":%d,"smtp-id":"<%d@ismtpd>","event":"delivered","category":"newsletter","sg_event_id":"ev-%d","sg_message_id":"msg-%d"}`,
			i, 1700000000+i, i, i, i)
	}
	return []byte("[" + strings.Join(events, ",") + "]")
}

// BenchmarkListComments pages through a 1000 comment thread
func BenchmarkListComments(b *testing.B) {
	repos, comments, _, _ := mocks.NewMockRepositories()
	for i := 0; i < 1000; i++ {
		comments.Put(context.Background(), &models.Comment{
			ID:        fmt.Sprintf("comment-%06d", i),
			ParentID:  "thread-1",
			Name:      "user",
			Content:   "benchmark comment",
			CreatedAt: int64(1_700_000_000_000 + i),
		})
	}
	svc := service.NewServices(repos, benchConfig(), zerolog.Nop()).Comment
	count := 100

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var after *int64
		for {
			page, err := svc.List(context.Background(), &models.ListCommentsQuery{
				ParentID: "thread-1",
				Count:    &count,
				After:    after,
			})
			if err != nil {
				b.Fatal(err)
			}
			if page.Paging.After == "" {
				break
			}
			last := page.Data[len(page.Data)-1].CreatedAt
			after = &last
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkTransformBatch benchmarks webhook batch encoding
func BenchmarkTransformBatch(b *testing.B) {
	repos, _, _, _ := mocks.NewMockRepositories()
	svc := service.NewServices(repos, benchConfig(), zerolog.Nop()).Webhook
	batch := webhookBatch(500)

	b.ResetTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(batch)))

	for i := 0; i < b.N; i++ {
		if _, err := svc.TransformBatch(batch); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(500*b.N)/b.Elapsed().Seconds(), "events/sec")
}

// BenchmarkValidation benchmarks create-comment payload validation
func BenchmarkValidation(b *testing.B) {
	v := validation.NewValidator()
	body := []byte(`{"parent_id":"thread-1","name":"Ann","content":"` + strings.Repeat("x", 512) + `"}`)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var req models.CreateCommentRequest
		if err := v.DecodeObject(body, &req); err != nil {
			b.Fatal(err)
		}
	}
}
