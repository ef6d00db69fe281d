package service

import (
	"context"

	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/repository"
	"github.com/lambdaless-api/internal/validation"
	"github.com/rs/zerolog"
)

// CommentService defines the comment write and read operations
type CommentService interface {
	Create(ctx context.Context, req *models.CreateCommentRequest, meta models.RequestMeta) (*models.Comment, error)
	Get(ctx context.Context, id string) (*models.Comment, error)
	List(ctx context.Context, q *models.ListCommentsQuery) (*models.CommentPage, error)
}

// WebhookService turns webhook batches into sink records
type WebhookService interface {
	TransformBatch(raw []byte) (*models.EncodedRecord, error)
	Deliver(ctx context.Context, raw []byte) (*models.DeliveryResult, error)
}

// SubscriptionService defines the email subscription write path
type SubscriptionService interface {
	Subscribe(ctx context.Context, req *models.SubscribeRequest, meta models.RequestMeta) (*models.Subscription, error)
}

// HealthService reports backend reachability
type HealthService interface {
	Check(ctx context.Context) *models.HealthReport
}

// Services holds all service interfaces
type Services struct {
	Comment      CommentService
	Webhook      WebhookService
	Subscription SubscriptionService
	Health       HealthService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	v := validation.NewValidator()

	return &Services{
		Comment:      newCommentService(repos.Comment, v, cfg.Comments, log),
		Webhook:      newWebhookService(repos.Sink, v, cfg.Webhook, log),
		Subscription: newSubscriptionService(repos.Subscription, v, log),
		Health:       newHealthService(repos, log),
	}
}
