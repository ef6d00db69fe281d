package mocks

import (
	"context"

	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/service"
)

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	CreateFunc func(ctx context.Context, req *models.CreateCommentRequest, meta models.RequestMeta) (*models.Comment, error)
	GetFunc    func(ctx context.Context, id string) (*models.Comment, error)
	ListFunc   func(ctx context.Context, q *models.ListCommentsQuery) (*models.CommentPage, error)
	Created    []*models.Comment
}

// Verify interface compliance
var _ service.CommentService = (*MockCommentService)(nil)

func (m *MockCommentService) Create(ctx context.Context, req *models.CreateCommentRequest, meta models.RequestMeta) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req, meta)
	}
	c := &models.Comment{
		ID:        meta.RequestID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Content:   req.Content,
		CreatedAt: meta.EpochMillis(),
	}
	m.Created = append(m.Created, c)
	return c, nil
}

func (m *MockCommentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCommentService) List(ctx context.Context, q *models.ListCommentsQuery) (*models.CommentPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return &models.CommentPage{Data: []*models.Comment{}}, nil
}

// MockWebhookService is a mock implementation of WebhookService
type MockWebhookService struct {
	TransformFunc func(raw []byte) (*models.EncodedRecord, error)
	DeliverFunc   func(ctx context.Context, raw []byte) (*models.DeliveryResult, error)
}

var _ service.WebhookService = (*MockWebhookService)(nil)

func (m *MockWebhookService) TransformBatch(raw []byte) (*models.EncodedRecord, error) {
	if m.TransformFunc != nil {
		return m.TransformFunc(raw)
	}
	return &models.EncodedRecord{}, nil
}

func (m *MockWebhookService) Deliver(ctx context.Context, raw []byte) (*models.DeliveryResult, error) {
	if m.DeliverFunc != nil {
		return m.DeliverFunc(ctx, raw)
	}
	return &models.DeliveryResult{RecordID: "test-record"}, nil
}

// MockSubscriptionService is a mock implementation of SubscriptionService
type MockSubscriptionService struct {
	SubscribeFunc func(ctx context.Context, req *models.SubscribeRequest, meta models.RequestMeta) (*models.Subscription, error)
}

var _ service.SubscriptionService = (*MockSubscriptionService)(nil)

func (m *MockSubscriptionService) Subscribe(ctx context.Context, req *models.SubscribeRequest, meta models.RequestMeta) (*models.Subscription, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, req, meta)
	}
	return &models.Subscription{Email: req.Email, CreatedAt: meta.EpochMillis()}, nil
}

// MockHealthService is a mock implementation of HealthService
type MockHealthService struct {
	Report *models.HealthReport
}

var _ service.HealthService = (*MockHealthService)(nil)

func (m *MockHealthService) Check(ctx context.Context) *models.HealthReport {
	if m.Report != nil {
		return m.Report
	}
	return &models.HealthReport{Status: models.HealthOK, Components: map[string]string{}}
}
