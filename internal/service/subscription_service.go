package service

import (
	"context"

	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/repository"
	"github.com/lambdaless-api/internal/validation"
	"github.com/rs/zerolog"
)

type subscriptionService struct {
	store     repository.SubscriptionStore
	validator *validation.Validator
	log       zerolog.Logger
}

func newSubscriptionService(store repository.SubscriptionStore, v *validation.Validator, log zerolog.Logger) *subscriptionService {
	return &subscriptionService{
		store:     store,
		validator: v,
		log:       log.With().Str("service", "subscription").Logger(),
	}
}

// Subscribe records the email once; repeats fail with ErrConflict
func (s *subscriptionService) Subscribe(ctx context.Context, req *models.SubscribeRequest, meta models.RequestMeta) (*models.Subscription, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		Email:     req.Email,
		CreatedAt: meta.EpochMillis(),
	}
	if err := s.store.Put(ctx, sub); err != nil {
		return nil, storeError("subscribe", err)
	}

	s.log.Info().Str("request_id", meta.RequestID).Msg("Subscription created")
	return sub, nil
}
