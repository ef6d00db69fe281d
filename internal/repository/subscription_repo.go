package repository

import (
	"context"

	"github.com/lambdaless-api/internal/database"
	"github.com/lambdaless-api/internal/models"
)

// subscriptionRepo is the PostgreSQL implementation of SubscriptionStore
type subscriptionRepo struct {
	db *database.DB
}

// NewSubscriptionRepo creates a new subscription repository
func NewSubscriptionRepo(db *database.DB) SubscriptionStore {
	return &subscriptionRepo{db: db}
}

// Put inserts a subscription unless the email is already present
func (r *subscriptionRepo) Put(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO email_subscriptions (email, created_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, sub.Email, sub.CreatedAt)
	if err != nil {
		return unavailable("insert subscription", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return unavailable("insert subscription", err)
	}
	if inserted == 0 {
		return ErrConditionFailed
	}
	return nil
}
