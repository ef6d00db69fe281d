package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/database"
	"github.com/lambdaless-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// Store-level outcomes. Services translate them into models error kinds.
var (
	// ErrConditionFailed is returned when a conditional insert finds an
	// existing record under the same key
	ErrConditionFailed = errors.New("condition failed")

	// ErrUnavailable wraps any backend failure
	ErrUnavailable = errors.New("backend unavailable")
)

// CommentStore is a key-value store of comments with a secondary index on
// (parent_id, created_at)
type CommentStore interface {
	// Put inserts the comment only if no record with the same id exists
	Put(ctx context.Context, comment *models.Comment) error
	// Get returns nil, nil when the id is unknown
	Get(ctx context.Context, id string) (*models.Comment, error)
	// Query runs a limited range scan over the secondary index and reports
	// whether more matching entries remain beyond the returned ones
	Query(ctx context.Context, q models.RangeQuery) ([]*models.Comment, bool, error)
	Ping(ctx context.Context) error
}

// SubscriptionStore is a single-key store of email subscriptions
type SubscriptionStore interface {
	// Put inserts the subscription only if the email is not yet subscribed
	Put(ctx context.Context, sub *models.Subscription) error
}

// EventSink is an append-only streaming destination. data is the base64
// text of one record; the sink assumes no other structure.
type EventSink interface {
	PutRecord(ctx context.Context, data []byte) (string, error)
}

// Pinger is implemented by backends that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Comment      CommentStore
	Subscription SubscriptionStore
	Sink         EventSink
}

// New builds the repositories for the configured backends. db is required
// for the postgres store, rdb for the redis store and the redis sink.
func New(cfg *config.Config, db *database.DB, rdb *redis.Client) (*Repositories, error) {
	repos := &Repositories{}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres store requires a database connection")
		}
		repos.Comment = NewCommentRepo(db)
		repos.Subscription = NewSubscriptionRepo(db)
	case config.BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis store requires a redis client")
		}
		repos.Comment = NewRedisCommentStore(rdb, cfg.Redis.KeyPrefix)
		repos.Subscription = NewRedisSubscriptionStore(rdb, cfg.Redis.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}

	switch cfg.Sink.Backend {
	case config.BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis sink requires a redis client")
		}
		repos.Sink = NewRedisStreamSink(rdb, cfg.Redis.Stream, cfg.Redis.StreamMaxLen)
	case config.BackendFile:
		sink, err := NewFileSink(cfg.Sink.FileDir, cfg.Sink.FilePrefix)
		if err != nil {
			return nil, err
		}
		repos.Sink = sink
	default:
		return nil, fmt.Errorf("unknown sink backend: %s", cfg.Sink.Backend)
	}

	return repos, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// trimPage cuts a limit+1 result down to limit and reports whether the
// extra row was present
func trimPage(items []*models.Comment, limit int) ([]*models.Comment, bool) {
	if len(items) > limit {
		return items[:limit], true
	}
	return items, false
}
