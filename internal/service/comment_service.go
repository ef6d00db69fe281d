package service

import (
	"context"
	"fmt"

	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/repository"
	"github.com/lambdaless-api/internal/validation"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	store     repository.CommentStore
	validator *validation.Validator
	cfg       config.CommentsConfig
	log       zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(store repository.CommentStore, v *validation.Validator, cfg config.CommentsConfig, log zerolog.Logger) *commentService {
	return &commentService{
		store:     store,
		validator: v,
		cfg:       cfg,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// Create stores a new comment under the request id. A second request
// carrying the same id fails with ErrConflict and leaves the first intact.
func (s *commentService) Create(ctx context.Context, req *models.CreateCommentRequest, meta models.RequestMeta) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        meta.RequestID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Content:   req.Content,
		CreatedAt: meta.EpochMillis(),
	}

	if err := s.store.Put(ctx, comment); err != nil {
		s.log.Warn().Err(err).Str("comment_id", comment.ID).Msg("Comment insert rejected")
		return nil, storeError("create comment", err)
	}

	s.log.Debug().
		Str("comment_id", comment.ID).
		Str("parent_id", comment.ParentID).
		Int64("created_at", comment.CreatedAt).
		Msg("Comment created")

	return comment, nil
}

// Get returns a single comment by id
func (s *commentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("get comment", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", id, models.ErrNotFound)
	}
	return comment, nil
}

// List returns one page of a parent's comments in the requested order
func (s *commentService) List(ctx context.Context, q *models.ListCommentsQuery) (*models.CommentPage, error) {
	query := *q
	if query.SortBy == "" {
		query.SortBy = models.SortOldest
	}
	if err := s.validator.Struct(&query); err != nil {
		return nil, err
	}

	limit := s.cfg.DefaultPageSize
	if query.Count != nil {
		limit = *query.Count
	}
	if err := validation.Max("count", limit, s.cfg.MaxPageSize); err != nil {
		return nil, err
	}

	direction := models.Ascending
	if query.SortBy == models.SortLatest {
		direction = models.Descending
	}

	items, hasMore, err := s.store.Query(ctx, models.RangeQuery{
		ParentID:  query.ParentID,
		Direction: direction,
		After:     query.After,
		Limit:     limit,
	})
	if err != nil {
		return nil, storeError("list comments", err)
	}
	if len(items) > limit {
		items, hasMore = items[:limit], true
	}
	if items == nil {
		items = []*models.Comment{}
	}

	page := &models.CommentPage{Data: items}
	if hasMore && len(items) > 0 {
		page.Paging.After = models.EncodeCursor(items[len(items)-1].CreatedAt)
	}

	s.log.Debug().
		Str("parent_id", query.ParentID).
		Str("direction", direction.String()).
		Int("count", len(items)).
		Bool("has_more", hasMore).
		Msg("Comments listed")

	return page, nil
}
