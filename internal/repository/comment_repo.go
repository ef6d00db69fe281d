package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lambdaless-api/internal/database"
	"github.com/lambdaless-api/internal/models"
)

// commentRepo is the PostgreSQL implementation of CommentStore
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentStore {
	return &commentRepo{db: db}
}

// Put inserts a new comment unless the id is already taken
func (r *commentRepo) Put(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, parent_id, name, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ParentID, comment.Name, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return unavailable("insert comment", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return unavailable("insert comment", err)
	}
	if inserted == 0 {
		return ErrConditionFailed
	}
	return nil
}

// Get retrieves a comment by ID
func (r *commentRepo) Get(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT id, parent_id, name, content, created_at FROM comments WHERE id = $1`

	var comment models.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.ParentID, &comment.Name, &comment.Content, &comment.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get comment", err)
	}

	return &comment, nil
}

// Query scans one parent's comments in created_at order
func (r *commentRepo) Query(ctx context.Context, q models.RangeQuery) ([]*models.Comment, bool, error) {
	query, args := buildRangeQuery(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, unavailable("query comments", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0, q.Limit+1)
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID, &comment.ParentID, &comment.Name, &comment.Content, &comment.CreatedAt,
		); err != nil {
			return nil, false, unavailable("scan comment", err)
		}
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, false, unavailable("query comments", err)
	}

	page, hasMore := trimPage(comments, q.Limit)
	return page, hasMore, nil
}

// Ping checks the database connection
func (r *commentRepo) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// buildRangeQuery renders the key condition for a range scan. One extra row
// is requested so the caller can tell whether another page exists.
func buildRangeQuery(q models.RangeQuery) (string, []interface{}) {
	order, cmp := "ASC", ">"
	if q.Direction == models.Descending {
		order, cmp = "DESC", "<"
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, parent_id, name, content, created_at FROM comments WHERE parent_id = $1")
	args := []interface{}{q.ParentID}

	if q.After != nil {
		args = append(args, *q.After)
		fmt.Fprintf(&sb, " AND created_at %s $%d", cmp, len(args))
	}

	args = append(args, q.Limit+1)
	fmt.Fprintf(&sb, " ORDER BY created_at %s, id %s LIMIT $%d", order, order, len(args))

	return sb.String(), args
}
