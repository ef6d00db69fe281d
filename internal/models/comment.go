package models

import (
	"strconv"
	"time"
)

// Comment represents a comment attached to a thread or resource
type Comment struct {
	ID        string `json:"id" db:"id"`
	ParentID  string `json:"parent_id" db:"parent_id"`
	Name      string `json:"name" db:"name"`
	Content   string `json:"content" db:"content"`
	CreatedAt int64  `json:"created_at" db:"created_at"` // epoch milliseconds
}

// CreateCommentRequest is the body of POST /comments
type CreateCommentRequest struct {
	ParentID string `json:"parent_id" validate:"required,min=1,max=256"`
	Name     string `json:"name" validate:"required,min=1,max=64"`
	Content  string `json:"content" validate:"required,min=1,max=2048"`
}

// Sort orders accepted by the list endpoint
const (
	SortOldest = "oldest"
	SortLatest = "latest"
)

// DefaultPageSize is used when the count parameter is omitted
const DefaultPageSize = 30

// ListCommentsQuery holds the parsed query parameters of GET /comments
type ListCommentsQuery struct {
	ParentID string `json:"parent_id" validate:"required,min=1,max=256"`
	SortBy   string `json:"sort_by" validate:"oneof=oldest latest"`
	Count    *int   `json:"count" validate:"omitempty,min=1"`
	After    *int64 `json:"after" validate:"omitempty,min=0"`
}

// Direction is the scan direction over the secondary index
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// RangeQuery is a limited range scan over the (parent_id, created_at) index.
// After, when set, is an exclusive bound in the scan direction.
type RangeQuery struct {
	ParentID  string
	Direction Direction
	After     *int64
	Limit     int
}

// CommentPage is the paginated response of GET /comments
type CommentPage struct {
	Data   []*Comment `json:"data"`
	Paging Paging     `json:"paging"`
}

// Paging carries the cursor for the next page, if any
type Paging struct {
	After string `json:"after,omitempty"`
}

// EncodeCursor renders a created_at value as a pagination cursor
func EncodeCursor(createdAt int64) string {
	return strconv.FormatInt(createdAt, 10)
}

// RequestMeta is assigned by the front door for every inbound request
type RequestMeta struct {
	RequestID  string
	ReceivedAt time.Time
}

// EpochMillis returns the request arrival time in epoch milliseconds
func (m RequestMeta) EpochMillis() int64 {
	return m.ReceivedAt.UnixMilli()
}
