package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/repository"
)

// MockCommentStore is an in-memory CommentStore with the same conditional
// insert and range scan semantics as the real backends
type MockCommentStore struct {
	mu         sync.Mutex
	Comments   map[string]*models.Comment
	PutError   error
	GetError   error
	QueryError error
	PingError  error
	QueryFunc  func(ctx context.Context, q models.RangeQuery) ([]*models.Comment, bool, error)
	Queries    []models.RangeQuery
}

var (
	_ repository.CommentStore = (*MockCommentStore)(nil)
	_ repository.Pinger       = (*MockCommentStore)(nil)
)

func NewMockCommentStore() *MockCommentStore {
	return &MockCommentStore{
		Comments: make(map[string]*models.Comment),
	}
}

func (m *MockCommentStore) Put(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutError != nil {
		return m.PutError
	}
	if _, exists := m.Comments[comment.ID]; exists {
		return repository.ErrConditionFailed
	}
	stored := *comment
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentStore) Get(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (m *MockCommentStore) Query(ctx context.Context, q models.RangeQuery) ([]*models.Comment, bool, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, q)
	}
	if m.QueryError != nil {
		return nil, false, m.QueryError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if c.ParentID != q.ParentID {
			continue
		}
		if q.After != nil {
			if q.Direction == models.Ascending && c.CreatedAt <= *q.After {
				continue
			}
			if q.Direction == models.Descending && c.CreatedAt >= *q.After {
				continue
			}
		}
		out := *c
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CreatedAt != b.CreatedAt {
			if q.Direction == models.Descending {
				return a.CreatedAt > b.CreatedAt
			}
			return a.CreatedAt < b.CreatedAt
		}
		if q.Direction == models.Descending {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	if len(matched) > q.Limit {
		return matched[:q.Limit], true, nil
	}
	return matched, false, nil
}

func (m *MockCommentStore) Ping(ctx context.Context) error {
	return m.PingError
}

// Count returns the number of stored comments
func (m *MockCommentStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments)
}

// MockSubscriptionStore is an in-memory SubscriptionStore
type MockSubscriptionStore struct {
	mu            sync.Mutex
	Subscriptions map[string]*models.Subscription
	PutError      error
}

var _ repository.SubscriptionStore = (*MockSubscriptionStore)(nil)

func NewMockSubscriptionStore() *MockSubscriptionStore {
	return &MockSubscriptionStore{
		Subscriptions: make(map[string]*models.Subscription),
	}
}

func (m *MockSubscriptionStore) Put(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutError != nil {
		return m.PutError
	}
	if _, exists := m.Subscriptions[sub.Email]; exists {
		return repository.ErrConditionFailed
	}
	stored := *sub
	m.Subscriptions[sub.Email] = &stored
	return nil
}

// MockEventSink records every PutRecord call
type MockEventSink struct {
	mu          sync.Mutex
	Records     [][]byte
	PutError    error
	PingError   error
	PutCalls    int
	PutRecordFn func(ctx context.Context, data []byte) (string, error)
}

var (
	_ repository.EventSink = (*MockEventSink)(nil)
	_ repository.Pinger    = (*MockEventSink)(nil)
)

func NewMockEventSink() *MockEventSink {
	return &MockEventSink{Records: make([][]byte, 0)}
}

func (m *MockEventSink) PutRecord(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutRecordFn != nil {
		return m.PutRecordFn(ctx, data)
	}
	if m.PutError != nil {
		return "", m.PutError
	}
	m.Records = append(m.Records, append([]byte(nil), data...))
	return uuid.New().String(), nil
}

func (m *MockEventSink) Ping(ctx context.Context) error {
	return m.PingError
}

// NewMockRepositories wires fresh in-memory mocks
func NewMockRepositories() (*repository.Repositories, *MockCommentStore, *MockSubscriptionStore, *MockEventSink) {
	comments := NewMockCommentStore()
	subs := NewMockSubscriptionStore()
	sink := NewMockEventSink()
	return &repository.Repositories{
		Comment:      comments,
		Subscription: subs,
		Sink:         sink,
	}, comments, subs, sink
}
