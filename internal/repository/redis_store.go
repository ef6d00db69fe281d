package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/lambdaless-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// putCommentScript stores the item and its index entry atomically, and
// only when the item key is free.
// KEYS[1] item key, KEYS[2] parent index; ARGV[1] item, ARGV[2] score, ARGV[3] id
var putCommentScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
	return 1
end
return 0
`)

// redisCommentStore keeps each comment as a JSON string and indexes it in a
// per-parent sorted set scored by created_at
type redisCommentStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCommentStore creates a redis-backed comment store
func NewRedisCommentStore(rdb *redis.Client, prefix string) CommentStore {
	return &redisCommentStore{rdb: rdb, prefix: prefix}
}

func (s *redisCommentStore) itemKey(id string) string {
	return fmt.Sprintf("%s:comment:%s", s.prefix, id)
}

func (s *redisCommentStore) indexKey(parentID string) string {
	return fmt.Sprintf("%s:comments:parent:%s", s.prefix, parentID)
}

// Put inserts the comment if its id is unused
func (s *redisCommentStore) Put(ctx context.Context, comment *models.Comment) error {
	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("encode comment: %w", err)
	}

	keys := []string{s.itemKey(comment.ID), s.indexKey(comment.ParentID)}
	inserted, err := putCommentScript.Run(ctx, s.rdb, keys, data, comment.CreatedAt, comment.ID).Int()
	if err != nil {
		return unavailable("insert comment", err)
	}
	if inserted == 0 {
		return ErrConditionFailed
	}
	return nil
}

// Get retrieves a comment by ID
func (s *redisCommentStore) Get(ctx context.Context, id string) (*models.Comment, error) {
	data, err := s.rdb.Get(ctx, s.itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get comment", err)
	}

	var comment models.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return nil, fmt.Errorf("decode comment %s: %w", id, err)
	}
	return &comment, nil
}

// Query scans the parent's sorted set by score. Members sharing a score come
// back in lexicographic id order (reversed for descending scans).
func (s *redisCommentStore) Query(ctx context.Context, q models.RangeQuery) ([]*models.Comment, bool, error) {
	key := s.indexKey(q.ParentID)
	bound := func(open string) string {
		if q.After == nil {
			return open
		}
		return "(" + strconv.FormatInt(*q.After, 10)
	}

	var (
		ids []string
		err error
	)
	if q.Direction == models.Descending {
		ids, err = s.rdb.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   bound("+inf"),
			Count: int64(q.Limit + 1),
		}).Result()
	} else {
		ids, err = s.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
			Min:   bound("-inf"),
			Max:   "+inf",
			Count: int64(q.Limit + 1),
		}).Result()
	}
	if err != nil {
		return nil, false, unavailable("query comments", err)
	}
	if len(ids) == 0 {
		return []*models.Comment{}, false, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.itemKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, false, unavailable("load comments", err)
	}

	comments := make([]*models.Comment, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without an item; Put writes both atomically
			return nil, false, fmt.Errorf("comment %s is indexed but missing", ids[i])
		}
		var comment models.Comment
		if err := json.Unmarshal([]byte(raw), &comment); err != nil {
			return nil, false, fmt.Errorf("decode comment %s: %w", ids[i], err)
		}
		comments = append(comments, &comment)
	}

	page, hasMore := trimPage(comments, q.Limit)
	return page, hasMore, nil
}

// Ping checks the redis connection
func (s *redisCommentStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// redisSubscriptionStore keeps one key per subscribed email
type redisSubscriptionStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisSubscriptionStore creates a redis-backed subscription store
func NewRedisSubscriptionStore(rdb *redis.Client, prefix string) SubscriptionStore {
	return &redisSubscriptionStore{rdb: rdb, prefix: prefix}
}

// Put records the subscription if the email is new
func (s *redisSubscriptionStore) Put(ctx context.Context, sub *models.Subscription) error {
	key := fmt.Sprintf("%s:subscription:%s", s.prefix, sub.Email)
	ok, err := s.rdb.SetNX(ctx, key, sub.CreatedAt, 0).Result()
	if err != nil {
		return unavailable("insert subscription", err)
	}
	if !ok {
		return ErrConditionFailed
	}
	return nil
}
