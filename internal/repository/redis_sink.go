package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// redisStreamSink appends each record to a redis stream
type redisStreamSink struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamSink creates a sink writing to the given stream. When maxLen
// is positive the stream is trimmed approximately to that many entries.
func NewRedisStreamSink(rdb *redis.Client, stream string, maxLen int64) EventSink {
	return &redisStreamSink{rdb: rdb, stream: stream, maxLen: maxLen}
}

// PutRecord adds one stream entry with the record under the "data" field
func (s *redisStreamSink) PutRecord(ctx context.Context, data []byte) (string, error) {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"data": string(data)},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.rdb.XAdd(ctx, args).Result()
	if err != nil {
		return "", unavailable("put record", err)
	}
	return id, nil
}

// Ping checks the redis connection
func (s *redisStreamSink) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
