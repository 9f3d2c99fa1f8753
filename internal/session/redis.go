package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session's error log in a redis list whose TTL is
// refreshed on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func errorsKey(sessionID string) string {
	return "speechgrader:session:" + sessionID + ":errors"
}

func (s *RedisStore) Append(ctx context.Context, sessionID, entry string) error {
	key := errorsKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, entry)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append session error %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Entries(ctx context.Context, sessionID string) ([]string, error) {
	entries, err := s.client.LRange(ctx, errorsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read session errors %s: %w", sessionID, err)
	}
	return entries, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, errorsKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}
