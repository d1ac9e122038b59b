package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "matchmaker:session:"

// RedisStore shares sessions across instances. Every Put refreshes the ttl.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*ConversationSession, bool, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %v", ErrSessionStoreFailed, err)
	}

	var s ConversationSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("%w: decode: %v", ErrCorruptSession, err)
	}
	return &s, true, nil
}

func (r *RedisStore) Put(ctx context.Context, userID string, s *ConversationSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSessionStoreFailed, err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrSessionStoreFailed, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrSessionStoreFailed, err)
	}
	return nil
}

// Count scans the key prefix for live sessions.
func (r *RedisStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("%w: scan: %v", ErrSessionStoreFailed, err)
	}
	return n, nil
}
