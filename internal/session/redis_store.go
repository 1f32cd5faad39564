package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists each session as a JSON blob with a refresh-on-write TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A non-positive TTL defaults to
// 24 hours.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// GetOrCreate implements Store.
func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (*Session, bool, error) {
	if id != "" {
		data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
		switch {
		case err == nil:
			var sess Session
			if jsonErr := json.Unmarshal(data, &sess); jsonErr == nil && sess.ID != "" {
				sess.Touch(time.Now().UTC())
				return &sess, false, nil
			}
			// Corrupt blob: fall through and mint a fresh session.
		case err != redis.Nil:
			return nil, false, fmt.Errorf("session: failed to load %s: %w", id, err)
		}
	}

	sess := New(uuid.NewString())
	if err := s.Save(ctx, sess); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Peek implements Store.
func (s *RedisStore) Peek(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: failed to load %s: %w", id, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: corrupt blob for %s: %w", id, err)
	}
	return &sess, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	sess.Touch(time.Now().UTC())
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to marshal %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: failed to persist %s: %w", sess.ID, err)
	}
	return nil
}
