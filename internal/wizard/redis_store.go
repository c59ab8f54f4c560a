package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix = "wiz:chat:" // Key for wizard state: wiz:chat:{chat_id}
	stateTTL       = 24 * time.Hour
)

// RedisStore keeps wizard state in redis with a TTL, so an abandoned wizard
// eventually disappears on its own.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a redis-backed wizard store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(chatID int64) string {
	return fmt.Sprintf("%s%d", stateKeyPrefix, chatID)
}

// Get returns the state for a chat, or nil when no wizard is active.
func (s *RedisStore) Get(ctx context.Context, chatID int64) (*State, error) {
	data, err := s.client.Get(ctx, s.key(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wizard state: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("unmarshal wizard state: %w", err)
	}
	return &st, nil
}

// Set replaces the state for a chat.
func (s *RedisStore) Set(ctx context.Context, chatID int64, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal wizard state: %w", err)
	}

	if err := s.client.Set(ctx, s.key(chatID), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("set wizard state: %w", err)
	}
	return nil
}

// Clear removes the state for a chat.
func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, s.key(chatID)).Err(); err != nil {
		return fmt.Errorf("clear wizard state: %w", err)
	}
	return nil
}
