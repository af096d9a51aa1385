// internal/planner/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"itinerary-workers/internal/models"
)

const planKeyPrefix = "plan:"

// RedisStore keeps recent plans under plan:<id> with a TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Save(ctx context.Context, rec models.PlanRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := s.client.Set(ctx, planKeyPrefix+rec.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.PlanRecord, error) {
	var rec models.PlanRecord
	val, err := s.client.Get(ctx, planKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return rec, fmt.Errorf("unmarshal plan: %w", err)
	}
	return rec, nil
}
