package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Items returns an empty cart when nothing is stored for the session.
func (s *RedisCartStore) Items(ctx context.Context, sessionID string) ([]checkout.LineItem, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []checkout.LineItem{}, nil
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart", err, infra.KindCacheFailure)
	}

	var items []checkout.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, infra.WrapRepoErr("cart is unreadable", err, infra.KindCorrupted)
	}
	return items, nil
}

func (s *RedisCartStore) Replace(ctx context.Context, sessionID string, items []checkout.LineItem) error {
	if len(items) == 0 {
		return s.Clear(ctx, sessionID)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return infra.WrapRepoErr("failed to encode cart", err, infra.KindCorrupted)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return infra.WrapRepoErr("failed to save cart", err, infra.KindCacheFailure)
	}
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return infra.WrapRepoErr("failed to clear cart", err, infra.KindCacheFailure)
	}
	return nil
}
