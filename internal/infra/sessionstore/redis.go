package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one session's snapshot and payment markers under a shared key prefix.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s:snapshot", sessionID)
}

func referenceKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s:reference", sessionID)
}

func inProgressKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s:in_progress", sessionID)
}

func referenceIndexKey(reference string) string {
	return fmt.Sprintf("checkout:ref:%s", reference)
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*shared.Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, infra.WrapRepoErr("checkout snapshot not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load checkout snapshot", err, infra.KindCacheFailure)
	}

	var snap shared.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, infra.WrapRepoErr("checkout snapshot is unreadable", err, infra.KindCorrupted)
	}
	return &snap, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, snap *shared.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return infra.WrapRepoErr("failed to encode checkout snapshot", err, infra.KindCorrupted)
	}
	if err := s.client.Set(ctx, snapshotKey(sessionID), data, s.ttl).Err(); err != nil {
		return infra.WrapRepoErr("failed to save checkout snapshot", err, infra.KindCacheFailure)
	}
	return nil
}

// Flush is a no-op: every Save is already durable.
func (s *RedisStore) Flush(context.Context, string) error {
	return nil
}

func (s *RedisStore) AcquireInProgress(ctx context.Context, sessionID string, attemptID uuid.UUID) (bool, error) {
	ok, err := s.client.SetNX(ctx, inProgressKey(sessionID), attemptID.String(), s.ttl).Result()
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark submission in progress", err, infra.KindCacheFailure)
	}
	return ok, nil
}

func (s *RedisStore) ReleaseInProgress(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, inProgressKey(sessionID)).Err(); err != nil {
		return infra.WrapRepoErr("failed to clear in-progress marker", err, infra.KindCacheFailure)
	}
	return nil
}

func (s *RedisStore) SetReference(ctx context.Context, sessionID, reference string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, referenceKey(sessionID), reference, s.ttl)
		pipe.Set(ctx, referenceIndexKey(reference), sessionID, s.ttl)
		return nil
	})
	if err != nil {
		return infra.WrapRepoErr("failed to store payment reference", err, infra.KindCacheFailure)
	}
	return nil
}

func (s *RedisStore) SessionByReference(ctx context.Context, reference string) (string, error) {
	sessionID, err := s.client.Get(ctx, referenceIndexKey(reference)).Result()
	if errors.Is(err, redis.Nil) {
		return "", infra.WrapRepoErr("no session for payment reference", err, infra.KindNotFound)
	}
	if err != nil {
		return "", infra.WrapRepoErr("failed to look up payment reference", err, infra.KindCacheFailure)
	}
	return sessionID, nil
}

// Reset removes the snapshot, the markers and the reference index in one MULTI/EXEC.
func (s *RedisStore) Reset(ctx context.Context, sessionID string) error {
	reference, err := s.client.Get(ctx, referenceKey(sessionID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return infra.WrapRepoErr("failed to read payment reference", err, infra.KindCacheFailure)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		keys := []string{snapshotKey(sessionID), referenceKey(sessionID), inProgressKey(sessionID)}
		if reference != "" {
			keys = append(keys, referenceIndexKey(reference))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return infra.WrapRepoErr("failed to reset checkout session", err, infra.KindCacheFailure)
	}
	return nil
}
