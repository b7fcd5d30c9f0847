//go:build unit

package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/builder"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func newSnapshot(step checkout.Step) *shared.Snapshot {
	co := builder.NewCheckoutBuilder().WithStep(step).BuildCheckout()
	return &shared.Snapshot{
		Checkout:    *co,
		DeliveryFee: co.Draft.DeliveryFee(),
		SavedAt:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisStore_SaveLoad(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	snap := newSnapshot(checkout.StepProcessing)
	snap.LastAttempt = payment.NewAttempt(uuid.New(), snap.SavedAt)
	require.NoError(t, store.Save(ctx, "g:abc", snap))

	assert.True(t, mr.Exists("checkout:g:abc:snapshot"))
	assert.Equal(t, time.Hour, mr.TTL("checkout:g:abc:snapshot"))

	loaded, err := store.Load(ctx, "g:abc")
	require.NoError(t, err)
	assert.Equal(t, checkout.StepProcessing, loaded.Step())
	assert.Equal(t, int64(150000), loaded.DeliveryFee.Kobo())
	assert.Equal(t, snap.LastAttempt.AttemptID, loaded.LastAttempt.AttemptID)
	assert.Equal(t, payment.StatusInitializing, loaded.LastAttempt.Status)
	assert.Len(t, loaded.Checkout.Draft.Items, 2)
}

func TestRedisStore_LoadErrors(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "g:missing")
	assert.True(t, infra.IsKind(err, infra.KindNotFound))

	require.NoError(t, mr.Set("checkout:g:bad:snapshot", "{not json"))
	_, err = store.Load(ctx, "g:bad")
	assert.True(t, infra.IsKind(err, infra.KindCorrupted))
}

func TestRedisStore_InProgressMarker(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := store.AcquireInProgress(ctx, "u:1", uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquireInProgress(ctx, "u:1", uuid.New())
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must not succeed while the first holds the marker")

	require.NoError(t, store.ReleaseInProgress(ctx, "u:1"))
	ok, err = store.AcquireInProgress(ctx, "u:1", uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_ReferenceIndex(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SetReference(ctx, "g:abc", "ref_42"))

	sid, err := store.SessionByReference(ctx, "ref_42")
	require.NoError(t, err)
	assert.Equal(t, "g:abc", sid)

	_, err = store.SessionByReference(ctx, "ref_unknown")
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestRedisStore_ResetClearsEveryKey(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "g:abc", newSnapshot(checkout.StepProcessing)))
	require.NoError(t, store.SetReference(ctx, "g:abc", "ref_42"))
	_, err := store.AcquireInProgress(ctx, "g:abc", uuid.New())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "g:other", newSnapshot(checkout.StepContact)))

	require.NoError(t, store.Reset(ctx, "g:abc"))

	for _, key := range []string{
		"checkout:g:abc:snapshot",
		"checkout:g:abc:reference",
		"checkout:g:abc:in_progress",
		"checkout:ref:ref_42",
	} {
		assert.False(t, mr.Exists(key), key)
	}
	assert.True(t, mr.Exists("checkout:g:other:snapshot"))
}
