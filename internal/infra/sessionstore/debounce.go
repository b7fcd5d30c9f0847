package sessionstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/google/uuid"
)

type pendingWrite struct {
	snap  *shared.Snapshot
	timer *time.Timer
}

// DebouncedStore coalesces bursts of snapshot saves into one write per session.
// Reads observe the pending snapshot, so callers never see a stale one.
// Taking a pending write and applying it to Redis happen under the session's
// write lock, so a timer write can never land after a Flush or Reset.
type DebouncedStore struct {
	inner  *RedisStore
	delay  time.Duration
	writes *shared.SessionLocks

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

var _ shared.SessionStore = (*DebouncedStore)(nil)

func NewDebouncedStore(inner *RedisStore, delay time.Duration) *DebouncedStore {
	return &DebouncedStore{
		inner:   inner,
		delay:   delay,
		writes:  shared.NewSessionLocks(),
		pending: map[string]*pendingWrite{},
	}
}

func (s *DebouncedStore) Load(ctx context.Context, sessionID string) (*shared.Snapshot, error) {
	s.mu.Lock()
	if p, ok := s.pending[sessionID]; ok {
		snap := *p.snap
		s.mu.Unlock()
		return &snap, nil
	}
	s.mu.Unlock()
	return s.inner.Load(ctx, sessionID)
}

func (s *DebouncedStore) Save(ctx context.Context, sessionID string, snap *shared.Snapshot) error {
	if s.delay <= 0 {
		unlock := s.writes.Lock(sessionID)
		defer unlock()
		return s.inner.Save(ctx, sessionID, snap)
	}

	copied := *snap
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[sessionID]; ok {
		p.snap = &copied
		p.timer.Reset(s.delay)
		return nil
	}

	p := &pendingWrite{snap: &copied}
	p.timer = time.AfterFunc(s.delay, func() { s.fire(sessionID, p) })
	s.pending[sessionID] = p
	return nil
}

func (s *DebouncedStore) fire(sessionID string, p *pendingWrite) {
	unlock := s.writes.Lock(sessionID)
	defer unlock()

	s.mu.Lock()
	current, ok := s.pending[sessionID]
	if !ok || current != p {
		s.mu.Unlock()
		return
	}
	delete(s.pending, sessionID)
	snap := p.snap
	s.mu.Unlock()

	if err := s.inner.Save(context.Background(), sessionID, snap); err != nil {
		slog.Error("debounced snapshot write failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

// take removes and returns the pending write, stopping its timer.
func (s *DebouncedStore) take(sessionID string) *shared.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[sessionID]
	if !ok {
		return nil
	}
	p.timer.Stop()
	delete(s.pending, sessionID)
	return p.snap
}

func (s *DebouncedStore) Flush(ctx context.Context, sessionID string) error {
	unlock := s.writes.Lock(sessionID)
	defer unlock()

	snap := s.take(sessionID)
	if snap == nil {
		return nil
	}
	return s.inner.Save(ctx, sessionID, snap)
}

// FlushAll writes every pending snapshot. Called on shutdown.
func (s *DebouncedStore) FlushAll(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := s.Flush(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *DebouncedStore) Reset(ctx context.Context, sessionID string) error {
	unlock := s.writes.Lock(sessionID)
	defer unlock()

	s.take(sessionID)
	return s.inner.Reset(ctx, sessionID)
}

func (s *DebouncedStore) AcquireInProgress(ctx context.Context, sessionID string, attemptID uuid.UUID) (bool, error) {
	return s.inner.AcquireInProgress(ctx, sessionID, attemptID)
}

func (s *DebouncedStore) ReleaseInProgress(ctx context.Context, sessionID string) error {
	return s.inner.ReleaseInProgress(ctx, sessionID)
}

func (s *DebouncedStore) SetReference(ctx context.Context, sessionID, reference string) error {
	return s.inner.SetReference(ctx, sessionID, reference)
}

func (s *DebouncedStore) SessionByReference(ctx context.Context, reference string) (string, error) {
	return s.inner.SessionByReference(ctx, reference)
}
