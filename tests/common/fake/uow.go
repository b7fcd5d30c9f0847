//go:build unit || e2e

package fake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/google/uuid"
)

// UoW is an in-memory unit of work. Writes made inside Within are discarded when fn fails.
type UoW struct {
	mu sync.Mutex

	Zones        map[uuid.UUID]shared.ZoneSnapshot
	PickupPoints map[uuid.UUID]shared.PickupPointSnapshot
	Completions  map[string]shared.CompletionRecord
	Jobs         []*Job

	WithinErr error
}

type Job struct {
	shared.NotificationJob
	Status    string
	LastError string
	SentAt    time.Time
}

var _ shared.UnitOfWork = (*UoW)(nil)

func NewUoW() *UoW {
	return &UoW{
		Zones:        map[uuid.UUID]shared.ZoneSnapshot{},
		PickupPoints: map[uuid.UUID]shared.PickupPointSnapshot{},
		Completions:  map[string]shared.CompletionRecord{},
	}
}

func (u *UoW) AddZone(z shared.ZoneSnapshot) *UoW {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Zones[z.ID] = z
	return u
}

func (u *UoW) AddPickupPoint(p shared.PickupPointSnapshot) *UoW {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.PickupPoints[p.ID] = p
	return u
}

func (u *UoW) JobsWithStatus(status string) []Job {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []Job
	for _, j := range u.Jobs {
		if j.Status == status {
			out = append(out, *j)
		}
	}
	return out
}

func (u *UoW) CompletionCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.Completions)
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if u.WithinErr != nil {
		return u.WithinErr
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	t := &memTx{
		uow:         u,
		completions: map[string]shared.CompletionRecord{},
		jobs:        cloneJobs(u.Jobs),
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	for ref, rec := range t.completions {
		u.Completions[ref] = rec
	}
	u.Jobs = t.jobs
	return nil
}

func (u *UoW) CommandReads() shared.CommandReads {
	return &reads{uow: u}
}

func cloneJobs(jobs []*Job) []*Job {
	out := make([]*Job, len(jobs))
	for i, j := range jobs {
		copied := *j
		out[i] = &copied
	}
	return out
}

type memTx struct {
	uow         *UoW
	completions map[string]shared.CompletionRecord
	jobs        []*Job
}

func (t *memTx) Completions() shared.CompletionRepository     { return completionRepo{t} }
func (t *memTx) Notifications() shared.NotificationRepository { return notificationRepo{t} }
func (t *memTx) Reads() shared.CommandReads                   { return &reads{uow: t.uow, locked: true} }

type completionRepo struct{ t *memTx }

func (r completionRepo) Claim(_ context.Context, rec shared.CompletionRecord) (bool, error) {
	if _, ok := r.t.uow.Completions[rec.Reference]; ok {
		return false, nil
	}
	if _, ok := r.t.completions[rec.Reference]; ok {
		return false, nil
	}
	r.t.completions[rec.Reference] = rec
	return true, nil
}

type notificationRepo struct{ t *memTx }

func (r notificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	r.t.jobs = append(r.t.jobs, &Job{
		NotificationJob: shared.NotificationJob{ID: uuid.New(), Kind: kind, Topic: topic, Payload: payload, RunAt: runAt},
		Status:          "queued",
	})
	return nil
}

func (r notificationRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]shared.NotificationJob, error) {
	due := make([]*Job, 0)
	for _, j := range r.t.jobs {
		if j.Status == "queued" && !j.RunAt.After(now) {
			due = append(due, j)
		}
	}
	sort.SliceStable(due, func(a, b int) bool { return due[a].RunAt.Before(due[b].RunAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	out := make([]shared.NotificationJob, len(due))
	for i, j := range due {
		j.Status = "processing"
		j.Attempts++
		out[i] = j.NotificationJob
	}
	return out, nil
}

func (r notificationRepo) find(id uuid.UUID) *Job {
	for _, j := range r.t.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (r notificationRepo) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	j := r.find(id)
	if j == nil {
		return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
	}
	j.Status = "sent"
	j.SentAt = sentAt
	return nil
}

func (r notificationRepo) MarkFailed(_ context.Context, id uuid.UUID, lastError string, nextRunAt time.Time, dead bool) error {
	j := r.find(id)
	if j == nil {
		return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
	}
	j.Status = "queued"
	if dead {
		j.Status = "dead"
	}
	j.LastError = lastError
	j.RunAt = nextRunAt
	return nil
}

type reads struct {
	uow    *UoW
	locked bool
}

func (r *reads) lock() func() {
	if r.locked {
		return func() {}
	}
	r.uow.mu.Lock()
	return r.uow.mu.Unlock
}

func (r *reads) ZoneByID(_ context.Context, id uuid.UUID) (*shared.ZoneSnapshot, error) {
	defer r.lock()()
	z, ok := r.uow.Zones[id]
	if !ok {
		return nil, infra.WrapRepoErr("delivery zone not found", nil, infra.KindNotFound)
	}
	return &z, nil
}

func (r *reads) PickupPointByID(_ context.Context, id uuid.UUID) (*shared.PickupPointSnapshot, error) {
	defer r.lock()()
	p, ok := r.uow.PickupPoints[id]
	if !ok {
		return nil, infra.WrapRepoErr("pickup point not found", nil, infra.KindNotFound)
	}
	return &p, nil
}

func (r *reads) CompletionByReference(_ context.Context, reference string) (*shared.CompletionRecord, error) {
	defer r.lock()()
	rec, ok := r.uow.Completions[reference]
	if !ok {
		return nil, infra.WrapRepoErr("payment completion not found", nil, infra.KindNotFound)
	}
	return &rec, nil
}

// ActiveZones lets the UoW double as the fulfillment directory.
func (u *UoW) ActiveZones(_ context.Context) ([]shared.ZoneSnapshot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]shared.ZoneSnapshot, 0, len(u.Zones))
	for _, z := range u.Zones {
		if z.Active {
			out = append(out, z)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (u *UoW) ActivePickupPoints(_ context.Context) ([]shared.PickupPointSnapshot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]shared.PickupPointSnapshot, 0, len(u.PickupPoints))
	for _, p := range u.PickupPoints {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}
