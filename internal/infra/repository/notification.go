package repository

import (
	"context"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/db"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/pgconv"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	jobStatusQueued = "queued"
	jobStatusDead   = "dead"
)

type NotificationWriteQueries interface {
	CreateNotificationJob(ctx context.Context, db db.DBTX, arg db.CreateNotificationJobParams) error
	ClaimDueNotificationJobs(ctx context.Context, db db.DBTX, now pgtype.Timestamptz, limit int32) ([]db.NotificationJob, error)
	MarkNotificationJobSent(ctx context.Context, db db.DBTX, id uuid.UUID, sentAt pgtype.Timestamptz) error
	MarkNotificationJobFailed(ctx context.Context, db db.DBTX, arg db.MarkNotificationJobFailedParams) error
}

type NotificationRepository struct {
	queries NotificationWriteQueries
	db      db.DBTX
}

func NewNotificationRepository(queries NotificationWriteQueries, dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{
		queries: queries,
		db:      dbtx,
	}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	params := db.CreateNotificationJobParams{
		Kind:    kind,
		Topic:   topic,
		Payload: payload,
		RunAt:   pgconv.TimeToPgtype(runAt),
		Status:  jobStatusQueued,
	}

	if err := r.queries.CreateNotificationJob(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]shared.NotificationJob, error) {
	// #nosec G115 -- batch size comes from config and is small
	rows, err := r.queries.ClaimDueNotificationJobs(ctx, r.db, pgconv.TimeToPgtype(now), int32(limit))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}

	jobs := make([]shared.NotificationJob, len(rows))
	for i, row := range rows {
		jobs[i] = shared.NotificationJob{
			ID:        row.ID,
			Kind:      row.Kind,
			Topic:     row.Topic,
			Payload:   row.Payload,
			Attempts:  int(row.Attempts),
			LastError: pgconv.StringFromPgtype(row.LastError),
			RunAt:     pgconv.TimeFromPgtype(row.RunAt),
		}
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	if err := r.queries.MarkNotificationJobSent(ctx, r.db, id, pgconv.TimeToPgtype(sentAt)); err != nil {
		return infra.WrapRepoErr("failed to mark notification job sent", err)
	}
	return nil
}

// MarkFailed requeues the job at nextRunAt, or parks it as dead.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, nextRunAt time.Time, dead bool) error {
	status := jobStatusQueued
	if dead {
		status = jobStatusDead
	}

	params := db.MarkNotificationJobFailedParams{
		ID:        id,
		Status:    status,
		LastError: pgconv.StringToPgtype(lastError),
		RunAt:     pgconv.TimeToPgtype(nextRunAt),
	}
	if err := r.queries.MarkNotificationJobFailed(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to mark notification job failed", err)
	}
	return nil
}
