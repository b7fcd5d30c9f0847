package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Queries holds the hand-maintained SQL for every table in migrations/.
type Queries struct{}

func New() *Queries {
	return &Queries{}
}

type DeliveryZone struct {
	ID        uuid.UUID
	Name      string
	FeeKobo   int64
	IsActive  bool
	UpdatedAt pgtype.Timestamptz
}

type PickupPoint struct {
	ID        uuid.UUID
	Name      string
	Address   string
	IsActive  bool
	UpdatedAt pgtype.Timestamptz
}

type PaymentCompletion struct {
	Reference   string
	SessionID   string
	OrderID     string
	OrderNumber string
	AmountKobo  int64
	Channel     string
	CompletedAt pgtype.Timestamptz
}

type NotificationJob struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	Status    string
	Attempts  int32
	LastError pgtype.Text
	RunAt     pgtype.Timestamptz
}

const getDeliveryZone = `-- name: GetDeliveryZone :one
SELECT id, name, fee_kobo, is_active, updated_at FROM delivery_zones WHERE id = $1`

func (q *Queries) GetDeliveryZone(ctx context.Context, db DBTX, id uuid.UUID) (DeliveryZone, error) {
	row := db.QueryRow(ctx, getDeliveryZone, id)
	var z DeliveryZone
	err := row.Scan(&z.ID, &z.Name, &z.FeeKobo, &z.IsActive, &z.UpdatedAt)
	return z, err
}

const listActiveDeliveryZones = `-- name: ListActiveDeliveryZones :many
SELECT id, name, fee_kobo, is_active, updated_at FROM delivery_zones WHERE is_active ORDER BY name`

func (q *Queries) ListActiveDeliveryZones(ctx context.Context, db DBTX) ([]DeliveryZone, error) {
	rows, err := db.Query(ctx, listActiveDeliveryZones)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DeliveryZone, error) {
		var z DeliveryZone
		err := row.Scan(&z.ID, &z.Name, &z.FeeKobo, &z.IsActive, &z.UpdatedAt)
		return z, err
	})
}

const getPickupPoint = `-- name: GetPickupPoint :one
SELECT id, name, address, is_active, updated_at FROM pickup_points WHERE id = $1`

func (q *Queries) GetPickupPoint(ctx context.Context, db DBTX, id uuid.UUID) (PickupPoint, error) {
	row := db.QueryRow(ctx, getPickupPoint, id)
	var p PickupPoint
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.IsActive, &p.UpdatedAt)
	return p, err
}

const listActivePickupPoints = `-- name: ListActivePickupPoints :many
SELECT id, name, address, is_active, updated_at FROM pickup_points WHERE is_active ORDER BY name`

func (q *Queries) ListActivePickupPoints(ctx context.Context, db DBTX) ([]PickupPoint, error) {
	rows, err := db.Query(ctx, listActivePickupPoints)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PickupPoint, error) {
		var p PickupPoint
		err := row.Scan(&p.ID, &p.Name, &p.Address, &p.IsActive, &p.UpdatedAt)
		return p, err
	})
}

const insertPaymentCompletion = `-- name: InsertPaymentCompletion :execrows
INSERT INTO payment_completions (reference, session_id, order_id, order_number, amount_kobo, channel, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (reference) DO NOTHING`

type InsertPaymentCompletionParams struct {
	Reference   string
	SessionID   string
	OrderID     string
	OrderNumber string
	AmountKobo  int64
	Channel     string
	CompletedAt pgtype.Timestamptz
}

func (q *Queries) InsertPaymentCompletion(ctx context.Context, db DBTX, arg InsertPaymentCompletionParams) (int64, error) {
	tag, err := db.Exec(ctx, insertPaymentCompletion,
		arg.Reference, arg.SessionID, arg.OrderID, arg.OrderNumber, arg.AmountKobo, arg.Channel, arg.CompletedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getPaymentCompletion = `-- name: GetPaymentCompletion :one
SELECT reference, session_id, order_id, order_number, amount_kobo, channel, completed_at
FROM payment_completions WHERE reference = $1`

func (q *Queries) GetPaymentCompletion(ctx context.Context, db DBTX, reference string) (PaymentCompletion, error) {
	row := db.QueryRow(ctx, getPaymentCompletion, reference)
	var c PaymentCompletion
	err := row.Scan(&c.Reference, &c.SessionID, &c.OrderID, &c.OrderNumber, &c.AmountKobo, &c.Channel, &c.CompletedAt)
	return c, err
}

const createNotificationJob = `-- name: CreateNotificationJob :exec
INSERT INTO notification_jobs (kind, topic, payload, status, run_at) VALUES ($1, $2, $3, $4, $5)`

type CreateNotificationJobParams struct {
	Kind    string
	Topic   string
	Payload []byte
	Status  string
	RunAt   pgtype.Timestamptz
}

func (q *Queries) CreateNotificationJob(ctx context.Context, db DBTX, arg CreateNotificationJobParams) error {
	_, err := db.Exec(ctx, createNotificationJob, arg.Kind, arg.Topic, arg.Payload, arg.Status, arg.RunAt)
	return err
}

// claimed rows move to 'processing' so concurrent pollers never publish the same job
const claimDueNotificationJobs = `-- name: ClaimDueNotificationJobs :many
UPDATE notification_jobs SET status = 'processing', attempts = attempts + 1
WHERE id IN (
    SELECT id FROM notification_jobs
    WHERE status = 'queued' AND run_at <= $1
    ORDER BY run_at
    LIMIT $2
    FOR UPDATE SKIP LOCKED
)
RETURNING id, kind, topic, payload, status, attempts, last_error, run_at`

func (q *Queries) ClaimDueNotificationJobs(ctx context.Context, db DBTX, now pgtype.Timestamptz, limit int32) ([]NotificationJob, error) {
	rows, err := db.Query(ctx, claimDueNotificationJobs, now, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (NotificationJob, error) {
		var j NotificationJob
		err := row.Scan(&j.ID, &j.Kind, &j.Topic, &j.Payload, &j.Status, &j.Attempts, &j.LastError, &j.RunAt)
		return j, err
	})
}

const markNotificationJobSent = `-- name: MarkNotificationJobSent :exec
UPDATE notification_jobs SET status = 'sent', sent_at = $2, last_error = NULL WHERE id = $1`

func (q *Queries) MarkNotificationJobSent(ctx context.Context, db DBTX, id uuid.UUID, sentAt pgtype.Timestamptz) error {
	_, err := db.Exec(ctx, markNotificationJobSent, id, sentAt)
	return err
}

const markNotificationJobFailed = `-- name: MarkNotificationJobFailed :exec
UPDATE notification_jobs SET status = $2, last_error = $3, run_at = $4 WHERE id = $1`

type MarkNotificationJobFailedParams struct {
	ID        uuid.UUID
	Status    string
	LastError pgtype.Text
	RunAt     pgtype.Timestamptz
}

func (q *Queries) MarkNotificationJobFailed(ctx context.Context, db DBTX, arg MarkNotificationJobFailedParams) error {
	_, err := db.Exec(ctx, markNotificationJobFailed, arg.ID, arg.Status, arg.LastError, arg.RunAt)
	return err
}
