package readstore

import (
	"context"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/db"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/pgconv"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/google/uuid"
)

type FulfillmentReadQueries interface {
	GetDeliveryZone(ctx context.Context, db db.DBTX, id uuid.UUID) (db.DeliveryZone, error)
	ListActiveDeliveryZones(ctx context.Context, db db.DBTX) ([]db.DeliveryZone, error)
	GetPickupPoint(ctx context.Context, db db.DBTX, id uuid.UUID) (db.PickupPoint, error)
	ListActivePickupPoints(ctx context.Context, db db.DBTX) ([]db.PickupPoint, error)
}

// FulfillmentReadStore serves delivery zones and pickup points.
type FulfillmentReadStore struct {
	queries FulfillmentReadQueries
	db      db.DBTX
}

func NewFulfillmentReadStore(queries FulfillmentReadQueries, dbtx db.DBTX) *FulfillmentReadStore {
	return &FulfillmentReadStore{
		queries: queries,
		db:      dbtx,
	}
}

func (r *FulfillmentReadStore) ZoneByID(ctx context.Context, id uuid.UUID) (*shared.ZoneSnapshot, error) {
	row, err := r.queries.GetDeliveryZone(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("delivery zone not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find delivery zone by ID", err)
	}

	zone := toZoneSnapshot(row)
	return &zone, nil
}

func (r *FulfillmentReadStore) PickupPointByID(ctx context.Context, id uuid.UUID) (*shared.PickupPointSnapshot, error) {
	row, err := r.queries.GetPickupPoint(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("pickup point not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pickup point by ID", err)
	}

	point := toPickupPointSnapshot(row)
	return &point, nil
}

func (r *FulfillmentReadStore) ActiveZones(ctx context.Context) ([]shared.ZoneSnapshot, error) {
	rows, err := r.queries.ListActiveDeliveryZones(ctx, r.db)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list delivery zones", err)
	}

	result := make([]shared.ZoneSnapshot, len(rows))
	for i, row := range rows {
		result[i] = toZoneSnapshot(row)
	}
	return result, nil
}

func (r *FulfillmentReadStore) ActivePickupPoints(ctx context.Context) ([]shared.PickupPointSnapshot, error) {
	rows, err := r.queries.ListActivePickupPoints(ctx, r.db)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list pickup points", err)
	}

	result := make([]shared.PickupPointSnapshot, len(rows))
	for i, row := range rows {
		result[i] = toPickupPointSnapshot(row)
	}
	return result, nil
}

func toZoneSnapshot(row db.DeliveryZone) shared.ZoneSnapshot {
	return shared.ZoneSnapshot{
		ID:      row.ID,
		Name:    row.Name,
		FeeKobo: row.FeeKobo,
		Active:  row.IsActive,
	}
}

func toPickupPointSnapshot(row db.PickupPoint) shared.PickupPointSnapshot {
	return shared.PickupPointSnapshot{
		ID:      row.ID,
		Name:    row.Name,
		Address: row.Address,
		Active:  row.IsActive,
	}
}
