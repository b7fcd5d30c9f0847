package queries

import (
	"context"

	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/google/uuid"
)

type ZoneView struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	FeeKobo int64     `json:"feeKobo"`
}

type PickupPointView struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
}

type FulfillmentOptions struct {
	Zones        []ZoneView        `json:"zones"`
	PickupPoints []PickupPointView `json:"pickupPoints"`
}

type FulfillmentQueries interface {
	Options(ctx context.Context) (*FulfillmentOptions, error)
}

type fulfillmentQueriesImpl struct {
	directory shared.FulfillmentDirectory
}

func NewFulfillmentQueries(directory shared.FulfillmentDirectory) FulfillmentQueries {
	return &fulfillmentQueriesImpl{directory: directory}
}

func (q *fulfillmentQueriesImpl) Options(ctx context.Context) (*FulfillmentOptions, error) {
	zones, err := q.directory.ActiveZones(ctx)
	if err != nil {
		return nil, err
	}
	points, err := q.directory.ActivePickupPoints(ctx)
	if err != nil {
		return nil, err
	}

	opts := &FulfillmentOptions{
		Zones:        make([]ZoneView, 0, len(zones)),
		PickupPoints: make([]PickupPointView, 0, len(points)),
	}
	for _, z := range zones {
		opts.Zones = append(opts.Zones, ZoneView{ID: z.ID, Name: z.Name, FeeKobo: z.FeeKobo})
	}
	for _, p := range points {
		opts.PickupPoints = append(opts.PickupPoints, PickupPointView{ID: p.ID, Name: p.Name, Address: p.Address})
	}
	return opts, nil
}
