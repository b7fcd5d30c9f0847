package readstore

import (
	"context"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/db"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/pgconv"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
)

type CompletionReadQueries interface {
	GetPaymentCompletion(ctx context.Context, db db.DBTX, reference string) (db.PaymentCompletion, error)
}

type CompletionReadStore struct {
	queries CompletionReadQueries
	db      db.DBTX
}

func NewCompletionReadStore(queries CompletionReadQueries, dbtx db.DBTX) *CompletionReadStore {
	return &CompletionReadStore{
		queries: queries,
		db:      dbtx,
	}
}

func (r *CompletionReadStore) FindByReference(ctx context.Context, reference string) (*shared.CompletionRecord, error) {
	row, err := r.queries.GetPaymentCompletion(ctx, r.db, reference)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment completion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment completion", err)
	}

	return &shared.CompletionRecord{
		Reference:   row.Reference,
		SessionID:   row.SessionID,
		OrderID:     row.OrderID,
		OrderNumber: row.OrderNumber,
		AmountKobo:  row.AmountKobo,
		Channel:     row.Channel,
		CompletedAt: pgconv.TimeFromPgtype(row.CompletedAt),
	}, nil
}
