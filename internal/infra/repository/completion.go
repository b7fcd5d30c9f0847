package repository

import (
	"context"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/db"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/pgconv"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
)

type CompletionWriteQueries interface {
	InsertPaymentCompletion(ctx context.Context, db db.DBTX, arg db.InsertPaymentCompletionParams) (int64, error)
}

type CompletionRepository struct {
	queries CompletionWriteQueries
	db      db.DBTX
}

func NewCompletionRepository(queries CompletionWriteQueries, dbtx db.DBTX) *CompletionRepository {
	return &CompletionRepository{
		queries: queries,
		db:      dbtx,
	}
}

// Claim inserts the ledger row. A conflicting reference affects no rows and reports false.
func (r *CompletionRepository) Claim(ctx context.Context, rec shared.CompletionRecord) (bool, error) {
	params := db.InsertPaymentCompletionParams{
		Reference:   rec.Reference,
		SessionID:   rec.SessionID,
		OrderID:     rec.OrderID,
		OrderNumber: rec.OrderNumber,
		AmountKobo:  rec.AmountKobo,
		Channel:     rec.Channel,
		CompletedAt: pgconv.TimeToPgtype(rec.CompletedAt),
	}

	affected, err := r.queries.InsertPaymentCompletion(ctx, r.db, params)
	if err != nil {
		return false, infra.WrapRepoErr("failed to record payment completion", err)
	}
	return affected == 1, nil
}
