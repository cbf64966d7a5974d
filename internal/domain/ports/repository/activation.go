package repository

import (
	"context"

	"promo-platform/internal/domain/model"
)

// ActivationRepository is the port for the append-only activation ledger.
// Records are written exactly once and never updated or deleted.
type ActivationRepository interface {
	Append(ctx context.Context, tx Tx, rec *model.ActivationRecord) error
	CountByPromo(ctx context.Context, tx Tx, promoID string) (int, error)
	HistoryByUser(ctx context.Context, tx Tx, userID string) ([]*model.ActivationRecord, error)
}
