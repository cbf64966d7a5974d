package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/metrics"
)

var _ repository.ActivationRepository = (*PostgresActivationRepo)(nil)

// PostgresActivationRepo persists the append-only activation ledger.
// There is deliberately no update or delete path.
type PostgresActivationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresActivationRepo(pool *pgxpool.Pool) *PostgresActivationRepo {
	return &PostgresActivationRepo{pool: pool}
}

func (r *PostgresActivationRepo) Append(ctx context.Context, tx repository.Tx, rec *model.ActivationRecord) error {
	const q = `
INSERT INTO promo_activations (id, promo_id, user_id, code, activated_at)
VALUES ($1,$2,$3,$4,$5);
`
	_, err := execSQL(ctx, r.pool, tx, q, rec.ID, rec.PromoID, rec.UserID, rec.Code, rec.ActivatedAt)
	if err != nil {
		metrics.IncDBError("activation", "append")
	}
	return err
}

func (r *PostgresActivationRepo) CountByPromo(ctx context.Context, tx repository.Tx, promoID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT count(*) FROM promo_activations WHERE promo_id=$1;`, promoID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		metrics.IncDBError("activation", "count")
		return 0, err
	}
	return n, nil
}

func (r *PostgresActivationRepo) HistoryByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.ActivationRecord, error) {
	const q = `
SELECT id, promo_id, user_id, code, activated_at
  FROM promo_activations
 WHERE user_id=$1
 ORDER BY activated_at DESC, id DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		metrics.IncDBError("activation", "history")
		return nil, err
	}
	defer rows.Close()

	var out []*model.ActivationRecord
	for rows.Next() {
		var rec model.ActivationRecord
		if err := rows.Scan(&rec.ID, &rec.PromoID, &rec.UserID, &rec.Code, &rec.ActivatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
