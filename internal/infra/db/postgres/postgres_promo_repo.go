package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/metrics"
)

var _ repository.PromoRepository = (*PostgresPromoRepo)(nil)

type PostgresPromoRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPromoRepo(pool *pgxpool.Pool) *PostgresPromoRepo {
	return &PostgresPromoRepo{pool: pool}
}

const promoColumns = `id, company_id, mode, description, image_url, common_code, code_pool,
       targeting, max_count, active_from, active_until, active, created_at, updated_at`

func (r *PostgresPromoRepo) Save(ctx context.Context, tx repository.Tx, p *model.Promo) error {
	targeting, err := marshalTargeting(p.Targeting)
	if err != nil {
		return err
	}
	var pool []byte
	if len(p.CodePool) > 0 {
		if pool, err = json.Marshal(p.CodePool); err != nil {
			return err
		}
	}

	// code_pool is deliberately absent from the update list: the pool only
	// shrinks, via PopCode, and an upsert carrying a stale snapshot must not
	// put consumed codes back.
	const q = `
INSERT INTO promos (
  id, company_id, mode, description, image_url, common_code, code_pool,
  targeting, max_count, active_from, active_until, active, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
) ON CONFLICT (id) DO UPDATE SET
  description=$4, image_url=$5, common_code=$6,
  targeting=$8, max_count=$9, active_from=$10, active_until=$11, active=$12, updated_at=$14;
`
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.CompanyID, string(p.Mode), p.Description, p.ImageURL, p.CommonCode, pool,
		targeting, p.MaxCount, p.ActiveFrom, p.ActiveUntil, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		metrics.IncDBError("promo", "save")
	}
	return err
}

func (r *PostgresPromoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promo, error) {
	q := `SELECT ` + promoColumns + ` FROM promos WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPromo(row)
}

func (r *PostgresPromoRepo) ListByCompany(ctx context.Context, tx repository.Tx, companyID string, f repository.PromoListFilter) ([]*model.Promo, int, error) {
	where := `company_id=$1`
	args := []interface{}{companyID}
	if len(f.Countries) > 0 {
		// Match promos targeting any requested country, plus untargeted ones.
		codes, _ := json.Marshal(normalizeLower(f.Countries))
		args = append(args, codes)
		where += fmt.Sprintf(` AND (targeting IS NULL OR targeting->'country' IS NULL
       OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(targeting->'country') tc
                  WHERE lower(tc) IN (SELECT jsonb_array_elements_text($%d::jsonb))))`, len(args))
	}

	var total int
	countQ := `SELECT count(*) FROM promos WHERE ` + where
	row, err := pickRow(ctx, r.pool, tx, countQ, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		metrics.IncDBError("promo", "list_count")
		return nil, 0, err
	}

	sortCol := "created_at"
	switch f.SortBy {
	case "active_from":
		sortCol = "active_from"
	case "active_until":
		sortCol = "active_until"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, f.Offset)
	q := `SELECT ` + promoColumns + ` FROM promos WHERE ` + where +
		fmt.Sprintf(` ORDER BY %s DESC NULLS LAST LIMIT $%d OFFSET $%d;`, sortCol, len(args)-1, len(args))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		metrics.IncDBError("promo", "list")
		return nil, 0, err
	}
	defer rows.Close()

	promos, err := collectPromos(rows)
	if err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

func (r *PostgresPromoRepo) Feed(ctx context.Context, tx repository.Tx, f repository.FeedFilter) ([]*model.Promo, int, error) {
	// Only active promos inside their validity window with remaining capacity.
	where := `active = TRUE
  AND (active_from IS NULL OR active_from <= now())
  AND (active_until IS NULL OR active_until >= now())
  AND (
        (mode = 'COMMON' AND max_count > (SELECT count(*) FROM promo_activations a WHERE a.promo_id = promos.id))
     OR (mode = 'UNIQUE' AND jsonb_array_length(coalesce(code_pool, '[]'::jsonb)) > 0)
      )`
	var args []interface{}
	if f.Country != "" {
		args = append(args, strings.ToLower(f.Country))
		where += fmt.Sprintf(` AND (targeting IS NULL OR targeting->'country' IS NULL
       OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(targeting->'country') tc WHERE lower(tc) = $%d))`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		where += fmt.Sprintf(` AND (lower(description) LIKE $%d OR lower(common_code) LIKE $%d)`, len(args), len(args))
	}

	var total int
	row, err := pickRow(ctx, r.pool, tx, `SELECT count(*) FROM promos WHERE `+where, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		metrics.IncDBError("promo", "feed_count")
		return nil, 0, err
	}

	q := `SELECT ` + promoColumns + ` FROM promos WHERE ` + where + ` ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		metrics.IncDBError("promo", "feed")
		return nil, 0, err
	}
	defer rows.Close()

	promos, err := collectPromos(rows)
	if err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

// Lock takes a transaction-scoped advisory lock derived from the promo ID.
// All concurrent capacity checks on the same promo serialize behind it until
// the surrounding transaction commits or rolls back.
func (r *PostgresPromoRepo) Lock(ctx context.Context, tx repository.Tx, promoID string) error {
	if _, ok := tx.(pgx.Tx); !ok {
		return domain.ErrInvalidExecContext
	}
	_, err := execSQL(ctx, r.pool, tx, `SELECT pg_advisory_xact_lock($1)`, hashToInt64(promoID))
	return err
}

// PopCode removes and returns the head of a UNIQUE promo's pool. The row is
// locked FOR UPDATE so the read-modify-write is indivisible; the shrunken
// pool is durable in the same transaction that hands the value out.
func (r *PostgresPromoRepo) PopCode(ctx context.Context, tx repository.Tx, promoID string) (string, error) {
	if _, ok := tx.(pgx.Tx); !ok {
		return "", domain.ErrInvalidExecContext
	}

	row, err := pickRow(ctx, r.pool, tx, `SELECT code_pool FROM promos WHERE id=$1 FOR UPDATE;`, promoID)
	if err != nil {
		return "", err
	}
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		metrics.IncDBError("promo", "pop_code")
		return "", err
	}
	var pool []string
	if raw != nil {
		if err := json.Unmarshal(raw, &pool); err != nil {
			return "", fmt.Errorf("decode code_pool: %w", err)
		}
	}
	if len(pool) == 0 {
		return "", domain.ErrCapacityExceeded
	}

	code := pool[0]
	rest, _ := json.Marshal(pool[1:])
	if _, err := execSQL(ctx, r.pool, tx,
		`UPDATE promos SET code_pool=$2, updated_at=now() WHERE id=$1;`, promoID, rest); err != nil {
		metrics.IncDBError("promo", "pop_code")
		return "", err
	}
	return code, nil
}

func scanPromo(row pgx.Row) (*model.Promo, error) {
	var (
		p            model.Promo
		mode         string
		rawPool      []byte
		rawTargeting []byte
	)
	err := row.Scan(&p.ID, &p.CompanyID, &mode, &p.Description, &p.ImageURL, &p.CommonCode, &rawPool,
		&rawTargeting, &p.MaxCount, &p.ActiveFrom, &p.ActiveUntil, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p.Mode = model.PromoMode(mode)
	if rawPool != nil {
		if err := json.Unmarshal(rawPool, &p.CodePool); err != nil {
			return nil, fmt.Errorf("decode code_pool: %w", err)
		}
	}
	if rawTargeting != nil {
		var t model.Targeting
		if err := json.Unmarshal(rawTargeting, &t); err != nil {
			return nil, fmt.Errorf("decode targeting: %w", err)
		}
		p.Targeting = &t
	}
	return &p, nil
}

func collectPromos(rows pgx.Rows) ([]*model.Promo, error) {
	var out []*model.Promo
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func marshalTargeting(t *model.Targeting) ([]byte, error) {
	if t.IsZero() {
		return nil, nil
	}
	return json.Marshal(t)
}

func normalizeLower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}
