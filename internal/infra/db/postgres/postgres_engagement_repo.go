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

var (
	_ repository.CommentRepository = (*PostgresCommentRepo)(nil)
	_ repository.LikeRepository    = (*PostgresLikeRepo)(nil)
)

type PostgresCommentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentRepo(pool *pgxpool.Pool) *PostgresCommentRepo {
	return &PostgresCommentRepo{pool: pool}
}

func (r *PostgresCommentRepo) Save(ctx context.Context, tx repository.Tx, c *model.Comment) error {
	const q = `
INSERT INTO comments (id, promo_id, user_id, content, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET content=$4, updated_at=$6;
`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.PromoID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		metrics.IncDBError("comment", "save")
	}
	return err
}

func (r *PostgresCommentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Comment, error) {
	const q = `
SELECT id, promo_id, user_id, content, created_at, updated_at FROM comments WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var c model.Comment
	if err := row.Scan(&c.ID, &c.PromoID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *PostgresCommentRepo) ListByPromo(ctx context.Context, tx repository.Tx, promoID string) ([]*model.Comment, error) {
	const q = `
SELECT id, promo_id, user_id, content, created_at, updated_at
  FROM comments WHERE promo_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, promoID)
	if err != nil {
		metrics.IncDBError("comment", "list")
		return nil, err
	}
	defer rows.Close()

	var out []*model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PromoID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresCommentRepo) CountByPromo(ctx context.Context, tx repository.Tx, promoID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT count(*) FROM comments WHERE promo_id=$1;`, promoID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresCommentRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM comments WHERE id=$1;`, id)
	if err != nil {
		metrics.IncDBError("comment", "delete")
	}
	return err
}

type PostgresLikeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresLikeRepo(pool *pgxpool.Pool) *PostgresLikeRepo {
	return &PostgresLikeRepo{pool: pool}
}

func (r *PostgresLikeRepo) Save(ctx context.Context, tx repository.Tx, l *model.Like) error {
	const q = `
INSERT INTO likes (id, promo_id, user_id, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (promo_id, user_id) DO NOTHING;
`
	_, err := execSQL(ctx, r.pool, tx, q, l.ID, l.PromoID, l.UserID, l.CreatedAt)
	if err != nil {
		metrics.IncDBError("like", "save")
	}
	return err
}

func (r *PostgresLikeRepo) Find(ctx context.Context, tx repository.Tx, promoID, userID string) (*model.Like, error) {
	const q = `SELECT id, promo_id, user_id, created_at FROM likes WHERE promo_id=$1 AND user_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, promoID, userID)
	if err != nil {
		return nil, err
	}
	var l model.Like
	if err := row.Scan(&l.ID, &l.PromoID, &l.UserID, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &l, nil
}

func (r *PostgresLikeRepo) CountByPromo(ctx context.Context, tx repository.Tx, promoID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT count(*) FROM likes WHERE promo_id=$1;`, promoID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresLikeRepo) Delete(ctx context.Context, tx repository.Tx, promoID, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM likes WHERE promo_id=$1 AND user_id=$2;`, promoID, userID)
	if err != nil {
		metrics.IncDBError("like", "delete")
	}
	return err
}
