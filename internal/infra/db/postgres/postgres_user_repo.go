package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/metrics"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	interests, err := json.Marshal(u.Interests)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (
  id, email, password_hash, name, age, country, language, interests, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  password_hash=$3, name=$4, age=$5, country=$6, language=$7, interests=$8, updated_at=$10;
`
	_, err = execSQL(ctx, r.pool, tx, q,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Age, u.Country, u.Language, interests, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		metrics.IncDBError("user", "save")
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
	}
	return err
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findBy(ctx, tx, "id", id)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findBy(ctx, tx, "email", email)
}

func (r *PostgresUserRepo) findBy(ctx context.Context, tx repository.Tx, col, val string) (*model.User, error) {
	q := fmt.Sprintf(`
SELECT id, email, password_hash, name, age, country, language, interests, created_at, updated_at
  FROM users WHERE %s=$1;`, col)
	row, err := pickRow(ctx, r.pool, tx, q, val)
	if err != nil {
		return nil, err
	}
	var (
		u            model.User
		rawInterests []byte
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Age, &u.Country, &u.Language, &rawInterests, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if rawInterests != nil {
		if err := json.Unmarshal(rawInterests, &u.Interests); err != nil {
			return nil, fmt.Errorf("decode interests: %w", err)
		}
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
