package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/metrics"
)

var _ repository.CompanyRepository = (*PostgresCompanyRepo)(nil)

type PostgresCompanyRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCompanyRepo(pool *pgxpool.Pool) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{pool: pool}
}

func (r *PostgresCompanyRepo) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	const q = `
INSERT INTO companies (id, name, email, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET name=$2, password_hash=$4;
`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.Email, c.PasswordHash, c.CreatedAt)
	if err != nil {
		metrics.IncDBError("company", "save")
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
	}
	return err
}

func (r *PostgresCompanyRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Company, error) {
	return r.findBy(ctx, tx, "id", id)
}

func (r *PostgresCompanyRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Company, error) {
	return r.findBy(ctx, tx, "email", email)
}

func (r *PostgresCompanyRepo) findBy(ctx context.Context, tx repository.Tx, col, val string) (*model.Company, error) {
	q := fmt.Sprintf(`SELECT id, name, email, password_hash, created_at FROM companies WHERE %s=$1;`, col)
	row, err := pickRow(ctx, r.pool, tx, q, val)
	if err != nil {
		return nil, err
	}
	var c model.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}
