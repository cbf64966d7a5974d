package repository

import (
	"context"

	"promo-platform/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
}

type CompanyRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Company) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Company, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Company, error)
}
