package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
)

// Compile-time check
var _ CompanyUseCase = (*companyUC)(nil)

type CompanyUseCase interface {
	SignUp(ctx context.Context, name, email, password string) (*model.Company, error)
	SignIn(ctx context.Context, email, password string) (*model.Company, error)
	Get(ctx context.Context, companyID string) (*model.Company, error)
}

type companyUC struct {
	companies repository.CompanyRepository
	log       *zerolog.Logger
}

func NewCompanyUseCase(companies repository.CompanyRepository, logger *zerolog.Logger) *companyUC {
	return &companyUC{companies: companies, log: logger}
}

func (u *companyUC) SignUp(ctx context.Context, name, email, password string) (*model.Company, error) {
	defer logging.TraceDuration(u.log, "CompanyUC.SignUp")()

	c, err := model.NewCompany(name, strings.ToLower(email), password)
	if err != nil {
		return nil, err
	}
	if err := u.companies.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	u.log.Info().Str("company_id", c.ID).Msg("company registered")
	return c, nil
}

func (u *companyUC) SignIn(ctx context.Context, email, password string) (*model.Company, error) {
	defer logging.TraceDuration(u.log, "CompanyUC.SignIn")()

	c, err := u.companies.FindByEmail(ctx, repository.NoTX, strings.ToLower(email))
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !c.CheckPassword(password) {
		return nil, domain.ErrUnauthorized
	}
	return c, nil
}

func (u *companyUC) Get(ctx context.Context, companyID string) (*model.Company, error) {
	defer logging.TraceDuration(u.log, "CompanyUC.Get")()
	return u.companies.FindByID(ctx, repository.NoTX, companyID)
}
