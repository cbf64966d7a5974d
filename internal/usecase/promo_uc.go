package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
)

// Compile-time check
var _ PromoUseCase = (*promoUC)(nil)

// PromoPatch carries the editable subset of promo fields. Nil means "leave
// unchanged". Mode, codes and the pool are fixed at creation time.
type PromoPatch struct {
	Description *string
	ImageURL    *string
	MaxCount    *int
	Targeting   *model.Targeting
	ActiveFrom  *time.Time
	ActiveUntil *time.Time
	Active      *bool
}

// PromoDetail is the user-facing promo view with engagement counters.
type PromoDetail struct {
	Promo        *model.Promo
	LikeCount    int
	CommentCount int
	Liked        bool
}

// PromoUseCase covers the company-side promo lifecycle and the user-facing
// read paths.
type PromoUseCase interface {
	Create(ctx context.Context, companyID string, mode model.PromoMode, description string, attrs *model.Promo) (*model.Promo, error)
	GetForCompany(ctx context.Context, companyID, promoID string) (*model.Promo, error)
	Edit(ctx context.Context, companyID, promoID string, patch PromoPatch) (*model.Promo, error)
	List(ctx context.Context, companyID string, f repository.PromoListFilter) ([]*model.Promo, int, error)
	Stat(ctx context.Context, companyID, promoID string) (*model.PromoStats, error)

	Feed(ctx context.Context, userID string, f repository.FeedFilter) ([]*model.Promo, int, error)
	Detail(ctx context.Context, userID, promoID string) (*PromoDetail, error)
}

type promoUC struct {
	promos      repository.PromoRepository
	activations repository.ActivationRepository
	users       repository.UserRepository
	comments    repository.CommentRepository
	likes       repository.LikeRepository
	log         *zerolog.Logger
}

func NewPromoUseCase(
	promos repository.PromoRepository,
	activations repository.ActivationRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	logger *zerolog.Logger,
) *promoUC {
	return &promoUC{
		promos:      promos,
		activations: activations,
		users:       users,
		comments:    comments,
		likes:       likes,
		log:         logger,
	}
}

func (u *promoUC) Create(ctx context.Context, companyID string, mode model.PromoMode, description string, attrs *model.Promo) (*model.Promo, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Create")()

	promo, err := model.NewPromo(companyID, mode, description, attrs)
	if err != nil {
		return nil, err
	}
	if err := u.promos.Save(ctx, repository.NoTX, promo); err != nil {
		return nil, err
	}
	u.log.Info().Str("promo_id", promo.ID).Str("company_id", companyID).Str("mode", string(mode)).Msg("promo created")
	return promo, nil
}

// GetForCompany hides promos owned by other companies behind ErrNotFound so
// the read path does not leak which IDs exist.
func (u *promoUC) GetForCompany(ctx context.Context, companyID, promoID string) (*model.Promo, error) {
	defer logging.TraceDuration(u.log, "PromoUC.GetForCompany")()

	promo, err := u.promos.FindByID(ctx, repository.NoTX, promoID)
	if err != nil {
		return nil, err
	}
	if promo.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return promo, nil
}

func (u *promoUC) Edit(ctx context.Context, companyID, promoID string, patch PromoPatch) (*model.Promo, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Edit")()

	promo, err := u.promos.FindByID(ctx, repository.NoTX, promoID)
	if err != nil {
		return nil, err
	}
	if promo.CompanyID != companyID {
		return nil, domain.ErrNotOwner
	}

	if patch.Description != nil {
		promo.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		promo.ImageURL = *patch.ImageURL
	}
	if patch.MaxCount != nil {
		promo.MaxCount = *patch.MaxCount
	}
	if patch.Targeting != nil {
		promo.Targeting = patch.Targeting
	}
	if patch.ActiveFrom != nil {
		promo.ActiveFrom = patch.ActiveFrom
	}
	if patch.ActiveUntil != nil {
		promo.ActiveUntil = patch.ActiveUntil
	}
	if patch.Active != nil {
		promo.Active = *patch.Active
	}
	if err := promo.Validate(); err != nil {
		return nil, err
	}

	promo.UpdatedAt = time.Now().UTC()
	if err := u.promos.Save(ctx, repository.NoTX, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

func (u *promoUC) List(ctx context.Context, companyID string, f repository.PromoListFilter) ([]*model.Promo, int, error) {
	defer logging.TraceDuration(u.log, "PromoUC.List")()
	return u.promos.ListByCompany(ctx, repository.NoTX, companyID, f)
}

// Stat aggregates the ledger for one promo. Every activation is attributed
// to the promo's targeted countries; untargeted promos report totals only.
func (u *promoUC) Stat(ctx context.Context, companyID, promoID string) (*model.PromoStats, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Stat")()

	promo, err := u.promos.FindByID(ctx, repository.NoTX, promoID)
	if err != nil {
		return nil, err
	}
	if promo.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	total, err := u.activations.CountByPromo(ctx, repository.NoTX, promoID)
	if err != nil {
		return nil, err
	}

	var summary []model.RegionActivations
	if total > 0 && promo.Targeting != nil {
		for _, c := range promo.Targeting.Countries {
			summary = append(summary, model.RegionActivations{
				RegionCode: strings.ToUpper(c),
				Count:      total,
			})
		}
		sort.Slice(summary, func(i, j int) bool { return summary[i].RegionCode < summary[j].RegionCode })
	}

	return &model.PromoStats{
		PromoID:         promoID,
		ActivationCount: total,
		CountrySummary:  summary,
	}, nil
}

func (u *promoUC) Feed(ctx context.Context, userID string, f repository.FeedFilter) ([]*model.Promo, int, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Feed")()

	if _, err := u.users.FindByID(ctx, repository.NoTX, userID); err != nil {
		return nil, 0, err
	}
	return u.promos.Feed(ctx, repository.NoTX, f)
}

// Detail serves the user-facing promo page. Inactive promos are invisible
// to users, mirroring the feed.
func (u *promoUC) Detail(ctx context.Context, userID, promoID string) (*PromoDetail, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Detail")()

	promo, err := u.promos.FindByID(ctx, repository.NoTX, promoID)
	if err != nil {
		return nil, err
	}
	if !promo.Active {
		return nil, domain.ErrNotFound
	}

	likeCount, err := u.likes.CountByPromo(ctx, repository.NoTX, promoID)
	if err != nil {
		return nil, err
	}
	commentCount, err := u.comments.CountByPromo(ctx, repository.NoTX, promoID)
	if err != nil {
		return nil, err
	}
	liked := false
	if _, err := u.likes.Find(ctx, repository.NoTX, promoID, userID); err == nil {
		liked = true
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return &PromoDetail{
		Promo:        promo,
		LikeCount:    likeCount,
		CommentCount: commentCount,
		Liked:        liked,
	}, nil
}
