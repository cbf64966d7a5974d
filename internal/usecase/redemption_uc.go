package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/adapter"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/db/postgres"
	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// maxConflictRetries bounds transparent retries of the reservation
// transaction on serialization failures before surfacing ErrConflict.
const maxConflictRetries = 3

// RedemptionUseCase is the promo activation orchestrator.
type RedemptionUseCase interface {
	// Activate runs the full redemption pipeline for one (user, promo)
	// attempt and returns the granted code value.
	Activate(ctx context.Context, userID, promoID string) (string, error)
	// History lists the user's successful activations, most recent first.
	History(ctx context.Context, userID string) ([]*model.ActivationRecord, error)
}

type redemptionUC struct {
	promos      repository.PromoRepository
	activations repository.ActivationRepository
	users       repository.UserRepository
	fraud       adapter.FraudChecker
	tm          repository.TransactionManager
	now         func() time.Time
	log         *zerolog.Logger
}

func NewRedemptionUseCase(
	promos repository.PromoRepository,
	activations repository.ActivationRepository,
	users repository.UserRepository,
	fraud adapter.FraudChecker,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *redemptionUC {
	return &redemptionUC{
		promos:      promos,
		activations: activations,
		users:       users,
		fraud:       fraud,
		tm:          tm,
		now:         time.Now,
		log:         logger,
	}
}

// Activate validates eligibility in a fixed order (existence, activity
// window, targeting, fraud) and only then reserves capacity. The checks are
// ordered so that no fraud oracle traffic is spent on attempts that fail a
// cheap local check, and no capacity is held for attempts the oracle denies.
//
// The reservation itself runs inside one transaction under a per-promo
// advisory lock, so the capacity check and the ledger append commit or roll
// back as a unit. Concurrent attempts on the same promo serialize on the
// lock; attempts on different promos do not contend.
func (u *redemptionUC) Activate(ctx context.Context, userID, promoID string) (string, error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.Activate")()
	start := u.now()

	mode, outcome := "unknown", "error"
	defer func() {
		metrics.IncRedemption(mode, outcome)
		metrics.ObserveRedemptionLatency(mode, float64(u.now().Sub(start).Milliseconds()))
	}()

	promo, err := u.promos.FindByID(ctx, repository.NoTX, promoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			outcome = "not_found"
		}
		return "", err
	}
	mode = string(promo.Mode)

	if !promo.Active || !promo.InWindow(u.now()) {
		outcome = "inactive"
		return "", domain.ErrPromoInactive
	}

	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			outcome = "not_found"
		}
		return "", err
	}
	if !promo.Targeting.Matches(user) {
		outcome = "targeting_mismatch"
		return "", domain.ErrTargetingMismatch
	}

	ok, err := u.fraud.Verdict(ctx, user.Email, promoID)
	if err != nil {
		outcome = "upstream_error"
		return "", err
	}
	if !ok {
		outcome = "fraud_denied"
		return "", domain.ErrFraudDenied
	}

	code, err := u.reserve(ctx, user, promoID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			outcome = "capacity_exceeded"
		case errors.Is(err, domain.ErrPromoInactive):
			outcome = "inactive"
		case errors.Is(err, domain.ErrConflict):
			outcome = "conflict"
		}
		return "", err
	}

	outcome = "granted"
	u.log.Info().
		Str("promo_id", promoID).
		Str("user_id", userID).
		Str("mode", mode).
		Msg("promo activated")
	return code, nil
}

// reserve holds the per-promo lock, re-reads promo state inside the
// transaction, consumes one unit of capacity and appends the ledger record.
// Serialization failures are retried up to maxConflictRetries times with the
// whole transaction re-run from scratch.
func (u *redemptionUC) reserve(ctx context.Context, user *model.User, promoID string) (string, error) {
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var code string
		err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
			if err := u.promos.Lock(ctx, tx, promoID); err != nil {
				return err
			}

			// The pre-transaction read may be stale by now.
			promo, err := u.promos.FindByID(ctx, tx, promoID)
			if err != nil {
				return err
			}
			if !promo.Active || !promo.InWindow(u.now()) {
				return domain.ErrPromoInactive
			}

			switch promo.Mode {
			case model.PromoModeCommon:
				n, err := u.activations.CountByPromo(ctx, tx, promoID)
				if err != nil {
					return err
				}
				if n >= promo.MaxCount {
					return domain.ErrCapacityExceeded
				}
				code = promo.CommonCode
			case model.PromoModeUnique:
				code, err = u.promos.PopCode(ctx, tx, promoID)
				if err != nil {
					return err
				}
			default:
				return domain.ErrInvalidArgument
			}

			rec := model.NewActivationRecord(promoID, user.ID, code, u.now())
			return u.activations.Append(ctx, tx, rec)
		})
		if err == nil {
			return code, nil
		}
		if !postgres.IsSerializationError(err) {
			return "", err
		}
		lastErr = err
		metrics.IncCapacityRetry()
		u.log.Warn().
			Err(err).
			Str("promo_id", promoID).
			Int("attempt", attempt+1).
			Msg("redemption transaction conflict, retrying")
	}
	return "", fmt.Errorf("%w: %v", domain.ErrConflict, lastErr)
}

func (u *redemptionUC) History(ctx context.Context, userID string) ([]*model.ActivationRecord, error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.History")()
	if _, err := u.users.FindByID(ctx, repository.NoTX, userID); err != nil {
		return nil, err
	}
	return u.activations.HistoryByUser(ctx, repository.NoTX, userID)
}
