package model

import (
	"fmt"
	"strings"
	"time"

	"promo-platform/internal/domain"

	"github.com/google/uuid"
)

type PromoMode string

const (
	PromoModeCommon PromoMode = "COMMON"
	PromoModeUnique PromoMode = "UNIQUE"
)

// Promo is a promotional campaign owned by exactly one company.
//
// COMMON promos hand the same CommonCode to every redeemer and are bounded by
// MaxCount. UNIQUE promos hand out values from CodePool one at a time; the
// pool only ever shrinks and its size is the authoritative capacity
// (MaxCount is pinned to 1 for UNIQUE promos and never consulted by the
// capacity guard).
type Promo struct {
	ID          string
	CompanyID   string
	Mode        PromoMode
	Description string
	ImageURL    string
	CommonCode  string   // COMMON only
	CodePool    []string // UNIQUE only, consumed head-first
	Targeting   *Targeting
	MaxCount    int
	ActiveFrom  *time.Time // nil = open bound
	ActiveUntil *time.Time // nil = open bound
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPromo validates and builds a promo owned by companyID.
func NewPromo(companyID string, mode PromoMode, description string, p *Promo) (*Promo, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidArgument
	}
	promo := &Promo{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Mode:        mode,
		Description: description,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		MaxCount:    1,
	}
	if p != nil {
		promo.ImageURL = p.ImageURL
		promo.CommonCode = p.CommonCode
		promo.CodePool = p.CodePool
		promo.Targeting = p.Targeting
		promo.ActiveFrom = p.ActiveFrom
		promo.ActiveUntil = p.ActiveUntil
		if p.MaxCount > 0 {
			promo.MaxCount = p.MaxCount
		}
	}
	if mode == PromoModeUnique && len(promo.CodePool) == 0 {
		return nil, fmt.Errorf("%w: promo_unique is required for UNIQUE mode", domain.ErrValidation)
	}
	if err := promo.Validate(); err != nil {
		return nil, err
	}
	return promo, nil
}

// Validate checks mode/code/targeting consistency. Called before any
// persistence on both create and edit paths. An empty UNIQUE pool is legal
// here: redemptions drain the pool, and a drained promo must stay editable
// so its owner can retire it. The creation-time non-empty requirement lives
// in NewPromo.
func (p *Promo) Validate() error {
	if len(p.Description) < 10 {
		return fmt.Errorf("%w: description must be at least 10 characters", domain.ErrValidation)
	}
	switch p.Mode {
	case PromoModeCommon:
		if p.CommonCode == "" {
			return fmt.Errorf("%w: promo_common is required for COMMON mode", domain.ErrValidation)
		}
		if p.MaxCount < 1 {
			return fmt.Errorf("%w: max_count must be positive", domain.ErrValidation)
		}
	case PromoModeUnique:
		if p.MaxCount != 1 {
			return fmt.Errorf("%w: max_count must be 1 for UNIQUE mode", domain.ErrValidation)
		}
		seen := make(map[string]struct{}, len(p.CodePool))
		for _, c := range p.CodePool {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("%w: promo_unique cannot contain empty values", domain.ErrValidation)
			}
			if _, dup := seen[c]; dup {
				return fmt.Errorf("%w: promo_unique values must be distinct", domain.ErrValidation)
			}
			seen[c] = struct{}{}
		}
	default:
		return fmt.Errorf("%w: mode must be COMMON or UNIQUE", domain.ErrValidation)
	}
	if p.ImageURL != "" && !strings.HasPrefix(p.ImageURL, "http://") && !strings.HasPrefix(p.ImageURL, "https://") {
		return fmt.Errorf("%w: image_url must start with http:// or https://", domain.ErrValidation)
	}
	if p.ActiveFrom != nil && p.ActiveUntil != nil && p.ActiveFrom.After(*p.ActiveUntil) {
		return fmt.Errorf("%w: active_from cannot be after active_until", domain.ErrValidation)
	}
	return p.Targeting.Validate()
}

// InWindow reports whether the promo is redeemable at ts: the active flag is
// set and ts falls inside [ActiveFrom, ActiveUntil], either bound open.
func (p *Promo) InWindow(ts time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ActiveFrom != nil && ts.Before(*p.ActiveFrom) {
		return false
	}
	if p.ActiveUntil != nil && ts.After(*p.ActiveUntil) {
		return false
	}
	return true
}

func (p *Promo) IsZero() bool { return p == nil || p.ID == "" }
