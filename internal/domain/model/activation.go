package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// ActivationRecord is the immutable, append-only proof of one successful
// redemption. It is never updated or deleted and is the sole source of truth
// for COMMON-mode activation counts and per-user history.
type ActivationRecord struct {
	ID          string // ULID, sortable by creation time
	PromoID     string
	UserID      string
	Code        string // shared COMMON code or the popped UNIQUE value
	ActivatedAt time.Time
}

func NewActivationRecord(promoID, userID, code string, at time.Time) *ActivationRecord {
	return &ActivationRecord{
		ID:          ulid.MustNew(ulid.Timestamp(at), rand.Reader).String(),
		PromoID:     promoID,
		UserID:      userID,
		Code:        code,
		ActivatedAt: at,
	}
}

// RegionActivations is one row of the per-promo country summary.
type RegionActivations struct {
	RegionCode string `json:"region_code"`
	Count      int    `json:"count"`
}

// PromoStats aggregates the activation ledger for one promo.
type PromoStats struct {
	PromoID         string              `json:"promo_id"`
	ActivationCount int                 `json:"activation_count"`
	CountrySummary  []RegionActivations `json:"country_summary"`
}
