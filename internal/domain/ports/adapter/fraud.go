package adapter

import (
	"context"
	"time"
)

// FraudVerdict is one answer from the external fraud oracle.
// CacheUntil is the instant the verdict may be served from cache until;
// nil means the verdict must not be cached beyond the current call.
type FraudVerdict struct {
	Ok         bool
	CacheUntil *time.Time
}

// FraudOracle renders an allow/deny verdict for a (user, promo) redemption
// attempt. Implementations own their network timeout; callers never retry.
type FraudOracle interface {
	Check(ctx context.Context, userEmail, promoID string) (FraudVerdict, error)
}

// FraudChecker is the cache-fronted view the redemption orchestrator consumes.
type FraudChecker interface {
	Verdict(ctx context.Context, userEmail, promoID string) (bool, error)
}
