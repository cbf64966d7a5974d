package fraud

import (
	"context"
	"sync/atomic"

	"promo-platform/internal/domain/ports/adapter"
)

var _ adapter.FraudOracle = (*NoopOracle)(nil)

// NoopOracle allows every redemption. Used in dev mode and tests.
type NoopOracle struct {
	calls int64
}

func NewNoopOracle() *NoopOracle { return &NoopOracle{} }

func (o *NoopOracle) Check(ctx context.Context, userEmail, promoID string) (adapter.FraudVerdict, error) {
	atomic.AddInt64(&o.calls, 1)
	return adapter.FraudVerdict{Ok: true}, nil
}

func (o *NoopOracle) Calls() int64 { return atomic.LoadInt64(&o.calls) }
