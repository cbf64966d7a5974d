// File: internal/infra/adapters/fraud/http_oracle.go
package fraud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/ports/adapter"
	"promo-platform/internal/infra/metrics"
)

var _ adapter.FraudOracle = (*HTTPOracle)(nil)

// HTTPOracle calls the external antifraud service over JSON HTTP.
// Every call carries the configured timeout; any non-200 response or
// malformed body is a domain.ErrUpstream. The oracle is never retried here.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOracle(baseURL string, timeout time.Duration) (*HTTPOracle, error) {
	if baseURL == "" {
		return nil, errors.New("fraud oracle address empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid fraud oracle address: %w", err)
	}
	return &HTTPOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type validateRequest struct {
	UserEmail string `json:"user_email"`
	PromoID   string `json:"promo_id"`
}

type validateResponse struct {
	Ok         *bool  `json:"ok"`
	CacheUntil string `json:"cache_until"`
}

// cacheUntilLayout is the timestamp format the antifraud service emits.
const cacheUntilLayout = "2006-01-02T15:04:05.000000"

// Check POSTs {user_email, promo_id} to /api/validate and decodes the verdict.
func (o *HTTPOracle) Check(ctx context.Context, userEmail, promoID string) (adapter.FraudVerdict, error) {
	body, _ := json.Marshal(validateRequest{UserEmail: userEmail, PromoID: promoID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/validate", bytes.NewReader(body))
	if err != nil {
		return adapter.FraudVerdict{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	metrics.ObserveFraudOracleLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncFraudOracle("error")
		return adapter.FraudVerdict{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.IncFraudOracle("error")
		return adapter.FraudVerdict{}, fmt.Errorf("%w: antifraud returned status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.IncFraudOracle("error")
		return adapter.FraudVerdict{}, fmt.Errorf("%w: decode antifraud response: %v", domain.ErrUpstream, err)
	}
	if out.Ok == nil {
		metrics.IncFraudOracle("error")
		return adapter.FraudVerdict{}, fmt.Errorf("%w: antifraud response missing ok field", domain.ErrUpstream)
	}

	verdict := adapter.FraudVerdict{Ok: *out.Ok}
	if out.CacheUntil != "" {
		if ts, perr := parseCacheUntil(out.CacheUntil); perr == nil {
			verdict.CacheUntil = &ts
		}
		// An unparsable cache_until degrades to "not cacheable", it does
		// not fail the verdict itself.
	}

	if verdict.Ok {
		metrics.IncFraudOracle("allow")
	} else {
		metrics.IncFraudOracle("deny")
	}
	return verdict, nil
}

func parseCacheUntil(s string) (time.Time, error) {
	if ts, err := time.Parse(cacheUntilLayout, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}
