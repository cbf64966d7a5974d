package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"promo-platform/internal/domain/ports/adapter"
	"promo-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.FraudChecker = (*FraudVerdictCache)(nil)

// FraudVerdictCache fronts the external fraud oracle with a Redis cache keyed
// by (user, promo). A live entry is served without a network call; a miss or
// expired entry triggers one oracle call whose verdict is stored with the
// oracle-supplied expiry before it is returned. Verdicts without an expiry are
// not cached. Concurrent first-time lookups for the same key may each call the
// oracle; the cache performs no request coalescing.
type FraudVerdictCache struct {
	client RedisClient
	oracle adapter.FraudOracle
	now    func() time.Time
	log    *zerolog.Logger
}

type verdictEntry struct {
	Ok         bool      `json:"ok"`
	CacheUntil time.Time `json:"cache_until"`
}

func NewFraudVerdictCache(client RedisClient, oracle adapter.FraudOracle, logger *zerolog.Logger) *FraudVerdictCache {
	return &FraudVerdictCache{client: client, oracle: oracle, now: time.Now, log: logger}
}

func verdictKey(userEmail, promoID string) string {
	return fmt.Sprintf("antifraud:%s:%s", userEmail, promoID)
}

// Verdict returns the cached or freshly fetched fraud verdict for the pair.
// Oracle failures surface as-is; the caller treats them as upstream errors
// and never retries here.
func (c *FraudVerdictCache) Verdict(ctx context.Context, userEmail, promoID string) (bool, error) {
	key := verdictKey(userEmail, promoID)

	raw, err := c.client.Get(ctx, key)
	switch {
	case err == nil:
		var entry verdictEntry
		if jerr := json.Unmarshal([]byte(raw), &entry); jerr == nil {
			if c.now().Before(entry.CacheUntil) {
				metrics.IncFraudCache("hit")
				return entry.Ok, nil
			}
			metrics.IncFraudCache("expired")
		} else {
			c.log.Warn().Str("key", key).Err(jerr).Msg("dropping undecodable fraud cache entry")
			_ = c.client.Del(ctx, key)
		}
	case errors.Is(err, Nil):
		metrics.IncFraudCache("miss")
	default:
		// Degraded cache store is not a reason to block redemption; fall
		// through to the oracle.
		metrics.IncFraudCache("error")
		c.log.Warn().Err(err).Msg("fraud cache read failed")
	}

	verdict, err := c.oracle.Check(ctx, userEmail, promoID)
	if err != nil {
		return false, err
	}

	if verdict.CacheUntil != nil {
		if ttl := verdict.CacheUntil.Sub(c.now()); ttl > time.Second {
			entry := verdictEntry{Ok: verdict.Ok, CacheUntil: *verdict.CacheUntil}
			data, _ := json.Marshal(entry)
			if serr := c.client.Set(ctx, key, data, ttl.Truncate(time.Second)); serr != nil {
				c.log.Warn().Err(serr).Msg("fraud cache write failed")
			}
		}
	}
	return verdict.Ok, nil
}
