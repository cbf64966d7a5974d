package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"promo-platform/internal/domain"
)

func TestHTTPOracle_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes verdict and cache_until", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/validate" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var req validateRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.UserEmail != "alice@example.com" || req.PromoID != "promo-1" {
				t.Errorf("unexpected request payload: %+v", req)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":          true,
				"cache_until": "2030-01-02T15:04:05.000000",
			})
		}))
		defer srv.Close()

		oracle, err := NewHTTPOracle(srv.URL, time.Second)
		if err != nil {
			t.Fatalf("new oracle: %v", err)
		}
		verdict, err := oracle.Check(ctx, "alice@example.com", "promo-1")
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if !verdict.Ok {
			t.Error("expected allow verdict")
		}
		if verdict.CacheUntil == nil || verdict.CacheUntil.Year() != 2030 {
			t.Errorf("expected parsed cache_until, got %v", verdict.CacheUntil)
		}
	})

	t.Run("missing cache_until yields nil expiry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
		}))
		defer srv.Close()

		oracle, _ := NewHTTPOracle(srv.URL, time.Second)
		verdict, err := oracle.Check(ctx, "bob@example.com", "promo-2")
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if verdict.Ok {
			t.Error("expected deny verdict")
		}
		if verdict.CacheUntil != nil {
			t.Errorf("expected nil cache_until, got %v", verdict.CacheUntil)
		}
	})

	t.Run("non-200 response is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		oracle, _ := NewHTTPOracle(srv.URL, time.Second)
		_, err := oracle.Check(ctx, "bob@example.com", "promo-2")
		if !errors.Is(err, domain.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("missing ok field is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"cache_until": "2030-01-02T15:04:05.000000"})
		}))
		defer srv.Close()

		oracle, _ := NewHTTPOracle(srv.URL, time.Second)
		_, err := oracle.Check(ctx, "bob@example.com", "promo-2")
		if !errors.Is(err, domain.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("timeout surfaces as upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		oracle, _ := NewHTTPOracle(srv.URL, 20*time.Millisecond)
		_, err := oracle.Check(ctx, "bob@example.com", "promo-2")
		if !errors.Is(err, domain.ErrUpstream) {
			t.Errorf("expected ErrUpstream on timeout, got %v", err)
		}
	})
}
