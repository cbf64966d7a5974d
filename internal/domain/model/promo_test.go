package model

import (
	"errors"
	"testing"
	"time"

	"promo-platform/internal/domain"
)

func TestNewPromoValidation(t *testing.T) {
	cases := []struct {
		name  string
		mode  PromoMode
		desc  string
		attrs *Promo
		ok    bool
	}{
		{"valid common", PromoModeCommon, "ten percent off", &Promo{CommonCode: "SAVE10", MaxCount: 5}, true},
		{"valid unique", PromoModeUnique, "one-time vouchers", &Promo{CodePool: []string{"A", "B"}}, true},
		{"description too short", PromoModeCommon, "too short", &Promo{CommonCode: "X"}, false},
		{"common without code", PromoModeCommon, "ten percent off", &Promo{MaxCount: 5}, false},
		{"unique without pool", PromoModeUnique, "one-time vouchers", nil, false},
		{"unique with max_count above one", PromoModeUnique, "one-time vouchers", &Promo{CodePool: []string{"A"}, MaxCount: 2}, false},
		{"unique with duplicate values", PromoModeUnique, "one-time vouchers", &Promo{CodePool: []string{"A", "A"}}, false},
		{"unique with blank value", PromoModeUnique, "one-time vouchers", &Promo{CodePool: []string{"A", " "}}, false},
		{"unknown mode", PromoMode("FLASH"), "ten percent off", &Promo{CommonCode: "X"}, false},
		{"bad image url", PromoModeCommon, "ten percent off", &Promo{CommonCode: "X", ImageURL: "ftp://img"}, false},
		{"good image url", PromoModeCommon, "ten percent off", &Promo{CommonCode: "X", ImageURL: "https://img.example/x.png"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPromo("company-1", tc.mode, tc.desc, tc.attrs)
			if tc.ok && err != nil {
				t.Errorf("NewPromo() = %v, want nil", err)
			}
			if !tc.ok && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("NewPromo() = %v, want ErrValidation", err)
			}
		})
	}

	if _, err := NewPromo("", PromoModeCommon, "ten percent off", &Promo{CommonCode: "X"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("missing company: got %v, want ErrInvalidArgument", err)
	}
}

func TestValidateAllowsDrainedUniquePool(t *testing.T) {
	p, err := NewPromo("company-1", PromoModeUnique, "one-time vouchers", &Promo{CodePool: []string{"A"}})
	if err != nil {
		t.Fatalf("NewPromo: %v", err)
	}
	// Redemptions empty the pool; the promo must stay valid for edits.
	p.CodePool = nil
	if err := p.Validate(); err != nil {
		t.Errorf("Validate on drained pool = %v, want nil", err)
	}
}

func TestNewPromoWindowOrder(t *testing.T) {
	from := time.Now()
	until := from.Add(-time.Hour)
	_, err := NewPromo("company-1", PromoModeCommon, "ten percent off", &Promo{
		CommonCode:  "X",
		ActiveFrom:  &from,
		ActiveUntil: &until,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("inverted window: got %v, want ErrValidation", err)
	}
}

func TestPromoInWindow(t *testing.T) {
	now := time.Now()
	hour := time.Hour

	mk := func(from, until *time.Time, active bool) *Promo {
		return &Promo{Active: active, ActiveFrom: from, ActiveUntil: until}
	}
	past := now.Add(-hour)
	future := now.Add(hour)

	cases := []struct {
		name  string
		promo *Promo
		want  bool
	}{
		{"open bounds", mk(nil, nil, true), true},
		{"inside window", mk(&past, &future, true), true},
		{"before window", mk(&future, nil, true), false},
		{"after window", mk(nil, &past, true), false},
		{"inactive flag wins", mk(nil, nil, false), false},
		{"boundary instant is inside", mk(&now, &now, true), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.promo.InWindow(now); got != tc.want {
				t.Errorf("InWindow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUniquePromoDefaultsMaxCountToOne(t *testing.T) {
	p, err := NewPromo("company-1", PromoModeUnique, "one-time vouchers", &Promo{CodePool: []string{"A", "B", "C"}})
	if err != nil {
		t.Fatalf("NewPromo: %v", err)
	}
	if p.MaxCount != 1 {
		t.Errorf("MaxCount = %d, want 1", p.MaxCount)
	}
	if !p.Active {
		t.Error("new promo should start active")
	}
}
