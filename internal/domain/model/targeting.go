package model

import (
	"fmt"
	"strings"

	"promo-platform/internal/domain"
)

// Targeting is the eligibility rule attached to a promo. Every dimension is
// optional; an absent dimension places no constraint on redeemers.
type Targeting struct {
	Countries  []string `json:"country,omitempty"`   // ISO 3166-1 alpha-2, lower case
	AgeFrom    *int     `json:"age_from,omitempty"`  // inclusive
	AgeUntil   *int     `json:"age_until,omitempty"` // inclusive
	Categories []string `json:"categories,omitempty"`
	Languages  []string `json:"language,omitempty"`
}

// IsZero reports whether the rule constrains nothing.
func (t *Targeting) IsZero() bool {
	return t == nil ||
		(len(t.Countries) == 0 && t.AgeFrom == nil && t.AgeUntil == nil &&
			len(t.Categories) == 0 && len(t.Languages) == 0)
}

// Matches is the targeting evaluator: a pure predicate over user attributes.
// A dimension passes when it is absent or the user's attribute is a member of
// the constraint set; age bounds are inclusive on whichever side is present.
func (t *Targeting) Matches(u *User) bool {
	if t.IsZero() {
		return true
	}
	if u == nil {
		return false
	}
	if len(t.Countries) > 0 && !containsFold(t.Countries, u.Country) {
		return false
	}
	if t.AgeFrom != nil && u.Age < *t.AgeFrom {
		return false
	}
	if t.AgeUntil != nil && u.Age > *t.AgeUntil {
		return false
	}
	if len(t.Categories) > 0 && !intersectsFold(t.Categories, u.Interests) {
		return false
	}
	if len(t.Languages) > 0 && !containsFold(t.Languages, u.Language) {
		return false
	}
	return true
}

// Validate rejects malformed rules before anything is persisted.
func (t *Targeting) Validate() error {
	if t == nil {
		return nil
	}
	if t.AgeFrom != nil && t.AgeUntil != nil && *t.AgeFrom > *t.AgeUntil {
		return fmt.Errorf("%w: age_from cannot be greater than age_until", domain.ErrValidation)
	}
	if t.AgeFrom != nil && *t.AgeFrom < 0 {
		return fmt.Errorf("%w: age_from cannot be negative", domain.ErrValidation)
	}
	for _, c := range t.Categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: categories cannot contain empty values", domain.ErrValidation)
		}
	}
	for _, c := range t.Countries {
		if !IsISO3166Alpha2(c) {
			return fmt.Errorf("%w: %q is not an ISO 3166-1 alpha-2 country code", domain.ErrValidation, c)
		}
	}
	return nil
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func intersectsFold(set, values []string) bool {
	for _, v := range values {
		if containsFold(set, v) {
			return true
		}
	}
	return false
}
