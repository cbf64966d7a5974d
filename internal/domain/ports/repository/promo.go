package repository

import (
	"context"

	"promo-platform/internal/domain/model"
)

// PromoListFilter narrows and orders company promo listings.
type PromoListFilter struct {
	Countries []string // match promos targeting any of these, or untargeted ones
	SortBy    string   // active_from | active_until | created_at (default)
	Offset    int
	Limit     int
}

// FeedFilter narrows the user-facing promo feed.
type FeedFilter struct {
	Country string
	Search  string // case-insensitive over description and common code
}

// PromoRepository is the port for promo storage.
//
// Lock and PopCode are the capacity guard's building blocks and are only
// meaningful inside a transaction handle obtained from TransactionManager.
type PromoRepository interface {
	// Save inserts a promo or updates its editable attributes. On update the
	// code pool is left untouched: pool entries shrink only through PopCode,
	// so a save working from a stale read cannot resurrect consumed codes.
	Save(ctx context.Context, tx Tx, p *model.Promo) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Promo, error)
	ListByCompany(ctx context.Context, tx Tx, companyID string, f PromoListFilter) ([]*model.Promo, int, error)
	Feed(ctx context.Context, tx Tx, f FeedFilter) ([]*model.Promo, int, error)

	// Lock serializes all concurrent activation attempts on one promo for
	// the duration of the surrounding transaction.
	Lock(ctx context.Context, tx Tx, promoID string) error

	// PopCode atomically removes and returns one value from a UNIQUE promo's
	// pool. Returns domain.ErrCapacityExceeded when the pool is empty.
	PopCode(ctx context.Context, tx Tx, promoID string) (string, error)
}
