package repository

import (
	"context"

	"promo-platform/internal/domain/model"
)

type CommentRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Comment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Comment, error)
	ListByPromo(ctx context.Context, tx Tx, promoID string) ([]*model.Comment, error)
	CountByPromo(ctx context.Context, tx Tx, promoID string) (int, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

type LikeRepository interface {
	// Save is idempotent: saving an existing (promo, user) pair is a no-op.
	Save(ctx context.Context, tx Tx, l *model.Like) error
	Find(ctx context.Context, tx Tx, promoID, userID string) (*model.Like, error)
	CountByPromo(ctx context.Context, tx Tx, promoID string) (int, error)
	Delete(ctx context.Context, tx Tx, promoID, userID string) error
}
