package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
)

// Compile-time check
var _ EngagementUseCase = (*engagementUC)(nil)

// EngagementUseCase covers likes and comments on promos. Mutations are
// author-only; like operations are idempotent.
type EngagementUseCase interface {
	Like(ctx context.Context, userID, promoID string) error
	Unlike(ctx context.Context, userID, promoID string) error

	AddComment(ctx context.Context, userID, promoID, content string) (*model.Comment, error)
	GetComment(ctx context.Context, promoID, commentID string) (*model.Comment, error)
	ListComments(ctx context.Context, promoID string) ([]*model.Comment, error)
	EditComment(ctx context.Context, userID, promoID, commentID, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, userID, promoID, commentID string) error
}

type engagementUC struct {
	promos   repository.PromoRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	log      *zerolog.Logger
}

func NewEngagementUseCase(
	promos repository.PromoRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	logger *zerolog.Logger,
) *engagementUC {
	return &engagementUC{promos: promos, comments: comments, likes: likes, log: logger}
}

func (u *engagementUC) checkPromo(ctx context.Context, promoID string) error {
	_, err := u.promos.FindByID(ctx, repository.NoTX, promoID)
	return err
}

// Like is idempotent: liking an already-liked promo succeeds without effect.
func (u *engagementUC) Like(ctx context.Context, userID, promoID string) error {
	defer logging.TraceDuration(u.log, "EngagementUC.Like")()

	if err := u.checkPromo(ctx, promoID); err != nil {
		return err
	}
	return u.likes.Save(ctx, repository.NoTX, model.NewLike(promoID, userID))
}

// Unlike is idempotent: removing a like that does not exist succeeds.
func (u *engagementUC) Unlike(ctx context.Context, userID, promoID string) error {
	defer logging.TraceDuration(u.log, "EngagementUC.Unlike")()

	if err := u.checkPromo(ctx, promoID); err != nil {
		return err
	}
	if err := u.likes.Delete(ctx, repository.NoTX, promoID, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (u *engagementUC) AddComment(ctx context.Context, userID, promoID, content string) (*model.Comment, error) {
	defer logging.TraceDuration(u.log, "EngagementUC.AddComment")()

	if err := u.checkPromo(ctx, promoID); err != nil {
		return nil, err
	}
	c, err := model.NewComment(promoID, userID, content)
	if err != nil {
		return nil, err
	}
	if err := u.comments.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *engagementUC) GetComment(ctx context.Context, promoID, commentID string) (*model.Comment, error) {
	defer logging.TraceDuration(u.log, "EngagementUC.GetComment")()

	c, err := u.comments.FindByID(ctx, repository.NoTX, commentID)
	if err != nil {
		return nil, err
	}
	if c.PromoID != promoID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (u *engagementUC) ListComments(ctx context.Context, promoID string) ([]*model.Comment, error) {
	defer logging.TraceDuration(u.log, "EngagementUC.ListComments")()

	if err := u.checkPromo(ctx, promoID); err != nil {
		return nil, err
	}
	return u.comments.ListByPromo(ctx, repository.NoTX, promoID)
}

func (u *engagementUC) EditComment(ctx context.Context, userID, promoID, commentID, content string) (*model.Comment, error) {
	defer logging.TraceDuration(u.log, "EngagementUC.EditComment")()

	c, err := u.comments.FindByID(ctx, repository.NoTX, commentID)
	if err != nil {
		return nil, err
	}
	if c.PromoID != promoID {
		return nil, domain.ErrNotFound
	}
	if c.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	if err := model.ValidateCommentContent(content); err != nil {
		return nil, err
	}
	c.Content = content
	c.UpdatedAt = time.Now().UTC()
	if err := u.comments.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *engagementUC) DeleteComment(ctx context.Context, userID, promoID, commentID string) error {
	defer logging.TraceDuration(u.log, "EngagementUC.DeleteComment")()

	c, err := u.comments.FindByID(ctx, repository.NoTX, commentID)
	if err != nil {
		return err
	}
	if c.PromoID != promoID {
		return domain.ErrNotFound
	}
	if c.UserID != userID {
		return domain.ErrNotOwner
	}
	return u.comments.Delete(ctx, repository.NoTX, commentID)
}
