package model

import (
	"fmt"
	"time"

	"promo-platform/internal/domain"

	"github.com/google/uuid"
)

// Comment is user feedback attached to a promo.
type Comment struct {
	ID        string
	PromoID   string
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewComment(promoID, userID, content string) (*Comment, error) {
	if err := ValidateCommentContent(content); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Comment{
		ID:        uuid.NewString(),
		PromoID:   promoID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func ValidateCommentContent(content string) error {
	if len(content) < 5 || len(content) > 500 {
		return fmt.Errorf("%w: content length must be between 5 and 500 characters", domain.ErrValidation)
	}
	return nil
}

// Like is a user's endorsement of a promo. One per (promo, user).
type Like struct {
	ID        string
	PromoID   string
	UserID    string
	CreatedAt time.Time
}

func NewLike(promoID, userID string) *Like {
	return &Like{
		ID:        uuid.NewString(),
		PromoID:   promoID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
