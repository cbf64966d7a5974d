package model

import (
	"time"

	"promo-platform/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Company is a business account that owns promos.
type Company struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func NewCompany(name, email, password string) (*Company, error) {
	if name == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !IsPasswordStrong(password) {
		return nil, domain.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Company{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (c *Company) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

func (c *Company) IsZero() bool { return c == nil || c.ID == "" }
