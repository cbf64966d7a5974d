package model

import (
	"time"

	"promo-platform/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a redeeming account. Country, age, language and interests are the
// attributes the targeting evaluator reads.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Age          int
	Country      string // ISO 3166-1 alpha-2
	Language     string
	Interests    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(email, password, name string) (*User, error) {
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !IsPasswordStrong(password) {
		return nil, domain.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// IsPasswordStrong requires at least 8 characters with one lower-case letter,
// one upper-case letter, one digit and one special character.
func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}
