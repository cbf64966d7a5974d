package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserProfile is the sign-up / profile-edit input. All fields except the
// credentials are optional.
type UserProfile struct {
	Name      string
	Age       int
	Country   string
	Language  string
	Interests []string
}

// UserPatch carries the editable subset of profile fields; nil leaves a
// field unchanged. Email is immutable.
type UserPatch struct {
	Name      *string
	Password  *string
	Age       *int
	Country   *string
	Language  *string
	Interests []string
}

type UserUseCase interface {
	SignUp(ctx context.Context, email, password string, profile UserProfile) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, patch UserPatch) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger}
}

func (u *userUC) SignUp(ctx context.Context, email, password string, profile UserProfile) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.SignUp")()

	if profile.Country != "" && !model.IsISO3166Alpha2(profile.Country) {
		return nil, domain.ErrValidation
	}

	usr, err := model.NewUser(strings.ToLower(email), password, profile.Name)
	if err != nil {
		return nil, err
	}
	usr.Age = profile.Age
	usr.Country = strings.ToUpper(profile.Country)
	usr.Language = profile.Language
	usr.Interests = profile.Interests

	if err := u.users.Save(ctx, repository.NoTX, usr); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", usr.ID).Msg("user registered")
	return usr, nil
}

// SignIn maps both unknown-email and bad-password to ErrUnauthorized so the
// two cases are indistinguishable to a caller probing for accounts.
func (u *userUC) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.SignIn")()

	usr, err := u.users.FindByEmail(ctx, repository.NoTX, strings.ToLower(email))
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !usr.CheckPassword(password) {
		return nil, domain.ErrUnauthorized
	}
	return usr, nil
}

func (u *userUC) Profile(ctx context.Context, userID string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Profile")()
	return u.users.FindByID(ctx, repository.NoTX, userID)
}

func (u *userUC) UpdateProfile(ctx context.Context, userID string, patch UserPatch) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.UpdateProfile")()

	usr, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		usr.Name = *patch.Name
	}
	if patch.Password != nil {
		if !model.IsPasswordStrong(*patch.Password) {
			return nil, domain.ErrValidation
		}
		nu, err := model.NewUser(usr.Email, *patch.Password, usr.Name)
		if err != nil {
			return nil, err
		}
		usr.PasswordHash = nu.PasswordHash
	}
	if patch.Age != nil {
		if *patch.Age < 0 {
			return nil, domain.ErrValidation
		}
		usr.Age = *patch.Age
	}
	if patch.Country != nil {
		if *patch.Country != "" && !model.IsISO3166Alpha2(*patch.Country) {
			return nil, domain.ErrValidation
		}
		usr.Country = strings.ToUpper(*patch.Country)
	}
	if patch.Language != nil {
		usr.Language = *patch.Language
	}
	if patch.Interests != nil {
		usr.Interests = patch.Interests
	}

	usr.UpdatedAt = time.Now().UTC()
	if err := u.users.Save(ctx, repository.NoTX, usr); err != nil {
		return nil, err
	}
	return usr, nil
}
