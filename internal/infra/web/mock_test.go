package web

import (
	"context"
	"sync"
	"time"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/usecase"
)

// Mocks of the use-case interfaces with overridable behavior per test.

type mockUserUC struct {
	SignUpFunc        func(ctx context.Context, email, password string, profile usecase.UserProfile) (*model.User, error)
	SignInFunc        func(ctx context.Context, email, password string) (*model.User, error)
	ProfileFunc       func(ctx context.Context, userID string) (*model.User, error)
	UpdateProfileFunc func(ctx context.Context, userID string, patch usecase.UserPatch) (*model.User, error)
}

var _ usecase.UserUseCase = (*mockUserUC)(nil)

func (m *mockUserUC) SignUp(ctx context.Context, email, password string, profile usecase.UserProfile) (*model.User, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password, profile)
	}
	return &model.User{ID: "user-1", Email: email}, nil
}

func (m *mockUserUC) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return &model.User{ID: "user-1", Email: email}, nil
}

func (m *mockUserUC) Profile(ctx context.Context, userID string) (*model.User, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return &model.User{ID: userID, Email: userID + "@example.com"}, nil
}

func (m *mockUserUC) UpdateProfile(ctx context.Context, userID string, patch usecase.UserPatch) (*model.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, patch)
	}
	return &model.User{ID: userID}, nil
}

type mockCompanyUC struct {
	SignUpFunc func(ctx context.Context, name, email, password string) (*model.Company, error)
	SignInFunc func(ctx context.Context, email, password string) (*model.Company, error)
	GetFunc    func(ctx context.Context, companyID string) (*model.Company, error)
}

var _ usecase.CompanyUseCase = (*mockCompanyUC)(nil)

func (m *mockCompanyUC) SignUp(ctx context.Context, name, email, password string) (*model.Company, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, name, email, password)
	}
	return &model.Company{ID: "company-1", Name: name, Email: email}, nil
}

func (m *mockCompanyUC) SignIn(ctx context.Context, email, password string) (*model.Company, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return &model.Company{ID: "company-1", Email: email}, nil
}

func (m *mockCompanyUC) Get(ctx context.Context, companyID string) (*model.Company, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, companyID)
	}
	return &model.Company{ID: companyID}, nil
}

type mockPromoUC struct {
	CreateFunc        func(ctx context.Context, companyID string, mode model.PromoMode, description string, attrs *model.Promo) (*model.Promo, error)
	GetForCompanyFunc func(ctx context.Context, companyID, promoID string) (*model.Promo, error)
	EditFunc          func(ctx context.Context, companyID, promoID string, patch usecase.PromoPatch) (*model.Promo, error)
	ListFunc          func(ctx context.Context, companyID string, f repository.PromoListFilter) ([]*model.Promo, int, error)
	StatFunc          func(ctx context.Context, companyID, promoID string) (*model.PromoStats, error)
	FeedFunc          func(ctx context.Context, userID string, f repository.FeedFilter) ([]*model.Promo, int, error)
	DetailFunc        func(ctx context.Context, userID, promoID string) (*usecase.PromoDetail, error)
}

var _ usecase.PromoUseCase = (*mockPromoUC)(nil)

func (m *mockPromoUC) Create(ctx context.Context, companyID string, mode model.PromoMode, description string, attrs *model.Promo) (*model.Promo, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, companyID, mode, description, attrs)
	}
	return &model.Promo{ID: "promo-1", CompanyID: companyID, Mode: mode, Description: description}, nil
}

func (m *mockPromoUC) GetForCompany(ctx context.Context, companyID, promoID string) (*model.Promo, error) {
	if m.GetForCompanyFunc != nil {
		return m.GetForCompanyFunc(ctx, companyID, promoID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPromoUC) Edit(ctx context.Context, companyID, promoID string, patch usecase.PromoPatch) (*model.Promo, error) {
	if m.EditFunc != nil {
		return m.EditFunc(ctx, companyID, promoID, patch)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPromoUC) List(ctx context.Context, companyID string, f repository.PromoListFilter) ([]*model.Promo, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, companyID, f)
	}
	return nil, 0, nil
}

func (m *mockPromoUC) Stat(ctx context.Context, companyID, promoID string) (*model.PromoStats, error) {
	if m.StatFunc != nil {
		return m.StatFunc(ctx, companyID, promoID)
	}
	return &model.PromoStats{PromoID: promoID}, nil
}

func (m *mockPromoUC) Feed(ctx context.Context, userID string, f repository.FeedFilter) ([]*model.Promo, int, error) {
	if m.FeedFunc != nil {
		return m.FeedFunc(ctx, userID, f)
	}
	return nil, 0, nil
}

func (m *mockPromoUC) Detail(ctx context.Context, userID, promoID string) (*usecase.PromoDetail, error) {
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, userID, promoID)
	}
	return nil, domain.ErrNotFound
}

type mockEngagementUC struct {
	LikeFunc          func(ctx context.Context, userID, promoID string) error
	UnlikeFunc        func(ctx context.Context, userID, promoID string) error
	AddCommentFunc    func(ctx context.Context, userID, promoID, content string) (*model.Comment, error)
	GetCommentFunc    func(ctx context.Context, promoID, commentID string) (*model.Comment, error)
	ListCommentsFunc  func(ctx context.Context, promoID string) ([]*model.Comment, error)
	EditCommentFunc   func(ctx context.Context, userID, promoID, commentID, content string) (*model.Comment, error)
	DeleteCommentFunc func(ctx context.Context, userID, promoID, commentID string) error
}

var _ usecase.EngagementUseCase = (*mockEngagementUC)(nil)

func (m *mockEngagementUC) Like(ctx context.Context, userID, promoID string) error {
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, userID, promoID)
	}
	return nil
}

func (m *mockEngagementUC) Unlike(ctx context.Context, userID, promoID string) error {
	if m.UnlikeFunc != nil {
		return m.UnlikeFunc(ctx, userID, promoID)
	}
	return nil
}

func (m *mockEngagementUC) AddComment(ctx context.Context, userID, promoID, content string) (*model.Comment, error) {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, userID, promoID, content)
	}
	return &model.Comment{ID: "comment-1", PromoID: promoID, UserID: userID, Content: content}, nil
}

func (m *mockEngagementUC) GetComment(ctx context.Context, promoID, commentID string) (*model.Comment, error) {
	if m.GetCommentFunc != nil {
		return m.GetCommentFunc(ctx, promoID, commentID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockEngagementUC) ListComments(ctx context.Context, promoID string) ([]*model.Comment, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, promoID)
	}
	return nil, nil
}

func (m *mockEngagementUC) EditComment(ctx context.Context, userID, promoID, commentID, content string) (*model.Comment, error) {
	if m.EditCommentFunc != nil {
		return m.EditCommentFunc(ctx, userID, promoID, commentID, content)
	}
	return nil, domain.ErrNotFound
}

func (m *mockEngagementUC) DeleteComment(ctx context.Context, userID, promoID, commentID string) error {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, userID, promoID, commentID)
	}
	return nil
}

type mockRedemptionUC struct {
	ActivateFunc func(ctx context.Context, userID, promoID string) (string, error)
	HistoryFunc  func(ctx context.Context, userID string) ([]*model.ActivationRecord, error)
}

var _ usecase.RedemptionUseCase = (*mockRedemptionUC)(nil)

func (m *mockRedemptionUC) Activate(ctx context.Context, userID, promoID string) (string, error) {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, userID, promoID)
	}
	return "CODE", nil
}

func (m *mockRedemptionUC) History(ctx context.Context, userID string) ([]*model.ActivationRecord, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID)
	}
	return nil, nil
}

// memRedis is an in-memory counter store for rate limiter tests. Expiry is
// ignored; tests stay inside one window.
type memRedis struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemRedis() *memRedis { return &memRedis{counts: make(map[string]int64)} }

func (m *memRedis) Ping(ctx context.Context) error { return nil }

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	return nil
}

func (m *memRedis) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (m *memRedis) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memRedis) Expire(ctx context.Context, key string, _ time.Duration) error { return nil }

func (m *memRedis) Del(ctx context.Context, keys ...string) error { return nil }

func (m *memRedis) Close() error { return nil }
