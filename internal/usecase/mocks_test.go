package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockTxManager emulates the transactional path for in-memory repos. The
// mutex stands in for the per-promo advisory lock: callbacks run one at a
// time, which is the serialization guarantee the real manager provides for
// attempts on the same promo.
type mockTxManager struct {
	mu sync.Mutex
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

// memPromoRepo is a small in-memory implementation used by unit tests.
type memPromoRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Promo
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{store: make(map[string]*model.Promo)}
}

func copyPromo(p *model.Promo) *model.Promo {
	cp := *p
	cp.CodePool = append([]string(nil), p.CodePool...)
	return &cp
}

func (m *memPromoRepo) Save(ctx context.Context, _ repository.Tx, p *model.Promo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := copyPromo(p)
	// Updates never touch the pool; it shrinks only through PopCode.
	if prev, ok := m.store[p.ID]; ok {
		cp.CodePool = append([]string(nil), prev.CodePool...)
	}
	m.store[p.ID] = cp
	return nil
}

func (m *memPromoRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Promo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyPromo(p), nil
}

func (m *memPromoRepo) ListByCompany(ctx context.Context, _ repository.Tx, companyID string, f repository.PromoListFilter) ([]*model.Promo, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Promo
	for _, p := range m.store {
		if p.CompanyID == companyID {
			out = append(out, copyPromo(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if f.Offset > len(out) {
		return nil, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *memPromoRepo) Feed(ctx context.Context, _ repository.Tx, f repository.FeedFilter) ([]*model.Promo, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Promo
	for _, p := range m.store {
		if !p.Active {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Description), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, copyPromo(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *memPromoRepo) Lock(ctx context.Context, _ repository.Tx, promoID string) error {
	// Serialization is provided by mockTxManager.
	return nil
}

func (m *memPromoRepo) PopCode(ctx context.Context, _ repository.Tx, promoID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[promoID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if len(p.CodePool) == 0 {
		return "", domain.ErrCapacityExceeded
	}
	code := p.CodePool[0]
	p.CodePool = p.CodePool[1:]
	return code, nil
}

// memActivationRepo is an in-memory append-only ledger.
type memActivationRepo struct {
	mu      sync.RWMutex
	records []*model.ActivationRecord
}

func newMemActivationRepo() *memActivationRepo {
	return &memActivationRepo{}
}

func (m *memActivationRepo) Append(ctx context.Context, _ repository.Tx, rec *model.ActivationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

func (m *memActivationRepo) CountByPromo(ctx context.Context, _ repository.Tx, promoID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.records {
		if r.PromoID == promoID {
			n++
		}
	}
	return n, nil
}

func (m *memActivationRepo) HistoryByUser(ctx context.Context, _ repository.Tx, userID string) ([]*model.ActivationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.ActivationRecord
	for _, r := range m.records {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ActivatedAt.Equal(out[j].ActivatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ActivatedAt.After(out[j].ActivatedAt)
	})
	return out, nil
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.store {
		if other.Email == u.Email && other.ID != u.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, _ repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memCompanyRepo is a small in-memory implementation used by unit tests.
type memCompanyRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Company
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{store: make(map[string]*model.Company)}
}

func (m *memCompanyRepo) Save(ctx context.Context, _ repository.Tx, c *model.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.store {
		if other.Email == c.Email && other.ID != c.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCompanyRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCompanyRepo) FindByEmail(ctx context.Context, _ repository.Tx, email string) (*model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memCommentRepo is a small in-memory implementation used by unit tests.
type memCommentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{store: make(map[string]*model.Comment)}
}

func (m *memCommentRepo) Save(ctx context.Context, _ repository.Tx, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCommentRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCommentRepo) ListByPromo(ctx context.Context, _ repository.Tx, promoID string) ([]*model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Comment
	for _, c := range m.store {
		if c.PromoID == promoID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memCommentRepo) CountByPromo(ctx context.Context, _ repository.Tx, promoID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.store {
		if c.PromoID == promoID {
			n++
		}
	}
	return n, nil
}

func (m *memCommentRepo) Delete(ctx context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// memLikeRepo is a small in-memory implementation used by unit tests.
type memLikeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Like // key: promoID + "/" + userID
}

func newMemLikeRepo() *memLikeRepo {
	return &memLikeRepo{store: make(map[string]*model.Like)}
}

func likeKey(promoID, userID string) string { return promoID + "/" + userID }

func (m *memLikeRepo) Save(ctx context.Context, _ repository.Tx, l *model.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := likeKey(l.PromoID, l.UserID)
	if _, ok := m.store[k]; ok {
		return nil
	}
	cp := *l
	m.store[k] = &cp
	return nil
}

func (m *memLikeRepo) Find(ctx context.Context, _ repository.Tx, promoID, userID string) (*model.Like, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.store[likeKey(promoID, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLikeRepo) CountByPromo(ctx context.Context, _ repository.Tx, promoID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.store {
		if l.PromoID == promoID {
			n++
		}
	}
	return n, nil
}

func (m *memLikeRepo) Delete(ctx context.Context, _ repository.Tx, promoID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := likeKey(promoID, userID)
	if _, ok := m.store[k]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, k)
	return nil
}

// fakeFraudChecker is a scripted FraudChecker with a call counter.
type fakeFraudChecker struct {
	ok    bool
	err   error
	calls int32
}

func (f *fakeFraudChecker) Verdict(ctx context.Context, userEmail, promoID string) (bool, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return false, f.err
	}
	return f.ok, nil
}

func (f *fakeFraudChecker) callCount() int32 { return atomic.LoadInt32(&f.calls) }
