package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/adapter"
	"qrdine-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memTxManager serializes "transactions" with a mutex, which models the
// store's guarantee that two transactions on the same key cannot interleave.
type memTxManager struct {
	mu sync.Mutex
}

func newMemTxManager() *memTxManager { return &memTxManager{} }

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
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

func (m *memUserRepo) Save(ctx context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) MarkSetupFeePaid(ctx context.Context, _ repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.SetupFeePaid = true
	return nil
}

type memPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.Plan)}
}

func (m *memPlanRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Plan, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPlanRepo) Save(ctx context.Context, _ repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

type memCouponRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Coupon
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{store: make(map[string]*model.Coupon)}
}

func (m *memCouponRepo) FindByCode(ctx context.Context, _ repository.Tx, code string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCouponRepo) Save(ctx context.Context, _ repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.Code] = &cp
	return nil
}

type memPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *memPaymentRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) Create(ctx context.Context, _ repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.store[p.ID]; exists {
		return domain.ErrOperationFailed
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPaymentRepo) SumByPeriod(ctx context.Context, _ repository.Tx, period string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	for _, p := range m.store {
		sum += p.Amount
	}
	return sum, nil
}

func (m *memPaymentRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

type memSubscriptionRepo struct {
	mu      sync.RWMutex
	subs    map[string]*model.Subscription
	history []*model.HistoryEntry
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{subs: make(map[string]*model.Subscription)}
}

func (m *memSubscriptionRepo) FindByUser(ctx context.Context, _ repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) Upsert(ctx context.Context, _ repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs[s.UserID] = &cp
	return nil
}

func (m *memSubscriptionRepo) AppendHistory(ctx context.Context, _ repository.Tx, e *model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.history = append(m.history, &cp)
	return nil
}

func (m *memSubscriptionRepo) ListHistory(ctx context.Context, _ repository.Tx, userID string, limit int) ([]*model.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.HistoryEntry
	for _, e := range m.history {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubscriptionRepo) historyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history)
}

type memBillingConfigRepo struct {
	setupFee float64
}

func (m *memBillingConfigRepo) Get(ctx context.Context, _ repository.Tx) (*repository.BillingConfig, error) {
	return &repository.BillingConfig{SetupFee: m.setupFee}, nil
}

// fakeGateway records the last created order and hands out deterministic ids.
type fakeGateway struct {
	mu        sync.Mutex
	orders    map[string]*adapter.GatewayOrder
	payments  map[string]*adapter.GatewayPayment
	nextOrder int
	createErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		orders:   make(map[string]*adapter.GatewayOrder),
		payments: make(map[string]*adapter.GatewayPayment),
	}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes model.OrderNotes) (*adapter.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextOrder++
	o := &adapter.GatewayOrder{
		ID:          fmt.Sprintf("order_%06d", g.nextOrder),
		AmountPaise: amountPaise,
		Currency:    currency,
		Receipt:     receipt,
		Status:      "created",
		Notes:       notes,
	}
	g.orders[o.ID] = o
	return o, nil
}

func (g *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*adapter.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[orderID]
	if !ok {
		return nil, domain.ErrUpstream
	}
	cp := *o
	return &cp, nil
}

func (g *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*adapter.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.payments[paymentID]
	if !ok {
		return nil, domain.ErrUpstream
	}
	cp := *p
	return &cp, nil
}

// testCoupon builds a coupon valid for the next 30 days.
func testCoupon(code string, typ model.CouponType, value float64) *model.Coupon {
	now := time.Now()
	return &model.Coupon{
		Code:      code,
		Type:      typ,
		Value:     value,
		IsActive:  true,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(30 * 24 * time.Hour),
		MaxUsage:  100,
	}
}
