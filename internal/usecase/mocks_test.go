//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func recKey(kind model.OperationKind, ref model.TransactionReference) string {
	return string(kind) + ":" + ref.String()
}

// MockSettlementRepo is an in-memory idempotency store.
type MockSettlementRepo struct {
	mu          sync.Mutex
	records     map[string]bool
	HasRunFunc  func(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (bool, error)
	MarkRunFunc func(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (bool, error)
}

func NewMockSettlementRepo() *MockSettlementRepo {
	return &MockSettlementRepo{records: make(map[string]bool)}
}

func (m *MockSettlementRepo) HasRun(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (bool, error) {
	if m.HasRunFunc != nil {
		return m.HasRunFunc(ctx, kind, ref)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[recKey(kind, ref)], nil
}

func (m *MockSettlementRepo) MarkRun(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (bool, error) {
	if m.MarkRunFunc != nil {
		return m.MarkRunFunc(ctx, kind, ref)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recKey(kind, ref)
	if m.records[k] {
		return false, nil
	}
	m.records[k] = true
	return true, nil
}

func (m *MockSettlementRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// MockProductRepo is an in-memory product catalog.
type MockProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func NewMockProductRepo() *MockProductRepo {
	return &MockProductRepo{products: make(map[string]*model.Product)}
}

func (m *MockProductRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductRepo) Save(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.Code] = &cp
	return nil
}

// MockProfileCache is an in-memory agent profile cache.
type MockProfileCache struct {
	mu       sync.Mutex
	profiles map[string]*model.AgentProfile
	SetCalls int
}

func NewMockProfileCache() *MockProfileCache {
	return &MockProfileCache{profiles: make(map[string]*model.AgentProfile)}
}

func (m *MockProfileCache) Get(ctx context.Context, userID string) (*model.AgentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileCache) Set(ctx context.Context, profile *model.AgentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *profile
	m.profiles[profile.UserID] = &cp
	m.SetCalls++
	return nil
}

func (m *MockProfileCache) Invalidate(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	return nil
}

// MockLocker grants every lock unless told otherwise.
type MockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	return "token", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error { return nil }

// MockAccountAPI counts every remote mutating call.
type MockAccountAPI struct {
	mu                sync.Mutex
	CreditCalls       int
	DebitCalls        int
	PointsCalls       int
	CreateAgentCalls  int
	FetchProfileCalls int
	LastPoints        int

	CreditWalletFunc func(ctx context.Context, userID string, amount int64, ref model.TransactionReference, method adapter.CreditMethod) error
	DebitWalletFunc  func(ctx context.Context, userID string, amount int64, ref model.TransactionReference) error
	GrantPointsFunc  func(ctx context.Context, userID string, points int, ref model.TransactionReference) error
	CreateAgentFunc  func(ctx context.Context, profile model.AgentProfile) error
	FetchProfileFunc func(ctx context.Context, userID string) (*model.AgentProfile, error)
}

func (m *MockAccountAPI) CreditWallet(ctx context.Context, userID string, amount int64, ref model.TransactionReference, method adapter.CreditMethod) error {
	m.mu.Lock()
	m.CreditCalls++
	m.mu.Unlock()
	if m.CreditWalletFunc != nil {
		return m.CreditWalletFunc(ctx, userID, amount, ref, method)
	}
	return nil
}

func (m *MockAccountAPI) DebitWallet(ctx context.Context, userID string, amount int64, ref model.TransactionReference) error {
	m.mu.Lock()
	m.DebitCalls++
	m.mu.Unlock()
	if m.DebitWalletFunc != nil {
		return m.DebitWalletFunc(ctx, userID, amount, ref)
	}
	return nil
}

func (m *MockAccountAPI) GrantPoints(ctx context.Context, userID string, points int, ref model.TransactionReference) error {
	m.mu.Lock()
	m.PointsCalls++
	m.LastPoints = points
	m.mu.Unlock()
	if m.GrantPointsFunc != nil {
		return m.GrantPointsFunc(ctx, userID, points, ref)
	}
	return nil
}

func (m *MockAccountAPI) CreateAgent(ctx context.Context, profile model.AgentProfile) error {
	m.mu.Lock()
	m.CreateAgentCalls++
	m.mu.Unlock()
	if m.CreateAgentFunc != nil {
		return m.CreateAgentFunc(ctx, profile)
	}
	return nil
}

func (m *MockAccountAPI) FetchProfile(ctx context.Context, userID string) (*model.AgentProfile, error) {
	m.mu.Lock()
	m.FetchProfileCalls++
	m.mu.Unlock()
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, userID)
	}
	return &model.AgentProfile{UserID: userID, Tier: model.AgentTierStandard}, nil
}

func (m *MockAccountAPI) Credits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreditCalls
}

// MockStatusAPI plays back a scripted sequence of status results; once the
// script is exhausted the last entry repeats.
type MockStatusAPI struct {
	mu              sync.Mutex
	Script          []adapter.StatusResult
	Errs            []error
	calls           int
	CheckStatusFunc func(ctx context.Context, ref model.TransactionReference, customerRef, productCode string) (adapter.StatusResult, error)
}

func (m *MockStatusAPI) CheckStatus(ctx context.Context, ref model.TransactionReference, customerRef, productCode string) (adapter.StatusResult, error) {
	if m.CheckStatusFunc != nil {
		return m.CheckStatusFunc(ctx, ref, customerRef, productCode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	if len(m.Errs) > 0 {
		if i >= len(m.Errs) {
			i = len(m.Errs) - 1
		}
		if err := m.Errs[i]; err != nil {
			return adapter.StatusResult{}, err
		}
	}
	if len(m.Script) == 0 {
		return adapter.StatusResult{Status: model.GatewayStatusUnknown}, nil
	}
	j := i
	if j >= len(m.Script) {
		j = len(m.Script) - 1
	}
	return m.Script[j], nil
}

func (m *MockStatusAPI) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockOrderAPI records submissions and status updates.
type MockOrderAPI struct {
	mu            sync.Mutex
	SubmitCalls   int
	UpdatedStatus []model.OrderStatus

	SubmitOrderFunc       func(ctx context.Context, order model.PendingOrder) (adapter.OrderResult, error)
	UpdateOrderStatusFunc func(ctx context.Context, ref model.TransactionReference, status model.OrderStatus, message, serialNumber string, price int64) error
}

func (m *MockOrderAPI) SubmitOrder(ctx context.Context, order model.PendingOrder) (adapter.OrderResult, error) {
	m.mu.Lock()
	m.SubmitCalls++
	m.mu.Unlock()
	if m.SubmitOrderFunc != nil {
		return m.SubmitOrderFunc(ctx, order)
	}
	return adapter.OrderResult{Status: model.SettlementPending}, nil
}

func (m *MockOrderAPI) UpdateOrderStatus(ctx context.Context, ref model.TransactionReference, status model.OrderStatus, message, serialNumber string, price int64) error {
	m.mu.Lock()
	m.UpdatedStatus = append(m.UpdatedStatus, status)
	m.mu.Unlock()
	if m.UpdateOrderStatusFunc != nil {
		return m.UpdateOrderStatusFunc(ctx, ref, status, message, serialNumber, price)
	}
	return nil
}

func (m *MockOrderAPI) Updates() []model.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.OrderStatus, len(m.UpdatedStatus))
	copy(out, m.UpdatedStatus)
	return out
}

// MockPinAPI simulates the remote PIN service.
type MockPinAPI struct {
	mu          sync.Mutex
	HasPin      bool
	DetectCalls int
	CreateCalls int
	VerifyCalls int

	DetectFunc func(ctx context.Context, userID string) (bool, error)
	CreateFunc func(ctx context.Context, userID, pin string) error
	VerifyFunc func(ctx context.Context, userID, pin string) (adapter.PinVerifyResult, error)
}

func (m *MockPinAPI) Detect(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	m.DetectCalls++
	m.mu.Unlock()
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, userID)
	}
	return m.HasPin, nil
}

func (m *MockPinAPI) Create(ctx context.Context, userID, pin string) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, pin)
	}
	return nil
}

func (m *MockPinAPI) Verify(ctx context.Context, userID, pin string) (adapter.PinVerifyResult, error) {
	m.mu.Lock()
	m.VerifyCalls++
	m.mu.Unlock()
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, userID, pin)
	}
	return adapter.PinVerifyResult{OK: true, AttemptsRemaining: -1}, nil
}

// MockPendingTxRepo is an in-memory journal.
type MockPendingTxRepo struct {
	mu   sync.Mutex
	rows map[model.TransactionReference]*model.PendingTransaction
}

func NewMockPendingTxRepo() *MockPendingTxRepo {
	return &MockPendingTxRepo{rows: make(map[model.TransactionReference]*model.PendingTransaction)}
}

func (m *MockPendingTxRepo) Upsert(ctx context.Context, tx *model.PendingTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.rows[tx.Reference] = &cp
	return nil
}

func (m *MockPendingTxRepo) FindByReference(ctx context.Context, ref model.TransactionReference) (*model.PendingTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *MockPendingTxRepo) Resolve(ctx context.Context, ref model.TransactionReference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[ref]
	if !ok {
		return domain.ErrNotFound
	}
	row.Resolved = true
	row.UpdatedAt = time.Now()
	return nil
}

func (m *MockPendingTxRepo) ListUnresolvedOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.PendingTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PendingTransaction
	for _, row := range m.rows {
		if !row.Resolved && row.UpdatedAt.Before(cutoff) && len(out) < limit {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPendingTxRepo) IsResolved(ref model.TransactionReference) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[ref]
	return ok && row.Resolved
}

// MockPendingOrderRepo is an in-memory pending-order store.
type MockPendingOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.PendingOrder
}

func NewMockPendingOrderRepo() *MockPendingOrderRepo {
	return &MockPendingOrderRepo{orders: make(map[string]*model.PendingOrder)}
}

func (m *MockPendingOrderRepo) Set(ctx context.Context, sessionID string, order *model.PendingOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[sessionID] = &cp
	return nil
}

func (m *MockPendingOrderRepo) Get(ctx context.Context, sessionID string) (*model.PendingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockPendingOrderRepo) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, sessionID)
	return nil
}

func (m *MockPendingOrderRepo) Has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.orders[sessionID]
	return ok
}
