// Hand-written in-memory fakes for multi-step scenario tests where
// recording individual expectations gets unwieldy. Generated gomock
// mocks live in mock_interfaces.go.

package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// FakeTransaction is a no-op transaction.
type FakeTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *FakeTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *FakeTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// FakeTransactionManager hands out MockTransactions.
type FakeTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewFakeTransactionManager() *FakeTransactionManager {
	return &FakeTransactionManager{}
}

func (m *FakeTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &FakeTransaction{}, nil
}

// FakeIDGenerator returns sequential ids unless overridden.
type FakeIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (m *FakeIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}

// FakeAccountRepository is an in-memory AccountRepository.
type FakeAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	GetByIDFunc        func(ctx context.Context, id string) (*domain.Account, error)
	ListByBusinessFunc func(ctx context.Context, businessID string) ([]*domain.Account, error)
}

func NewFakeAccountRepository() *FakeAccountRepository {
	return &FakeAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *FakeAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
}

func (m *FakeAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *FakeAccountRepository) ListByBusiness(ctx context.Context, businessID string) ([]*domain.Account, error) {
	if m.ListByBusinessFunc != nil {
		return m.ListByBusinessFunc(ctx, businessID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if a.BusinessID == businessID {
			out = append(out, a)
		}
	}
	return out, nil
}

// FakeEntryRepository is an in-memory EntryRepository.
type FakeEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	UpdateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	SoftDeleteFunc    func(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error
	RestoreFunc       func(ctx context.Context, tx usecase.Transaction, id string) error
	HardDeleteFunc    func(ctx context.Context, tx usecase.Transaction, id string) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDsFunc      func(ctx context.Context, ids []string) ([]*domain.Entry, error)
	GetByTransferFunc func(ctx context.Context, transferID string) ([]*domain.Entry, error)
	ListByAccountFunc func(ctx context.Context, businessID, accountID string, limit int, includeDeleted bool) ([]*domain.Entry, error)
}

func NewFakeEntryRepository() *FakeEntryRepository {
	return &FakeEntryRepository{entries: make(map[string]*domain.Entry)}
}

func (m *FakeEntryRepository) Seed(entries ...*domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
}

func (m *FakeEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *FakeEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *FakeEntryRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.DeletedAt = &at
	return nil
}

func (m *FakeEntryRepository) Restore(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.DeletedAt = nil
	return nil
}

func (m *FakeEntryRepository) HardDelete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.HardDeleteFunc != nil {
		return m.HardDeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *FakeEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *FakeEntryRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Entry, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *FakeEntryRepository) GetByTransfer(ctx context.Context, transferID string) ([]*domain.Entry, error) {
	if m.GetByTransferFunc != nil {
		return m.GetByTransferFunc(ctx, transferID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range m.entries {
		if e.Transfer != nil && e.Transfer.TransferID == transferID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *FakeEntryRepository) ListByAccount(ctx context.Context, businessID, accountID string, limit int, includeDeleted bool) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, businessID, accountID, limit, includeDeleted)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range m.entries {
		if e.BusinessID != businessID || e.AccountID != accountID {
			continue
		}
		if e.IsDeleted() && !includeDeleted {
			continue
		}
		out = append(out, e)
	}
	domain.SortChronological(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FakeBankTransactionRepository is an in-memory BankTransactionRepository.
type FakeBankTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.BankTransaction

	InsertFunc        func(ctx context.Context, txn *domain.BankTransaction) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.BankTransaction, error)
	GetByIDsFunc      func(ctx context.Context, ids []string) ([]*domain.BankTransaction, error)
	ListByAccountFunc func(ctx context.Context, businessID, accountID string, from, to *time.Time, limit int) ([]*domain.BankTransaction, error)
}

func NewFakeBankTransactionRepository() *FakeBankTransactionRepository {
	return &FakeBankTransactionRepository{txns: make(map[string]*domain.BankTransaction)}
}

func (m *FakeBankTransactionRepository) Seed(txns ...*domain.BankTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range txns {
		m.txns[t.ID] = t
	}
}

func (m *FakeBankTransactionRepository) Insert(ctx context.Context, txn *domain.BankTransaction) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	return nil
}

func (m *FakeBankTransactionRepository) GetByID(ctx context.Context, id string) (*domain.BankTransaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.txns[id]; ok {
		return t, nil
	}
	return nil, domain.ErrBankTransactionNotFound
}

func (m *FakeBankTransactionRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.BankTransaction, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BankTransaction
	for _, id := range ids {
		if t, ok := m.txns[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *FakeBankTransactionRepository) ListByAccount(ctx context.Context, businessID, accountID string, from, to *time.Time, limit int) ([]*domain.BankTransaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, businessID, accountID, from, to, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BankTransaction
	for _, t := range m.txns {
		if t.BusinessID != businessID || t.AccountID != accountID {
			continue
		}
		if from != nil && t.PostedAt.Before(*from) {
			continue
		}
		if to != nil && t.PostedAt.After(*to) {
			continue
		}
		out = append(out, t)
	}
	domain.SortBankTransactions(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FakeMatchGroupRepository is an in-memory MatchGroupRepository.
type FakeMatchGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]*domain.MatchGroup

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, group *domain.MatchGroup) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.MatchGroup, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.MatchGroup, error)
	ListByAccountFunc     func(ctx context.Context, businessID, accountID string, activeOnly bool) ([]*domain.MatchGroup, error)
	ActiveReferencingFunc func(ctx context.Context, tx usecase.Transaction, bankTxnIDs, entryIDs []string) ([]*domain.MatchGroup, error)
	VoidFunc              func(ctx context.Context, tx usecase.Transaction, id string, at time.Time, by, reason string) error
}

func NewFakeMatchGroupRepository() *FakeMatchGroupRepository {
	return &FakeMatchGroupRepository{groups: make(map[string]*domain.MatchGroup)}
}

func (m *FakeMatchGroupRepository) Seed(groups ...*domain.MatchGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range groups {
		m.groups[g.ID] = g
	}
}

func (m *FakeMatchGroupRepository) Create(ctx context.Context, tx usecase.Transaction, group *domain.MatchGroup) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, group)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.ID] = group
	return nil
}

func (m *FakeMatchGroupRepository) GetByID(ctx context.Context, id string) (*domain.MatchGroup, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGroupNotFound
}

func (m *FakeMatchGroupRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.MatchGroup, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *FakeMatchGroupRepository) ListByAccount(ctx context.Context, businessID, accountID string, activeOnly bool) ([]*domain.MatchGroup, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, businessID, accountID, activeOnly)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.MatchGroup
	for _, g := range m.groups {
		if g.BusinessID != businessID || g.AccountID != accountID {
			continue
		}
		if activeOnly && g.Status != domain.MatchGroupActive {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *FakeMatchGroupRepository) ActiveReferencing(ctx context.Context, tx usecase.Transaction, bankTxnIDs, entryIDs []string) ([]*domain.MatchGroup, error) {
	if m.ActiveReferencingFunc != nil {
		return m.ActiveReferencingFunc(ctx, tx, bankTxnIDs, entryIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.MatchGroup
	for _, g := range m.groups {
		if g.Status != domain.MatchGroupActive {
			continue
		}
		hit := false
		for _, id := range bankTxnIDs {
			if g.ReferencesBankTxn(id) {
				hit = true
			}
		}
		for _, id := range entryIDs {
			if g.ReferencesEntry(id) {
				hit = true
			}
		}
		if hit {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *FakeMatchGroupRepository) Void(ctx context.Context, tx usecase.Transaction, id string, at time.Time, by, reason string) error {
	if m.VoidFunc != nil {
		return m.VoidFunc(ctx, tx, id, at, by, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return domain.ErrGroupNotFound
	}
	g.Status = domain.MatchGroupVoided
	g.VoidedAt = &at
	g.VoidedBy = by
	g.VoidReason = reason
	return nil
}

// FakeCategoryRepository is an in-memory CategoryRepository.
type FakeCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category

	CreateFunc         func(ctx context.Context, category *domain.Category) error
	ListByBusinessFunc func(ctx context.Context, businessID string, includeArchived bool) ([]*domain.Category, error)
}

func NewFakeCategoryRepository() *FakeCategoryRepository {
	return &FakeCategoryRepository{categories: make(map[string]*domain.Category)}
}

func (m *FakeCategoryRepository) Seed(categories ...*domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range categories {
		m.categories[c.ID] = c
	}
}

func (m *FakeCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, category)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[category.ID] = category
	return nil
}

func (m *FakeCategoryRepository) ListByBusiness(ctx context.Context, businessID string, includeArchived bool) ([]*domain.Category, error) {
	if m.ListByBusinessFunc != nil {
		return m.ListByBusinessFunc(ctx, businessID, includeArchived)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Category
	for _, c := range m.categories {
		if c.BusinessID != businessID {
			continue
		}
		if c.Archived && !includeArchived {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FakeHintStore is an in-memory HintStore.
type FakeHintStore struct {
	mu     sync.RWMutex
	scans  map[string]time.Time
	counts map[string]int

	SetLastScanFunc func(ctx context.Context, businessID, accountID string, at time.Time) error
}

func NewFakeHintStore() *FakeHintStore {
	return &FakeHintStore{
		scans:  make(map[string]time.Time),
		counts: make(map[string]int),
	}
}

func (m *FakeHintStore) SetLastScan(ctx context.Context, businessID, accountID string, at time.Time) error {
	if m.SetLastScanFunc != nil {
		return m.SetLastScanFunc(ctx, businessID, accountID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[businessID+"/"+accountID] = at
	return nil
}

func (m *FakeHintStore) GetLastScan(ctx context.Context, businessID, accountID string) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if at, ok := m.scans[businessID+"/"+accountID]; ok {
		return &at, nil
	}
	return nil, nil
}

func (m *FakeHintStore) SetAttentionCount(ctx context.Context, businessID, accountID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[businessID+"/"+accountID] = count
	return nil
}

func (m *FakeHintStore) GetAttentionCount(ctx context.Context, businessID, accountID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[businessID+"/"+accountID], nil
}
