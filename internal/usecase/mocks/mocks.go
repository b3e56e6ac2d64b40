package mocks

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.LoanProduct

	CreateFunc  func(ctx context.Context, product *domain.LoanProduct) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.LoanProduct, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.LoanProduct, error)
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]*domain.LoanProduct),
	}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.LoanProduct) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.LoanProduct, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.LoanProduct, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var products []*domain.LoanProduct
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

// MockApplicationRepository is a mock implementation of ApplicationRepository.
type MockApplicationRepository struct {
	mu           sync.RWMutex
	applications map[string]*domain.LoanApplication

	CreateFunc           func(ctx context.Context, app *domain.LoanApplication) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.LoanApplication, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanApplication, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, app *domain.LoanApplication) error
}

func NewMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{
		applications: make(map[string]*domain.LoanApplication),
	}
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, app)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[app.ID] = app
	return nil
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id string) (*domain.LoanApplication, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if app, ok := m.applications[id]; ok {
		return app, nil
	}
	return nil, domain.ErrApplicationNotFound
}

func (m *MockApplicationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanApplication, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockApplicationRepository) Update(ctx context.Context, tx usecase.Transaction, app *domain.LoanApplication) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, app)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[app.ID] = app
	return nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LoanAccount

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.LoanAccount, error)
	GetByIDForUpdateFunc   func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanAccount, error)
	GetByApplicationIDFunc func(ctx context.Context, applicationID string) (*domain.LoanAccount, error)
	UpdateFunc             func(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error
	ListActiveIDsFunc      func(ctx context.Context) ([]string, error)
	ListFunc               func(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.LoanAccount),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.LoanAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanAccount, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanAccount, error) {
	if m.GetByApplicationIDFunc != nil {
		return m.GetByApplicationIDFunc(ctx, applicationID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.ApplicationID == applicationID {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	if m.ListActiveIDsFunc != nil {
		return m.ListActiveIDsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, acc := range m.accounts {
		if acc.Status == domain.AccountActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.LoanAccount
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockScheduleRepository is a mock implementation of ScheduleRepository.
// Entries are keyed by account and ordered by index.
type MockScheduleRepository struct {
	mu      sync.RWMutex
	entries map[string][]*domain.ScheduleEntry

	CreateBatchFunc            func(ctx context.Context, tx usecase.Transaction, entries []*domain.ScheduleEntry) error
	ListByAccountFunc          func(ctx context.Context, accountID string) ([]*domain.ScheduleEntry, error)
	ListByAccountForUpdateFunc func(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.ScheduleEntry, error)
	UpdateFunc                 func(ctx context.Context, tx usecase.Transaction, entry *domain.ScheduleEntry) error
}

func NewMockScheduleRepository() *MockScheduleRepository {
	return &MockScheduleRepository{
		entries: make(map[string][]*domain.ScheduleEntry),
	}
}

func (m *MockScheduleRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.ScheduleEntry) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, entries)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.AccountID] = append(m.entries[e.AccountID], e)
	}
	return nil
}

func (m *MockScheduleRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.ScheduleEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := append([]*domain.ScheduleEntry(nil), m.entries[accountID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	return entries, nil
}

func (m *MockScheduleRepository) ListByAccountForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.ScheduleEntry, error) {
	if m.ListByAccountForUpdateFunc != nil {
		return m.ListByAccountForUpdateFunc(ctx, tx, accountID)
	}
	return m.ListByAccount(ctx, accountID)
}

func (m *MockScheduleRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.ScheduleEntry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries[entry.AccountID] {
		if e.Index == entry.Index {
			m.entries[entry.AccountID][i] = entry
			return nil
		}
	}
	return domain.ErrScheduleEntryNotFound
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.RepaymentTransaction

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, txn *domain.RepaymentTransaction) error
	GetByNoFunc             func(ctx context.Context, transactionNo string) (*domain.RepaymentTransaction, error)
	ListByAccountFunc       func(ctx context.Context, accountID string, limit, offset int) ([]*domain.RepaymentTransaction, error)
	SumPrincipalAppliedFunc func(ctx context.Context, accountID string) (int64, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.RepaymentTransaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.RepaymentTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.transactions[txn.TransactionNo]; ok && existing.Status == domain.TransactionSuccess {
		return domain.ErrDuplicateTransaction
	}
	m.transactions[txn.TransactionNo] = txn
	return nil
}

func (m *MockTransactionRepository) GetByNo(ctx context.Context, transactionNo string) (*domain.RepaymentTransaction, error) {
	if m.GetByNoFunc != nil {
		return m.GetByNoFunc(ctx, transactionNo)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.transactions[transactionNo]; ok {
		return txn, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.RepaymentTransaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.RepaymentTransaction
	for _, txn := range m.transactions {
		if txn.AccountID == accountID {
			txns = append(txns, txn)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.Before(txns[j].CreatedAt) })
	return txns, nil
}

func (m *MockTransactionRepository) SumPrincipalApplied(ctx context.Context, accountID string) (int64, error) {
	if m.SumPrincipalAppliedFunc != nil {
		return m.SumPrincipalAppliedFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, txn := range m.transactions {
		if txn.AccountID == accountID && txn.Status == domain.TransactionSuccess {
			sum += txn.PrincipalApplied
		}
	}
	return sum, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns a snapshot of everything written to the outbox.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	CommitCalled   bool
	RollbackCalled bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	m.CommitCalled = true
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.RollbackCalled = true
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator producing
// sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu    sync.RWMutex
	items map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		items: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	return "", errCacheMiss
}

var errCacheMiss = errors.New("cache miss")

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu    sync.Mutex
	items map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		items: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[key]; ok {
		return true, existing, nil
	}
	m.items[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = response
	return nil
}
