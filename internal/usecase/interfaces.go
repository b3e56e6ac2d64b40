package usecase

import (
	"context"
	"time"

	"github.com/iho/loanledger/internal/domain"
)

// ProductRepository defines data access for loan products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.LoanProduct) error
	GetByID(ctx context.Context, id string) (*domain.LoanProduct, error)
	List(ctx context.Context, limit, offset int) ([]*domain.LoanProduct, error)
}

// ApplicationRepository defines data access for loan applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.LoanApplication) error
	GetByID(ctx context.Context, id string) (*domain.LoanApplication, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LoanApplication, error)
	Update(ctx context.Context, tx Transaction, app *domain.LoanApplication) error
}

// AccountRepository defines data access for loan accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.LoanAccount) error
	GetByID(ctx context.Context, id string) (*domain.LoanAccount, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LoanAccount, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanAccount, error)
	Update(ctx context.Context, tx Transaction, account *domain.LoanAccount) error
	ListActiveIDs(ctx context.Context) ([]string, error)
	List(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error)
}

// ScheduleRepository defines data access for repayment schedule entries.
type ScheduleRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, entries []*domain.ScheduleEntry) error
	ListByAccount(ctx context.Context, accountID string) ([]*domain.ScheduleEntry, error)
	ListByAccountForUpdate(ctx context.Context, tx Transaction, accountID string) ([]*domain.ScheduleEntry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.ScheduleEntry) error
}

// TransactionRepository defines data access for repayment transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.RepaymentTransaction) error
	GetByNo(ctx context.Context, transactionNo string) (*domain.RepaymentTransaction, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.RepaymentTransaction, error)
	SumPrincipalApplied(ctx context.Context, accountID string) (int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// LedgerRepository defines ledger-wide consistency queries.
type LedgerRepository interface {
	// CheckConsistency compares every account's recorded balance against
	// principal minus the sum of successfully applied principal.
	CheckConsistency(ctx context.Context) (mismatched int, err error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// TxRetrier retries an operation on transient database failures such as
// deadlocks and serialization conflicts.
type TxRetrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
