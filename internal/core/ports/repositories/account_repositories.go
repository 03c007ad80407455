package repositories

import (
	"context"
	"time"

	"github.com/financiera/banking-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its unique account number.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// ExistsByNumber reports whether any account already carries the given number.
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)

	// ListAccountsByOwner retrieves all accounts belonging to a customer.
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// CountAccountsByOwner returns the number of non-cancelled accounts a customer holds.
	// The customer collaborator checks this before deleting a customer record.
	CountAccountsByOwner(ctx context.Context, ownerID string) (int64, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountStatus sets the account status, guarded by the version the
	// caller observed. Returns apperrors.ErrConflict when the version no
	// longer matches.
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, expectedVersion int64, now time.Time) error

	// DeleteAccount removes an account row. The service only calls this for zero-balance accounts.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountLockingSupport defines the primitives the ledger service composes
// into its atomic posting protocol. All methods must be called within a
// transaction.
type AccountLockingSupport interface {
	// FindAccountsForUpdate selects the given accounts in ascending account_id
	// order and locks the rows for update.
	FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalanceInTx writes a new balance for an account, guarded by
	// the version the caller observed. Returns apperrors.ErrConflict when the
	// version no longer matches.
	UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, expectedVersion int64, newBalance decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountLockingSupport
}
