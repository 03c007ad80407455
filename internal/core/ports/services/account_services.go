package services

import (
	"context"

	"github.com/financiera/banking-backend/internal/core/domain"
	"github.com/financiera/banking-backend/internal/dto"
)

// AccountReaderSvc defines read operations for account data.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its unique account number.
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// ListAccountsByOwner retrieves all accounts belonging to a customer.
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// CountAccountsByOwner returns the number of non-cancelled accounts a customer holds.
	CountAccountsByOwner(ctx context.Context, ownerID string) (int64, error)
}

// AccountWriterSvc defines write operations for account data.
type AccountWriterSvc interface {
	// CreateAccount opens a new account for an existing customer.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// SetAccountStatus applies a lifecycle transition to an account.
	SetAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error)

	// DeleteAccount removes a zero-balance account.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
