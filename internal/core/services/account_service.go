package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financiera/banking-backend/internal/apperrors"
	"github.com/financiera/banking-backend/internal/core/domain"
	portsrepo "github.com/financiera/banking-backend/internal/core/ports/repositories"
	portssvc "github.com/financiera/banking-backend/internal/core/ports/services"
	"github.com/financiera/banking-backend/internal/dto"
	"github.com/financiera/banking-backend/internal/middleware"
	"github.com/financiera/banking-backend/internal/utils/numbering"
)

// accountService manages the account lifecycle: creation, status changes and
// deletion. Balance mutations are the ledger service's job; this service
// never touches a balance.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	allocator   *numbering.Allocator
	customers   portssvc.CustomerVerifier
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, allocator *numbering.Allocator, customers portssvc.CustomerVerifier) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		allocator:   allocator,
		customers:   customers,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount opens a new account for an existing customer. The account
// starts active with a zero balance and a freshly allocated number.
// Implements portssvc.AccountSvcFacade
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	exists, err := s.customers.CustomerExists(ctx, req.OwnerID)
	if err != nil {
		logger.Error("Customer verification failed", slog.String("error", err.Error()), slog.String("owner_id", req.OwnerID))
		return nil, fmt.Errorf("failed to verify customer %s: %w", req.OwnerID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, req.OwnerID)
	}

	accountNumber, err := s.allocator.Allocate(ctx, req.AccountType, s.accountRepo)
	if err != nil {
		logger.Error("Account number allocation failed", slog.String("error", err.Error()), slog.String("account_type", string(req.AccountType)))
		return nil, err
	}

	gmfExempt := false
	if req.GMFExempt != nil {
		gmfExempt = *req.GMFExempt
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		OwnerID:       req.OwnerID,
		AccountType:   req.AccountType,
		AccountNumber: accountNumber,
		Status:        domain.StatusActive,
		Balance:       decimal.Zero,
		GMFExempt:     gmfExempt,
		Version:       1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, err
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber),
		slog.String("owner_id", account.OwnerID))
	return &account, nil
}

// GetAccountByID retrieves a specific account.
// Implements portssvc.AccountSvcFacade
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByNumber retrieves an account by its account number.
// Implements portssvc.AccountSvcFacade
func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by number", slog.String("error", err.Error()), slog.String("account_number", accountNumber))
		}
		return nil, err
	}
	return account, nil
}

// ListAccountsByOwner retrieves all accounts of one customer.
// Implements portssvc.AccountSvcFacade
func (s *accountService) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	exists, err := s.customers.CustomerExists(ctx, ownerID)
	if err != nil {
		logger.Error("Customer verification failed", slog.String("error", err.Error()), slog.String("owner_id", ownerID))
		return nil, fmt.Errorf("failed to verify customer %s: %w", ownerID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, ownerID)
	}

	accounts, err := s.accountRepo.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		logger.Error("Failed to list accounts by owner", slog.String("error", err.Error()), slog.String("owner_id", ownerID))
		return nil, fmt.Errorf("failed to list accounts for owner %s: %w", ownerID, err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts.
// Implements portssvc.AccountSvcFacade
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// CountAccountsByOwner returns the number of non-cancelled accounts a
// customer holds. The customer collaborator must see zero here before it
// deletes a customer record; the ledger never cascades.
// Implements portssvc.AccountSvcFacade
func (s *accountService) CountAccountsByOwner(ctx context.Context, ownerID string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	count, err := s.accountRepo.CountAccountsByOwner(ctx, ownerID)
	if err != nil {
		logger.Error("Failed to count accounts by owner", slog.String("error", err.Error()), slog.String("owner_id", ownerID))
		return 0, fmt.Errorf("failed to count accounts for owner %s: %w", ownerID, err)
	}
	return count, nil
}

// SetAccountStatus applies a lifecycle transition. Active and Inactive swap
// freely; Cancelled requires a zero balance and is terminal. The write is
// guarded by the version the validation read observed, so a deposit or
// another transition committed in between surfaces as a conflict and the
// transition is re-validated against the fresh state.
// Implements portssvc.AccountSvcFacade
func (s *accountService) SetAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var account *domain.Account
	err := withConflictRetry(ctx, func() error {
		found, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				logger.Error("Failed to find account for status change", slog.String("error", err.Error()), slog.String("account_id", accountID))
			}
			return err
		}

		if !found.CanTransitionTo(status) {
			if status == domain.StatusCancelled && !found.Balance.IsZero() {
				return fmt.Errorf("%w: balance must be zero, current balance is %s", apperrors.ErrCannotCancel, found.Balance.String())
			}
			return fmt.Errorf("%w: account %s is cancelled and cannot change status", apperrors.ErrInvalidOperation, found.AccountNumber)
		}

		now := time.Now().UTC()
		if err := s.accountRepo.UpdateAccountStatus(ctx, accountID, status, found.Version, now); err != nil {
			if !errors.Is(err, apperrors.ErrConflict) {
				logger.Error("Failed to update account status", slog.String("error", err.Error()), slog.String("account_id", accountID))
			}
			return err
		}

		found.Status = status
		found.Version++
		found.LastUpdatedAt = now
		account = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Account status updated",
		slog.String("account_id", accountID),
		slog.String("status", string(status)))
	return account, nil
}

// DeleteAccount removes an account. Only zero-balance accounts may be
// removed; the transaction history stays in the ledger.
// Implements portssvc.AccountSvcFacade
func (s *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account for deletion", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	if !account.Balance.IsZero() {
		return fmt.Errorf("%w: cannot delete account with balance %s", apperrors.ErrInvalidOperation, account.Balance.String())
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		logger.Error("Failed to delete account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return err
	}

	logger.Info("Account deleted", slog.String("account_id", accountID))
	return nil
}
