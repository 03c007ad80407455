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
)

// maxConflictRetries bounds the transparent retries of version conflicts
// before ErrConflict surfaces to the caller. Business-rule rejections are
// definitive outcomes and are never retried.
const maxConflictRetries = 3

const (
	defaultDepositDescription    = "Deposit"
	defaultWithdrawalDescription = "Withdrawal"
)

// ledgerService is the engine that moves money. Every mutating operation
// locks the involved account rows, validates against the locked state,
// writes the new balance(s) and appends the ledger record(s) in a single
// database transaction.
type ledgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Deposit credits an active account.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) Deposit(ctx context.Context, req dto.DepositRequest) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = defaultDepositDescription
	}

	var record *domain.TransactionRecord
	err := withConflictRetry(ctx, func() error {
		var postErr error
		record, postErr = s.postSingleLeg(ctx, req.AccountID, req.Amount, domain.Deposit, domain.Credit, description)
		return postErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Deposit posted",
		slog.String("account_id", req.AccountID),
		slog.String("transaction_id", record.TransactionID),
		slog.String("amount", req.Amount.String()))
	return record, nil
}

// Withdraw debits an active account. A savings account is rejected with
// ErrInsufficientFunds when the debit would make its balance negative; a
// checking account may overdraw.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) Withdraw(ctx context.Context, req dto.WithdrawRequest) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = defaultWithdrawalDescription
	}

	var record *domain.TransactionRecord
	err := withConflictRetry(ctx, func() error {
		var postErr error
		record, postErr = s.postSingleLeg(ctx, req.AccountID, req.Amount, domain.Withdrawal, domain.Debit, description)
		return postErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrawal posted",
		slog.String("account_id", req.AccountID),
		slog.String("transaction_id", record.TransactionID),
		slog.String("amount", req.Amount.String()))
	return record, nil
}

// Transfer debits the source and credits the destination atomically. Both
// rows are locked in ascending account_id order regardless of direction so
// two transfers crossing in opposite directions cannot deadlock.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) Transfer(ctx context.Context, req dto.TransferRequest) (*domain.TransactionRecord, *domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.SourceAccountID == req.DestinationAccountID {
		return nil, nil, fmt.Errorf("%w: cannot transfer to the same account", apperrors.ErrInvalidOperation)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, nil, err
	}

	var debitLeg, creditLeg *domain.TransactionRecord
	err := withConflictRetry(ctx, func() error {
		var postErr error
		debitLeg, creditLeg, postErr = s.postTransfer(ctx, req)
		return postErr
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Transfer posted",
		slog.String("source_account_id", req.SourceAccountID),
		slog.String("destination_account_id", req.DestinationAccountID),
		slog.String("debit_transaction_id", debitLeg.TransactionID),
		slog.String("credit_transaction_id", creditLeg.TransactionID),
		slog.String("amount", req.Amount.String()))
	return debitLeg, creditLeg, nil
}

// GetHistory returns every record involving the account, most recent first.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) GetHistory(ctx context.Context, accountID string) ([]domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// The account must exist even when its history is empty.
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account for history", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	records, err := s.ledgerRepo.ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		logger.Error("Failed to list transactions for account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve history for account %s: %w", accountID, err)
	}

	logger.Debug("History retrieved", slog.String("account_id", accountID), slog.Int("record_count", len(records)))
	return records, nil
}

// GetTransaction retrieves a single ledger record.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction by ID", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return record, nil
}

// postSingleLeg runs one deposit or withdrawal as an atomic region: lock the
// row, validate against the locked state, write balance and record, commit.
func (s *ledgerService) postSingleLeg(ctx context.Context, accountID string, amount decimal.Decimal, kind domain.TransactionKind, movement domain.Movement, description string) (*domain.TransactionRecord, error) {
	tx, err := s.ledgerRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.ledgerRepo.Rollback(ctx, tx) // No-op after a successful commit

	accounts, err := s.accountRepo.FindAccountsForUpdate(ctx, tx, []string{accountID})
	if err != nil {
		return nil, err
	}
	account := accounts[accountID]

	if !account.IsActive() {
		return nil, fmt.Errorf("%w: account %s has status %s", apperrors.ErrAccountNotActive, account.AccountNumber, account.Status)
	}

	newBalance := account.Balance.Add(amount)
	if movement == domain.Debit {
		newBalance = account.Balance.Sub(amount)
		if account.AccountType == domain.Savings && newBalance.IsNegative() {
			return nil, fmt.Errorf("%w: balance %s, requested %s; savings accounts cannot go negative",
				apperrors.ErrInsufficientFunds, account.Balance.String(), amount.String())
		}
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateAccountBalanceInTx(ctx, tx, account.AccountID, account.Version, newBalance, now); err != nil {
		return nil, err
	}

	record := domain.TransactionRecord{
		TransactionID:    uuid.NewString(),
		Kind:             kind,
		Movement:         movement,
		Amount:           amount,
		Description:      description,
		AccountID:        account.AccountID,
		ResultingBalance: newBalance,
		Timestamp:        now,
	}
	if err := s.ledgerRepo.SaveTransactionsInTx(ctx, tx, []domain.TransactionRecord{record}); err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// postTransfer runs both legs of a transfer in one transaction.
func (s *ledgerService) postTransfer(ctx context.Context, req dto.TransferRequest) (*domain.TransactionRecord, *domain.TransactionRecord, error) {
	tx, err := s.ledgerRepo.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer s.ledgerRepo.Rollback(ctx, tx)

	// The repository locks the rows ordered by account_id, the global lock
	// order for every multi-account operation.
	accounts, err := s.accountRepo.FindAccountsForUpdate(ctx, tx, []string{req.SourceAccountID, req.DestinationAccountID})
	if err != nil {
		return nil, nil, err
	}
	source := accounts[req.SourceAccountID]
	destination := accounts[req.DestinationAccountID]

	if !source.IsActive() {
		return nil, nil, fmt.Errorf("%w: source account %s has status %s", apperrors.ErrAccountNotActive, source.AccountNumber, source.Status)
	}
	if !destination.IsActive() {
		return nil, nil, fmt.Errorf("%w: destination account %s has status %s", apperrors.ErrAccountNotActive, destination.AccountNumber, destination.Status)
	}

	newSourceBalance := source.Balance.Sub(req.Amount)
	if source.AccountType == domain.Savings && newSourceBalance.IsNegative() {
		return nil, nil, fmt.Errorf("%w: balance %s, requested %s; savings accounts cannot go negative",
			apperrors.ErrInsufficientFunds, source.Balance.String(), req.Amount.String())
	}
	newDestinationBalance := destination.Balance.Add(req.Amount)

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateAccountBalanceInTx(ctx, tx, source.AccountID, source.Version, newSourceBalance, now); err != nil {
		return nil, nil, err
	}
	if err := s.accountRepo.UpdateAccountBalanceInTx(ctx, tx, destination.AccountID, destination.Version, newDestinationBalance, now); err != nil {
		return nil, nil, err
	}

	debitDescription := req.Description
	creditDescription := req.Description
	if req.Description == "" {
		debitDescription = fmt.Sprintf("Transfer to account %s", destination.AccountNumber)
		creditDescription = fmt.Sprintf("Transfer from account %s", source.AccountNumber)
	}

	debitLeg := domain.TransactionRecord{
		TransactionID:    uuid.NewString(),
		Kind:             domain.Transfer,
		Movement:         domain.Debit,
		Amount:           req.Amount,
		Description:      debitDescription,
		AccountID:        source.AccountID,
		CounterAccountID: destination.AccountID,
		ResultingBalance: newSourceBalance,
		Timestamp:        now,
	}
	creditLeg := domain.TransactionRecord{
		TransactionID:    uuid.NewString(),
		Kind:             domain.Transfer,
		Movement:         domain.Credit,
		Amount:           req.Amount,
		Description:      creditDescription,
		AccountID:        destination.AccountID,
		CounterAccountID: source.AccountID,
		ResultingBalance: newDestinationBalance,
		Timestamp:        now,
	}
	if err := s.ledgerRepo.SaveTransactionsInTx(ctx, tx, []domain.TransactionRecord{debitLeg, creditLeg}); err != nil {
		return nil, nil, err
	}

	if err := s.ledgerRepo.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return &debitLeg, &creditLeg, nil
}

// withConflictRetry re-runs fn while it reports a version conflict, up to
// maxConflictRetries times. Any other error is returned as-is.
func withConflictRetry(ctx context.Context, fn func() error) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		logger.Warn("Version conflict, retrying", slog.Int("attempt", attempt))
	}
	return fmt.Errorf("giving up after %d conflict retries: %w", maxConflictRetries, err)
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}
	return nil
}
