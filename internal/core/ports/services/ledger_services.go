package services

import (
	"context"

	"github.com/financiera/banking-backend/internal/core/domain"
	"github.com/financiera/banking-backend/internal/dto"
)

// LedgerSvcFacade exposes the money movement operations of the ledger engine.
// Every mutating operation is all-or-nothing: the balance update(s) and the
// record append(s) commit as one unit, or not at all.
type LedgerSvcFacade interface {
	// Deposit credits an active account and returns the resulting record.
	Deposit(ctx context.Context, req dto.DepositRequest) (*domain.TransactionRecord, error)

	// Withdraw debits an active account. Savings accounts may not go negative;
	// checking accounts may overdraw.
	Withdraw(ctx context.Context, req dto.WithdrawRequest) (*domain.TransactionRecord, error)

	// Transfer moves money between two distinct active accounts, producing a
	// debit leg on the source and a credit leg on the destination.
	Transfer(ctx context.Context, req dto.TransferRequest) (*domain.TransactionRecord, *domain.TransactionRecord, error)

	// GetHistory returns every record involving the account, most recent first.
	GetHistory(ctx context.Context, accountID string) ([]domain.TransactionRecord, error)

	// GetTransaction retrieves a single ledger record by ID.
	GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)
}
