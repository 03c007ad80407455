package repositories

import (
	"context"

	"github.com/financiera/banking-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations against the ledger.
type TransactionReader interface {
	// FindTransactionByID retrieves a specific ledger record by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)

	// ListTransactionsByAccount retrieves every record where the account is
	// either the posted-against account or the counter account, ordered by
	// timestamp descending.
	ListTransactionsByAccount(ctx context.Context, accountID string) ([]domain.TransactionRecord, error)
}

// LedgerWriter appends records to the ledger. The ledger is append-only;
// there is no update or delete path.
type LedgerWriter interface {
	// SaveTransactionsInTx appends one or more records within the given transaction.
	SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, records []domain.TransactionRecord) error
}

// LedgerRepositoryFacade combines ledger read and write interfaces.
type LedgerRepositoryFacade interface {
	TransactionReader
	LedgerWriter
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
