package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/financiera/banking-backend/internal/apperrors"
	"github.com/financiera/banking-backend/internal/core/domain"
	portsrepo "github.com/financiera/banking-backend/internal/core/ports/repositories"
	"github.com/financiera/banking-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, kind, movement, amount, description, account_id, counter_account_id, resulting_balance, created_at`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the append-only
// transaction ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryWithTx
var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

func toModelTransaction(d domain.TransactionRecord) models.TransactionRecord {
	return models.TransactionRecord{
		TransactionID:    d.TransactionID,
		Kind:             models.TransactionKind(d.Kind),
		Movement:         models.Movement(d.Movement),
		Amount:           d.Amount,
		Description:      d.Description,
		AccountID:        d.AccountID,
		CounterAccountID: d.CounterAccountID,
		ResultingBalance: d.ResultingBalance,
		Timestamp:        d.Timestamp,
	}
}

func toDomainTransaction(m models.TransactionRecord) domain.TransactionRecord {
	return domain.TransactionRecord{
		TransactionID:    m.TransactionID,
		Kind:             domain.TransactionKind(m.Kind),
		Movement:         domain.Movement(m.Movement),
		Amount:           m.Amount,
		Description:      m.Description,
		AccountID:        m.AccountID,
		CounterAccountID: m.CounterAccountID,
		ResultingBalance: m.ResultingBalance,
		Timestamp:        m.Timestamp,
	}
}

func scanTransaction(row pgx.Row) (models.TransactionRecord, error) {
	var m models.TransactionRecord
	var counterID sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.Kind,
		&m.Movement,
		&m.Amount,
		&m.Description,
		&m.AccountID,
		&counterID,
		&m.ResultingBalance,
		&m.Timestamp,
	)
	if counterID.Valid {
		m.CounterAccountID = counterID.String
	}
	return m, err
}

// SaveTransactionsInTx appends records within the given transaction. The
// ledger is append-only; this is the only write path.
func (r *PgxLedgerRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (transaction_id, kind, movement, amount, description, account_id, counter_account_id, resulting_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	batch := &pgx.Batch{}
	for _, record := range records {
		m := toModelTransaction(record)

		var counterID sql.NullString
		if m.CounterAccountID != "" {
			counterID = sql.NullString{String: m.CounterAccountID, Valid: true}
		}

		batch.Queue(query,
			m.TransactionID,
			m.Kind,
			m.Movement,
			m.Amount,
			m.Description,
			m.AccountID,
			counterID,
			m.ResultingBalance,
			m.Timestamp,
		)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to insert transaction %s: %w", records[i].TransactionID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close transaction insert batch: %w", err)
	}
	return batchErr
}

// FindTransactionByID retrieves a single ledger record.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}

	record := toDomainTransaction(m)
	return &record, nil
}

// ListTransactionsByAccount retrieves every record where the account is
// either the posted-against account or the counter account, most recent
// first.
func (r *PgxLedgerRepository) ListTransactionsByAccount(ctx context.Context, accountID string) ([]domain.TransactionRecord, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 OR counter_account_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	records := []domain.TransactionRecord{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		records = append(records, toDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return records, nil
}
