package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/financiera/banking-backend/internal/apperrors"
	"github.com/financiera/banking-backend/internal/core/domain"
	portsrepo "github.com/financiera/banking-backend/internal/core/ports/repositories"
	"github.com/financiera/banking-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, owner_id, account_type, account_number, status, balance, gmf_exempt, version, created_at, last_updated_at`

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// Helper to convert domain.Account to models.Account for DB storage
func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		OwnerID:       d.OwnerID,
		AccountType:   models.AccountType(d.AccountType),
		AccountNumber: d.AccountNumber,
		Status:        models.AccountStatus(d.Status),
		Balance:       d.Balance,
		GMFExempt:     d.GMFExempt,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// Helper to convert models.Account from DB to domain.Account
func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		OwnerID:       m.OwnerID,
		AccountType:   domain.AccountType(m.AccountType),
		AccountNumber: m.AccountNumber,
		Status:        domain.AccountStatus(m.Status),
		Balance:       m.Balance,
		GMFExempt:     m.GMFExempt,
		Version:       m.Version,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.OwnerID,
		&m.AccountType,
		&m.AccountNumber,
		&m.Status,
		&m.Balance,
		&m.GMFExempt,
		&m.Version,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := toModelAccount(account)

	query := `
		INSERT INTO accounts (account_id, owner_id, account_type, account_number, status, balance, gmf_exempt, version, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.OwnerID,
		modelAcc.AccountType,
		modelAcc.AccountNumber,
		modelAcc.Status,
		modelAcc.Balance,
		modelAcc.GMFExempt,
		modelAcc.Version,
		modelAcc.CreatedAt,
		modelAcc.LastUpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account number %s already exists", apperrors.ErrDuplicate, modelAcc.AccountNumber)
			}
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	modelAcc, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	domainAcc := toDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountByNumber retrieves an account by its unique account number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1;`

	modelAcc, err := scanAccount(r.pool.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by number %s: %w", accountNumber, err)
	}

	domainAcc := toDomainAccount(modelAcc)
	return &domainAcc, nil
}

// ExistsByNumber reports whether any account already carries the given number.
func (r *PgxAccountRepository) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1);`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, accountNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account number %s: %w", accountNumber, err)
	}
	return exists, nil
}

// ListAccountsByOwner retrieves all accounts belonging to a customer.
func (r *PgxAccountRepository) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at;`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListAccounts retrieves a paginated list of accounts.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at LIMIT $1 OFFSET $2;`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// CountAccountsByOwner returns the number of non-cancelled accounts a customer holds.
func (r *PgxAccountRepository) CountAccountsByOwner(ctx context.Context, ownerID string) (int64, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE owner_id = $1 AND status <> $2;`

	var count int64
	if err := r.pool.QueryRow(ctx, query, ownerID, models.StatusCancelled).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts for owner %s: %w", ownerID, err)
	}
	return count, nil
}

// UpdateAccountStatus sets the account status, guarded by the version the
// service observed when it validated the transition. A zero row count means
// the account changed (or vanished) since that read; the service re-reads and
// re-validates before trying again.
func (r *PgxAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, expectedVersion int64, now time.Time) error {
	query := `
		UPDATE accounts
		SET status = $2, version = version + 1, last_updated_at = $3
		WHERE account_id = $1 AND version = $4;
	`

	cmdTag, err := r.pool.Exec(ctx, query, accountID, models.AccountStatus(status), now, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to execute status update for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s changed since it was read (expected version %d)", apperrors.ErrConflict, accountID, expectedVersion)
	}
	return nil
}

// DeleteAccount removes an account row. The ledger is append-only, so an
// account with any history is still referenced by its records and cannot go.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	query := `DELETE FROM accounts WHERE account_id = $1;`

	cmdTag, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23503" { // Foreign key violation
				return fmt.Errorf("%w: account %s has ledger history and cannot be deleted", apperrors.ErrInvalidOperation, accountID)
			}
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsForUpdate selects the given accounts and locks the rows for
// update. Rows are locked in ascending account_id order, the global lock
// order for multi-account operations; crossing transfers therefore cannot
// deadlock. Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		modelAcc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[modelAcc.AccountID] = toDomainAccount(modelAcc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	// Every requested account must exist and be locked.
	if len(accountsMap) != len(uniqueIDs(accountIDs)) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: could not find or lock accounts %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// UpdateAccountBalanceInTx writes a new balance guarded by the version the
// caller observed under its row lock. A zero row count means another writer
// got there first; the caller retries.
func (r *PgxAccountRepository) UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, expectedVersion int64, newBalance decimal.Decimal, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $2, version = version + 1, last_updated_at = $3
		WHERE account_id = $1 AND version = $4;
	`

	cmdTag, err := tx.Exec(ctx, query, accountID, newBalance, now, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s changed since it was read (expected version %d)", apperrors.ErrConflict, accountID, expectedVersion)
	}
	return nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	accounts := []domain.Account{}
	for rows.Next() {
		modelAcc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, toDomainAccount(modelAcc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}
