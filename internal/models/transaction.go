package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies the operation that produced a record.
type TransactionKind string

const (
	Deposit    TransactionKind = "DEPOSIT"
	Withdrawal TransactionKind = "WITHDRAWAL"
	Transfer   TransactionKind = "TRANSFER"
)

// Movement indicates whether a record credits or debits its account.
type Movement string

const (
	Credit Movement = "CREDIT"
	Debit  Movement = "DEBIT"
)

// TransactionRecord is the database representation of one ledger entry.
// The table is append-only; no update or delete path is exposed.
type TransactionRecord struct {
	TransactionID    string          `db:"transaction_id"`
	Kind             TransactionKind `db:"kind"`
	Movement         Movement        `db:"movement"`
	Amount           decimal.Decimal `db:"amount"`
	Description      string          `db:"description"`
	AccountID        string          `db:"account_id"`
	CounterAccountID string          `db:"counter_account_id"` // Nullable
	ResultingBalance decimal.Decimal `db:"resulting_balance"`
	Timestamp        time.Time       `db:"created_at"`
}
