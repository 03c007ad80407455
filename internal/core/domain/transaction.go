package domain

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

// TransactionRecord is a single immutable ledger entry posted against one
// account. A transfer produces two records, one per leg, each pointing at
// the other account through CounterAccountID. Records are never updated or
// deleted once written.
type TransactionRecord struct {
	TransactionID    string          `json:"transactionID"` // Primary Key (UUID)
	Kind             TransactionKind `json:"kind"`
	Movement         Movement        `json:"movement"`
	Amount           decimal.Decimal `json:"amount"`      // Strictly positive
	Description      string          `json:"description"` // Defaulted by operation kind when empty
	AccountID        string          `json:"accountID"`   // The account this leg is posted against
	CounterAccountID string          `json:"counterAccountID,omitempty"`
	ResultingBalance decimal.Decimal `json:"resultingBalance"` // AccountID balance immediately after this leg
	Timestamp        time.Time       `json:"timestamp"`
}
