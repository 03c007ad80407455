package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the product type of an account.
type AccountType string

const (
	Savings  AccountType = "SAVINGS"
	Checking AccountType = "CHECKING"
)

// AccountStatus defines the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"
	StatusInactive  AccountStatus = "INACTIVE"
	StatusCancelled AccountStatus = "CANCELLED"
)

// Account is the database representation of a bank account.
type Account struct {
	AccountID     string          `db:"account_id"`
	OwnerID       string          `db:"owner_id"`
	AccountType   AccountType     `db:"account_type"`
	AccountNumber string          `db:"account_number"` // Unique constraint in DB
	Status        AccountStatus   `db:"status"`
	Balance       decimal.Decimal `db:"balance"`
	GMFExempt     bool            `db:"gmf_exempt"`
	Version       int64           `db:"version"` // Bumped on every balance write
	CreatedAt     time.Time       `db:"created_at"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
