package domain

import (
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

// Account represents a bank account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID     string          `json:"accountID"`     // Primary Key (UUID)
	OwnerID       string          `json:"ownerID"`       // Opaque reference to the customer collaborator
	AccountType   AccountType     `json:"accountType"`   // SAVINGS or CHECKING
	AccountNumber string          `json:"accountNumber"` // Unique, type-prefixed, assigned at creation
	Status        AccountStatus   `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	GMFExempt     bool            `json:"gmfExempt"`
	Version       int64           `json:"-"` // Optimistic concurrency token, bumped on every balance write
	AuditFields
}

// IsActive reports whether the account accepts debits and credits.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// CanTransitionTo reports whether the status change is allowed by the
// account lifecycle. Active and Inactive swap freely; Cancelled requires a
// zero balance and is terminal.
func (a *Account) CanTransitionTo(next AccountStatus) bool {
	if a.Status == StatusCancelled {
		return false
	}
	switch next {
	case StatusActive, StatusInactive:
		return true
	case StatusCancelled:
		return a.Balance.IsZero()
	default:
		return false
	}
}
