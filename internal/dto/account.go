package dto

import (
	"time"

	"github.com/financiera/banking-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	OwnerID     string             `json:"ownerID" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=SAVINGS CHECKING"`
	GMFExempt   *bool              `json:"gmfExempt"` // Optional, defaults to false
}

// UpdateAccountStatusRequest defines the data for a lifecycle transition.
type UpdateAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE CANCELLED"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID     string               `json:"accountID"`
	OwnerID       string               `json:"ownerID"`
	AccountType   domain.AccountType   `json:"accountType"`
	AccountNumber string               `json:"accountNumber"`
	Status        domain.AccountStatus `json:"status"`
	Balance       decimal.Decimal      `json:"balance"`
	GMFExempt     bool                 `json:"gmfExempt"`
	CreatedAt     time.Time            `json:"createdAt"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		OwnerID:       acc.OwnerID,
		AccountType:   acc.AccountType,
		AccountNumber: acc.AccountNumber,
		Status:        acc.Status,
		Balance:       acc.Balance,
		GMFExempt:     acc.GMFExempt,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// OwnerAccountCountResponse reports how many open accounts a customer holds.
// Consumed by the customer collaborator before it deletes a customer record.
type OwnerAccountCountResponse struct {
	OwnerID string `json:"ownerID"`
	Count   int64  `json:"count"`
}
