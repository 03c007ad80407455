package dto

import (
	"time"

	"github.com/financiera/banking-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest defines the data needed to credit an account.
type DepositRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"` // Optional, defaulted by kind
}

// WithdrawRequest defines the data needed to debit an account.
type WithdrawRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// TransferRequest defines the data needed to move money between two accounts.
type TransferRequest struct {
	SourceAccountID      string          `json:"sourceAccountID" binding:"required"`
	DestinationAccountID string          `json:"destinationAccountID" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	Description          string          `json:"description"`
}

// TransactionResponse defines the data returned for a ledger record.
type TransactionResponse struct {
	TransactionID    string                 `json:"transactionID"`
	Kind             domain.TransactionKind `json:"kind"`
	Movement         domain.Movement        `json:"movement"`
	Amount           decimal.Decimal        `json:"amount"`
	Description      string                 `json:"description"`
	AccountID        string                 `json:"accountID"`
	CounterAccountID string                 `json:"counterAccountID,omitempty"`
	ResultingBalance decimal.Decimal        `json:"resultingBalance"`
	Timestamp        time.Time              `json:"timestamp"`
}

// TransferResponse returns both legs of a completed transfer.
type TransferResponse struct {
	DebitLeg  TransactionResponse `json:"debitLeg"`
	CreditLeg TransactionResponse `json:"creditLeg"`
}

// ToTransactionResponse converts a domain.TransactionRecord to its DTO.
func ToTransactionResponse(r *domain.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		TransactionID:    r.TransactionID,
		Kind:             r.Kind,
		Movement:         r.Movement,
		Amount:           r.Amount,
		Description:      r.Description,
		AccountID:        r.AccountID,
		CounterAccountID: r.CounterAccountID,
		ResultingBalance: r.ResultingBalance,
		Timestamp:        r.Timestamp,
	}
}

// ToTransactionResponses converts a slice of records to response DTOs.
func ToTransactionResponses(records []domain.TransactionRecord) []TransactionResponse {
	res := make([]TransactionResponse, len(records))
	for i := range records {
		res[i] = ToTransactionResponse(&records[i])
	}
	return res
}

// HistoryResponse wraps an account's transaction history.
type HistoryResponse struct {
	AccountID    string                `json:"accountID"`
	Transactions []TransactionResponse `json:"transactions"`
}
