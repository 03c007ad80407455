package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/financiera/banking-backend/internal/core/ports/services"
	"github.com/financiera/banking-backend/internal/dto"
	"github.com/financiera/banking-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for money movement and history.
type transactionHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ls portssvc.LedgerSvcFacade) *transactionHandler {
	return &transactionHandler{
		ledgerService: ls,
	}
}

// RegisterTransactionRoutes registers money movement and history routes.
// The mutating routes sit behind the rate limiter configured by the caller.
func RegisterTransactionRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, limiterMiddleware gin.HandlerFunc) {
	h := newTransactionHandler(ledgerService)

	transactions := rg.Group("/transactions")
	{
		transactions.GET("/:transactionID", h.getTransaction)

		mutating := transactions.Group("")
		if limiterMiddleware != nil {
			mutating.Use(limiterMiddleware)
		}
		mutating.POST("/deposit", h.deposit)
		mutating.POST("/withdraw", h.withdraw)
		mutating.POST("/transfer", h.transfer)
	}

	rg.GET("/accounts/:accountID/transactions", h.getHistory)
}

// deposit godoc
// @Summary Deposit into an account
// @Description Credits an active account and appends a ledger record atomically.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account is not active"
// @Security BearerAuth
// @Router /transactions/deposit [post]
func (h *transactionHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	record, err := h.ledgerService.Deposit(c.Request.Context(), req)
	if err != nil {
		if isExpectedError(err) {
			logger.Warn("Deposit rejected", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to process deposit", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process deposit"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(record))
}

// withdraw godoc
// @Summary Withdraw from an account
// @Description Debits an active account. Savings accounts cannot go negative; checking accounts may overdraw.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   withdrawal body dto.WithdrawRequest true "Withdrawal details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account is not active"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /transactions/withdraw [post]
func (h *transactionHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	record, err := h.ledgerService.Withdraw(c.Request.Context(), req)
	if err != nil {
		if isExpectedError(err) {
			logger.Warn("Withdrawal rejected", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to process withdrawal", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process withdrawal"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(record))
}

// transfer godoc
// @Summary Transfer between two accounts
// @Description Moves money between two distinct active accounts. Both legs commit atomically.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account is not active"
// @Failure 422 {object} map[string]string "Insufficient funds or same-account transfer"
// @Security BearerAuth
// @Router /transactions/transfer [post]
func (h *transactionHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	debitLeg, creditLeg, err := h.ledgerService.Transfer(c.Request.Context(), req)
	if err != nil {
		if isExpectedError(err) {
			logger.Warn("Transfer rejected",
				slog.String("error", err.Error()),
				slog.String("source_account_id", req.SourceAccountID),
				slog.String("destination_account_id", req.DestinationAccountID))
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to process transfer",
				slog.String("error", err.Error()),
				slog.String("source_account_id", req.SourceAccountID),
				slog.String("destination_account_id", req.DestinationAccountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transfer"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.TransferResponse{
		DebitLeg:  dto.ToTransactionResponse(debitLeg),
		CreditLeg: dto.ToTransactionResponse(creditLeg),
	})
}

// getHistory godoc
// @Summary Get an account's transaction history
// @Description Returns every ledger record involving the account, most recent first.
// @Tags transactions
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [get]
func (h *transactionHandler) getHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	records, err := h.ledgerService.GetHistory(c.Request.Context(), accountID)
	if err != nil {
		if isExpectedError(err) {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get transaction history", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction history"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{
		AccountID:    accountID,
		Transactions: dto.ToTransactionResponses(records),
	})
}

// getTransaction godoc
// @Summary Get a ledger record by ID
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	record, err := h.ledgerService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		if isExpectedError(err) {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(record))
}
