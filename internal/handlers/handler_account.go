package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/financiera/banking-backend/internal/core/ports/services"
	"github.com/financiera/banking-backend/internal/dto"
	"github.com/financiera/banking-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/number/:accountNumber", h.getAccountByNumber)
		accounts.PATCH("/:accountID/status", h.updateAccountStatus)
		accounts.DELETE("/:accountID", h.deleteAccount)
	}

	owners := rg.Group("/owners")
	{
		owners.GET("/:ownerID/accounts", h.listAccountsByOwner)
		owners.GET("/:ownerID/accounts/count", h.countAccountsByOwner)
	}
}

// createAccount godoc
// @Summary Open a new account
// @Description Opens an account for an existing customer. The account starts active with a zero balance.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 503 {object} map[string]string "Account number allocation exhausted"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		if isExpectedError(err) {
			logger.Warn("Account creation rejected", slog.String("error", err.Error()))
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if isExpectedError(err) {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountByNumber godoc
// @Summary Get an account by account number
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/number/{accountNumber} [get]
func (h *accountHandler) getAccountByNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), accountNumber)
	if err != nil {
		if isExpectedError(err) {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get account by number", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// listAccountsByOwner godoc
// @Summary List a customer's accounts
// @Tags accounts
// @Produce  json
// @Param   ownerID path string true "Owner ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 404 {object} map[string]string "Customer not found"
// @Security BearerAuth
// @Router /owners/{ownerID}/accounts [get]
func (h *accountHandler) listAccountsByOwner(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID := c.Param("ownerID")

	accounts, err := h.accountService.ListAccountsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		if isExpectedError(err) {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list accounts by owner", slog.String("error", err.Error()), slog.String("owner_id", ownerID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// countAccountsByOwner godoc
// @Summary Count a customer's open accounts
// @Description Returns the number of non-cancelled accounts. The customer service checks this before deleting a customer.
// @Tags accounts
// @Produce  json
// @Param   ownerID path string true "Owner ID"
// @Success 200 {object} dto.OwnerAccountCountResponse
// @Security BearerAuth
// @Router /owners/{ownerID}/accounts/count [get]
func (h *accountHandler) countAccountsByOwner(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID := c.Param("ownerID")

	count, err := h.accountService.CountAccountsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		logger.Error("Failed to count accounts", slog.String("error", err.Error()), slog.String("owner_id", ownerID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count accounts"})
		return
	}

	c.JSON(http.StatusOK, dto.OwnerAccountCountResponse{OwnerID: ownerID, Count: count})
}

// updateAccountStatus godoc
// @Summary Change an account's status
// @Description Applies a lifecycle transition. Cancelling requires a zero balance; cancelled accounts are terminal.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   status body dto.UpdateAccountStatusRequest true "Target status"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /accounts/{accountID}/status [patch]
func (h *accountHandler) updateAccountStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateAccountStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.SetAccountStatus(c.Request.Context(), accountID, req.Status)
	if err != nil {
		if isExpectedError(err) {
			logger.Warn("Status change rejected", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update account status", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account status"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete a zero-balance account
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 204 "Account deleted"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Balance is not zero"
// @Security BearerAuth
// @Router /accounts/{accountID} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	if err := h.accountService.DeleteAccount(c.Request.Context(), accountID); err != nil {
		if isExpectedError(err) {
			logger.Warn("Account deletion rejected", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to delete account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
