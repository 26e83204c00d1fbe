package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
)

// bankAccountHandler handles HTTP requests related to bank accounts.
type bankAccountHandler struct {
	bankAccountService portssvc.BankAccountSvcFacade
}

func newBankAccountHandler(bs portssvc.BankAccountSvcFacade) *bankAccountHandler {
	return &bankAccountHandler{bankAccountService: bs}
}

// registerBankAccountRoutes registers routes related to bank accounts.
func registerBankAccountRoutes(rg *gin.RouterGroup, bankAccountService portssvc.BankAccountSvcFacade) {
	h := newBankAccountHandler(bankAccountService)

	accounts := rg.Group("/bank-accounts")
	{
		accounts.POST("", h.createBankAccount)
		accounts.GET("", h.listBankAccounts)
		accounts.GET("/:id", h.getBankAccount)
		accounts.PUT("/:id", h.updateBankAccount)
		accounts.DELETE("/:id", h.deleteBankAccount)
		accounts.POST("/:id/reorder", h.reorderBankAccount)
	}
}

// createBankAccount godoc
// @Summary Register a bank account
// @Description Registers a new bank account appended at the end of the user's ordering
// @Tags bank-accounts
// @Accept json
// @Produce json
// @Param account body dto.CreateBankAccountRequest true "Bank account details"
// @Success 201 {object} dto.BankAccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /bank-accounts [post]
func (h *bankAccountHandler) createBankAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBankAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.bankAccountService.CreateBankAccount(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create bank account")
		return
	}

	logger.Info("Bank account created", slog.String("bank_account_id", account.BankAccountID), slog.Int("sequence", account.Sequence))
	c.JSON(http.StatusCreated, dto.ToBankAccountResponse(account))
}

// getBankAccount godoc
// @Summary Get a bank account by ID
// @Tags bank-accounts
// @Produce json
// @Param id path string true "Bank account ID"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id} [get]
func (h *bankAccountHandler) getBankAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	account, err := h.bankAccountService.GetBankAccountByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve bank account")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankAccountResponse(account))
}

// listBankAccounts godoc
// @Summary List the authenticated user's bank accounts
// @Description Retrieves the user's bank accounts in sequence order
// @Tags bank-accounts
// @Produce json
// @Success 200 {array} dto.BankAccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /bank-accounts [get]
func (h *bankAccountHandler) listBankAccounts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	accounts, err := h.bankAccountService.ListBankAccounts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list bank accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBankAccountResponse(accounts))
}

// updateBankAccount godoc
// @Summary Update a bank account
// @Description Updates account details. The sequence position is not updatable here; use reorder.
// @Tags bank-accounts
// @Accept json
// @Produce json
// @Param id path string true "Bank account ID"
// @Param account body dto.UpdateBankAccountRequest true "Fields to update"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id} [put]
func (h *bankAccountHandler) updateBankAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateBankAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.bankAccountService.UpdateBankAccount(c.Request.Context(), userID, accountID, req)
	if err != nil {
		respondError(c, err, "Failed to update bank account")
		return
	}

	logger.Info("Bank account updated", slog.String("bank_account_id", accountID))
	c.JSON(http.StatusOK, dto.ToBankAccountResponse(account))
}

// deleteBankAccount godoc
// @Summary Delete a bank account
// @Description Removes the account and compacts the sequence positions above it
// @Tags bank-accounts
// @Produce json
// @Param id path string true "Bank account ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Failure 409 {object} map[string]string "Account is referenced by receipts"
// @Security BearerAuth
// @Router /bank-accounts/{id} [delete]
func (h *bankAccountHandler) deleteBankAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.bankAccountService.DeleteBankAccount(c.Request.Context(), userID, accountID); err != nil {
		respondError(c, err, "Failed to delete bank account")
		return
	}

	logger.Info("Bank account deleted", slog.String("bank_account_id", accountID))
	c.Status(http.StatusNoContent)
}

// reorderBankAccount godoc
// @Summary Move a bank account to a new position
// @Description Moves the account to newPosition and shifts the accounts in between by one
// @Tags bank-accounts
// @Accept json
// @Produce json
// @Param id path string true "Bank account ID"
// @Param reorder body dto.ReorderBankAccountRequest true "Target position (1-based)"
// @Success 200 {array} dto.BankAccountResponse
// @Failure 400 {object} map[string]string "Position out of range"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id}/reorder [post]
func (h *bankAccountHandler) reorderBankAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ReorderBankAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	accounts, err := h.bankAccountService.ReorderBankAccount(c.Request.Context(), userID, accountID, req.NewPosition)
	if err != nil {
		respondError(c, err, "Failed to reorder bank account")
		return
	}

	logger.Info("Bank account reordered", slog.String("bank_account_id", accountID), slog.Int("new_position", req.NewPosition))
	c.JSON(http.StatusOK, dto.ToListBankAccountResponse(accounts))
}
