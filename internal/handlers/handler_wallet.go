package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
)

// walletHandler handles HTTP requests related to wallets and their ledgers.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
	userService   portssvc.UserReaderSvc
}

func newWalletHandler(ws portssvc.WalletSvcFacade, us portssvc.UserReaderSvc) *walletHandler {
	return &walletHandler{walletService: ws, userService: us}
}

// registerWalletRoutes registers routes related to wallets.
func registerWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade, userService portssvc.UserReaderSvc) {
	h := newWalletHandler(walletService, userService)

	wallets := rg.Group("/wallets")
	{
		wallets.GET("", h.listWallets)
		wallets.GET("/:currency/:type", h.getWallet)
		wallets.GET("/:currency/:type/transactions", h.listTransactions)
		wallets.POST("/deposit", h.deposit)
		wallets.POST("/lock", h.lockFunds)
		wallets.POST("/unlock", h.unlockFunds)
		wallets.POST("/transfer", h.transfer)
		wallets.POST("/convert", h.convert)
	}
}

// listWallets godoc
// @Summary List the authenticated user's wallets
// @Tags wallets
// @Produce json
// @Success 200 {array} dto.WalletResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /wallets [get]
func (h *walletHandler) listWallets(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	wallets, err := h.walletService.ListWallets(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list wallets")
		return
	}
	c.JSON(http.StatusOK, dto.ToListWalletResponse(wallets))
}

// getWallet godoc
// @Summary Get one wallet by currency and type
// @Tags wallets
// @Produce json
// @Param currency path string true "Currency code (e.g. USD)"
// @Param type path string true "Wallet type (PERSONAL or COMPANY)"
// @Success 200 {object} dto.WalletResponse
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /wallets/{currency}/{type} [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID, c.Param("currency"), domain.WalletType(c.Param("type")))
	if err != nil {
		respondError(c, err, "Failed to retrieve wallet")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// listTransactions godoc
// @Summary List ledger entries of a wallet
// @Description Retrieves a token-paginated page of the wallet's ledger, newest first
// @Tags wallets
// @Produce json
// @Param currency path string true "Currency code"
// @Param type path string true "Wallet type"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /wallets/{currency}/{type}/transactions [get]
func (h *walletHandler) listTransactions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID, c.Param("currency"), domain.WalletType(c.Param("type")))
	if err != nil {
		respondError(c, err, "Failed to retrieve wallet")
		return
	}

	txns, nextToken, err := h.walletService.ListTransactions(c.Request.Context(), userID, wallet.WalletID, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, nextToken))
}

// deposit godoc
// @Summary Deposit funds into a wallet (admin only)
// @Description Credits the available balance, creating the wallet if it does not exist.
// @Description Restricted to admins: member wallets are credited only through receipt
// @Description settlement or the verified payment webhook.
// @Tags wallets
// @Accept json
// @Produce json
// @Param deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.WalletTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Admin role required"
// @Security BearerAuth
// @Router /wallets/deposit [post]
func (h *walletHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if _, err := h.userService.RequireAdmin(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Failed to deposit funds")
		return
	}

	var req dto.DepositRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := h.walletService.Deposit(c.Request.Context(), userID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to deposit funds")
		return
	}

	logger.Info("Deposit completed", slog.String("transaction_id", txn.TransactionID), slog.String("currency_code", req.CurrencyCode))
	c.JSON(http.StatusCreated, dto.ToWalletTransactionResponse(txn))
}

// lockFunds godoc
// @Summary Lock funds in a wallet
// @Description Moves amount from the available balance to the locked balance
// @Tags wallets
// @Accept json
// @Produce json
// @Param lock body dto.LockFundsRequest true "Lock details"
// @Success 201 {object} dto.WalletTransactionResponse
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Security BearerAuth
// @Router /wallets/lock [post]
func (h *walletHandler) lockFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.LockFundsRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := h.walletService.LockFunds(c.Request.Context(), userID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to lock funds")
		return
	}

	logger.Info("Funds locked", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToWalletTransactionResponse(txn))
}

// unlockFunds godoc
// @Summary Unlock funds in a wallet
// @Description Moves amount from the locked balance back to the available balance
// @Tags wallets
// @Accept json
// @Produce json
// @Param unlock body dto.UnlockFundsRequest true "Unlock details"
// @Success 201 {object} dto.WalletTransactionResponse
// @Failure 422 {object} map[string]string "Insufficient locked balance"
// @Security BearerAuth
// @Router /wallets/unlock [post]
func (h *walletHandler) unlockFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UnlockFundsRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := h.walletService.UnlockFunds(c.Request.Context(), userID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to unlock funds")
		return
	}

	logger.Info("Funds unlocked", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToWalletTransactionResponse(txn))
}

// transfer godoc
// @Summary Transfer funds to another user
// @Description Debits the sender's wallet and credits the recipient's wallet atomically
// @Tags wallets
// @Accept json
// @Produce json
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Security BearerAuth
// @Router /wallets/transfer [post]
func (h *walletHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	fromTxn, toTxn, err := h.walletService.Transfer(c.Request.Context(), userID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to transfer funds")
		return
	}

	logger.Info("Transfer completed",
		slog.String("from_transaction_id", fromTxn.TransactionID),
		slog.String("to_transaction_id", toTxn.TransactionID))
	c.JSON(http.StatusCreated, dto.TransferResponse{
		FromTransaction: dto.ToWalletTransactionResponse(fromTxn),
		ToTransaction:   dto.ToWalletTransactionResponse(toTxn),
	})
}

// convert godoc
// @Summary Convert funds between currencies
// @Description Exchanges funds between two currency wallets of the same user at the effective rate
// @Tags wallets
// @Accept json
// @Produce json
// @Param convert body dto.ConvertRequest true "Conversion details"
// @Success 201 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid rate or input"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Security BearerAuth
// @Router /wallets/convert [post]
func (h *walletHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ConvertRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.walletService.Convert(c.Request.Context(), userID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to convert funds")
		return
	}

	logger.Info("Conversion completed",
		slog.String("from_currency", req.FromCurrencyCode),
		slog.String("to_currency", req.ToCurrencyCode))
	c.JSON(http.StatusCreated, resp)
}
