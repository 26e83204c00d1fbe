package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
)

// receiptHandler handles HTTP requests related to receipts and their settlement.
type receiptHandler struct {
	receiptService portssvc.ReceiptSvcFacade
}

func newReceiptHandler(rs portssvc.ReceiptSvcFacade) *receiptHandler {
	return &receiptHandler{receiptService: rs}
}

// registerReceiptRoutes registers routes related to receipts.
func registerReceiptRoutes(rg *gin.RouterGroup, receiptService portssvc.ReceiptSvcFacade) {
	h := newReceiptHandler(receiptService)

	receipts := rg.Group("/receipts")
	{
		receipts.POST("", h.createReceipt)
		receipts.GET("", h.listReceipts)
		receipts.GET("/pending", h.listPendingReceipts)
		receipts.GET("/:id", h.getReceipt)
		receipts.PUT("/:id", h.updateReceipt)
		receipts.POST("/:id/approve", h.approveReceipt)
		receipts.POST("/:id/reject", h.rejectReceipt)
	}
}

// createReceipt godoc
// @Summary Submit a receipt
// @Description Declares a payment between two registered bank accounts, pending admin settlement
// @Tags receipts
// @Accept json
// @Produce json
// @Param receipt body dto.CreateReceiptRequest true "Receipt details"
// @Success 201 {object} dto.ReceiptResponse
// @Failure 400 {object} map[string]string "Invalid input or bank account reference"
// @Security BearerAuth
// @Router /receipts [post]
func (h *receiptHandler) createReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create receipt")
		return
	}

	logger.Info("Receipt created", slog.String("receipt_id", receipt.ReceiptID))
	c.JSON(http.StatusCreated, dto.ToReceiptResponse(receipt))
}

// getReceipt godoc
// @Summary Get a receipt by ID
// @Description Retrieves a receipt. Non-admin requesters only see their own receipts.
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} map[string]string "Receipt not found"
// @Security BearerAuth
// @Router /receipts/{id} [get]
func (h *receiptHandler) getReceipt(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceiptByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve receipt")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// listReceipts godoc
// @Summary List the authenticated user's receipts
// @Tags receipts
// @Produce json
// @Param status query string false "Filter by status (PENDING, APPROVED, REJECTED)"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListReceiptsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /receipts [get]
func (h *receiptHandler) listReceipts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params dto.ListReceiptsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	receipts, nextToken, err := h.receiptService.ListReceipts(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list receipts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListReceiptsResponse(receipts, nextToken))
}

// listPendingReceipts godoc
// @Summary List the pending settlement queue
// @Description Retrieves pending receipts across all users. Admin only.
// @Tags receipts
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListReceiptsResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /receipts/pending [get]
func (h *receiptHandler) listPendingReceipts(c *gin.Context) {
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params dto.ListReceiptsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	receipts, nextToken, err := h.receiptService.ListPendingReceipts(c.Request.Context(), adminID, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, err, "Failed to list pending receipts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListReceiptsResponse(receipts, nextToken))
}

// approveReceipt godoc
// @Summary Approve a pending receipt
// @Description Settles the receipt and applies its wallet mutation in the same transaction. Admin only.
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID"
// @Param approval body dto.ApproveReceiptRequest false "Optional amount override"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Receipt not found"
// @Failure 409 {object} map[string]string "Receipt is not pending"
// @Security BearerAuth
// @Router /receipts/{id}/approve [post]
func (h *receiptHandler) approveReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receiptID := c.Param("id")

	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ApproveReceiptRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	receipt, err := h.receiptService.ApproveReceipt(c.Request.Context(), adminID, receiptID, req)
	if err != nil {
		respondError(c, err, "Failed to approve receipt")
		return
	}

	logger.Info("Receipt approved", slog.String("receipt_id", receiptID), slog.String("admin_id", adminID))
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// rejectReceipt godoc
// @Summary Reject a pending receipt
// @Description Marks the receipt REJECTED without touching any wallet. Admin only.
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Receipt not found"
// @Failure 409 {object} map[string]string "Receipt is not pending"
// @Security BearerAuth
// @Router /receipts/{id}/reject [post]
func (h *receiptHandler) rejectReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receiptID := c.Param("id")

	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.RejectReceipt(c.Request.Context(), adminID, receiptID)
	if err != nil {
		respondError(c, err, "Failed to reject receipt")
		return
	}

	logger.Info("Receipt rejected", slog.String("receipt_id", receiptID), slog.String("admin_id", adminID))
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// updateReceipt godoc
// @Summary Correct a receipt
// @Description Admin correction path for receipt details. Changed bank account references are re-validated.
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID"
// @Param receipt body dto.UpdateReceiptRequest true "Fields to update"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Receipt not found"
// @Security BearerAuth
// @Router /receipts/{id} [put]
func (h *receiptHandler) updateReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receiptID := c.Param("id")

	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.receiptService.UpdateReceipt(c.Request.Context(), adminID, receiptID, req)
	if err != nil {
		respondError(c, err, "Failed to update receipt")
		return
	}

	logger.Info("Receipt updated", slog.String("receipt_id", receiptID))
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}
