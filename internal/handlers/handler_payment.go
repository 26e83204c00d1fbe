package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
)

// Signature header the payment gateway sends with webhook deliveries.
const webhookSignatureHeader = "X-Gateway-Signature"

// paymentHandler handles payment intent creation and the gateway webhook.
type paymentHandler struct {
	paymentService portssvc.PaymentSvc
}

func newPaymentHandler(ps portssvc.PaymentSvc) *paymentHandler {
	return &paymentHandler{paymentService: ps}
}

// registerPaymentRoutes registers the authenticated payment routes.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvc) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.POST("/intents", h.createIntent)
	}
}

// registerPaymentWebhookRoutes registers the public webhook endpoint. The
// webhook authenticates via HMAC signature, not a bearer token.
func registerPaymentWebhookRoutes(r *gin.Engine, paymentService portssvc.PaymentSvc) {
	h := newPaymentHandler(paymentService)
	r.POST("/payments/webhook", h.handleWebhook)
}

// createIntent godoc
// @Summary Create a payment intent
// @Description Registers a wallet top-up intent with the payment gateway and returns the redirect details
// @Tags payments
// @Accept json
// @Produce json
// @Param intent body dto.CreatePaymentIntentRequest true "Intent details"
// @Success 201 {object} dto.PaymentIntentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 502 {object} map[string]string "Gateway failure"
// @Security BearerAuth
// @Router /payments/intents [post]
func (h *paymentHandler) createIntent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create payment intent")
		return
	}

	logger.Info("Payment intent created", slog.String("intent_id", intent.IntentID))
	c.JSON(http.StatusCreated, intent)
}

// handleWebhook godoc
// @Summary Payment gateway webhook
// @Description Verifies the gateway signature over the raw body and credits the wallet for a succeeded intent
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Gateway-Signature header string true "Hex HMAC-SHA256 of the request body"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string "Bad signature"
// @Router /payments/webhook [post]
func (h *paymentHandler) handleWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader(webhookSignatureHeader)
	if err := h.paymentService.HandleWebhook(c.Request.Context(), signature, body); err != nil {
		respondError(c, err, "Failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
