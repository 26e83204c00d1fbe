package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
)

// currencyRateHandler handles HTTP requests related to exchange rates.
type currencyRateHandler struct {
	rateService portssvc.CurrencyRateSvcFacade
}

func newCurrencyRateHandler(rs portssvc.CurrencyRateSvcFacade) *currencyRateHandler {
	return &currencyRateHandler{rateService: rs}
}

// registerCurrencyRateRoutes registers routes related to exchange rates.
func registerCurrencyRateRoutes(rg *gin.RouterGroup, rateService portssvc.CurrencyRateSvcFacade) {
	h := newCurrencyRateHandler(rateService)

	rates := rg.Group("/rates")
	{
		rates.GET("/current", h.getCurrentRate)
		rates.GET("/effective", h.getAdjustedRate)
		rates.GET("/adjustments", h.listAdjustments)
		rates.PUT("/adjustments", h.setRateAdjustment)
	}
}

// getCurrentRate godoc
// @Summary Get the live market rate for a currency pair
// @Description Fetches the current rate from the FX provider without any adjustment
// @Tags rates
// @Produce json
// @Param base query string false "Base currency code, defaults to USD"
// @Param target query string true "Target currency code"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Invalid currency pair"
// @Failure 500 {object} map[string]string "FX provider failure"
// @Security BearerAuth
// @Router /rates/current [get]
func (h *currencyRateHandler) getCurrentRate(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	rate, err := h.rateService.GetCurrentRate(c.Request.Context(), c.Query("base"), c.Query("target"))
	if err != nil {
		respondError(c, err, "Failed to fetch current rate")
		return
	}
	c.JSON(http.StatusOK, rate)
}

// getAdjustedRate godoc
// @Summary Get the effective rate for a currency pair
// @Description Returns the stored admin adjustment for the pair, falling back to the live rate when none is stored
// @Tags rates
// @Produce json
// @Param base query string false "Base currency code, defaults to USD"
// @Param target query string true "Target currency code"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Invalid currency pair"
// @Security BearerAuth
// @Router /rates/effective [get]
func (h *currencyRateHandler) getAdjustedRate(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	rate, err := h.rateService.GetAdjustedRate(c.Request.Context(), c.Query("base"), c.Query("target"))
	if err != nil {
		respondError(c, err, "Failed to fetch effective rate")
		return
	}
	c.JSON(http.StatusOK, rate)
}

// listAdjustments godoc
// @Summary List the stored rate adjustments
// @Description Retrieves the latest adjustment per currency pair. Admin only.
// @Tags rates
// @Produce json
// @Success 200 {array} dto.RateAdjustmentResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /rates/adjustments [get]
func (h *currencyRateHandler) listAdjustments(c *gin.Context) {
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	adjustments, err := h.rateService.ListAdjustments(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err, "Failed to list rate adjustments")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRateAdjustmentResponse(adjustments))
}

// setRateAdjustment godoc
// @Summary Set the rate adjustment for a currency pair
// @Description Stores or replaces the adjustment, recording the fetched rate and final rate. Admin only.
// @Tags rates
// @Accept json
// @Produce json
// @Param adjustment body dto.SetRateAdjustmentRequest true "Adjustment details"
// @Success 200 {object} dto.RateAdjustmentResponse
// @Failure 400 {object} map[string]string "Non-positive final rate"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /rates/adjustments [put]
func (h *currencyRateHandler) setRateAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.SetRateAdjustmentRequest
	if !bindJSON(c, &req) {
		return
	}

	adjustment, err := h.rateService.SetRateAdjustment(c.Request.Context(), adminID, req)
	if err != nil {
		respondError(c, err, "Failed to set rate adjustment")
		return
	}

	logger.Info("Rate adjustment stored",
		slog.String("base_currency", adjustment.BaseCurrencyCode),
		slog.String("target_currency", adjustment.TargetCurrencyCode))
	c.JSON(http.StatusOK, dto.ToRateAdjustmentResponse(adjustment))
}
