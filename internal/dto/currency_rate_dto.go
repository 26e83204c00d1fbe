package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// SetRateAdjustmentRequest defines the structure for an admin rate adjustment.
// The adjustment is added to the fetched market rate to produce the final
// rate. BaseCurrencyCode defaults to USD when omitted.
type SetRateAdjustmentRequest struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode" binding:"omitempty,len=3,uppercase"`
	TargetCurrencyCode string          `json:"targetCurrencyCode" binding:"required,len=3,uppercase"`
	Adjustment         decimal.Decimal `json:"adjustment" binding:"required"`
}

// RateResponse defines the structure for API responses containing an effective rate.
type RateResponse struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	FetchedRate        decimal.Decimal `json:"fetchedRate"`
	Adjustment         decimal.Decimal `json:"adjustment"`
	FinalRate          decimal.Decimal `json:"finalRate"`
	FetchedAt          time.Time       `json:"fetchedAt"`
}

// RateAdjustmentResponse defines the structure for API responses containing a stored adjustment.
type RateAdjustmentResponse struct {
	AdjustmentID       string          `json:"adjustmentID"`
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	FetchedRate        decimal.Decimal `json:"fetchedRate"`
	Adjustment         decimal.Decimal `json:"adjustment"`
	FinalRate          decimal.Decimal `json:"finalRate"`
	SetBy              string          `json:"setBy"`
	CreatedAt          time.Time       `json:"createdAt"`
	LastUpdatedAt      time.Time       `json:"lastUpdatedAt"`
}

// ToRateAdjustmentResponse converts a domain.CurrencyRateAdjustment to its response DTO.
func ToRateAdjustmentResponse(adj *domain.CurrencyRateAdjustment) RateAdjustmentResponse {
	return RateAdjustmentResponse{
		AdjustmentID:       adj.AdjustmentID,
		BaseCurrencyCode:   adj.BaseCurrencyCode,
		TargetCurrencyCode: adj.TargetCurrencyCode,
		FetchedRate:        adj.FetchedRate,
		Adjustment:         adj.Adjustment,
		FinalRate:          adj.FinalRate,
		SetBy:              adj.SetBy,
		CreatedAt:          adj.CreatedAt,
		LastUpdatedAt:      adj.LastUpdatedAt,
	}
}

// ToListRateAdjustmentResponse converts a slice of adjustments to response DTOs.
func ToListRateAdjustmentResponse(adjs []domain.CurrencyRateAdjustment) []RateAdjustmentResponse {
	responses := make([]RateAdjustmentResponse, len(adjs))
	for i := range adjs {
		responses[i] = ToRateAdjustmentResponse(&adjs[i])
	}
	return responses
}
