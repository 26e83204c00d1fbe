package services

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// CurrencyRateReaderSvc defines read operations for exchange rates
type CurrencyRateReaderSvc interface {
	// GetCurrentRate fetches the live market rate for the pair from the FX
	// provider. No caching; provider failures are retryable.
	GetCurrentRate(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (*dto.RateResponse, error)

	// GetAdjustedRate returns the latest stored adjustment for the pair, or
	// the live rate with a zero adjustment when none is stored. An empty
	// base defaults to USD.
	GetAdjustedRate(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (*dto.RateResponse, error)

	// ListAdjustments retrieves the stored admin adjustments. Admin only.
	ListAdjustments(ctx context.Context, adminID string) ([]domain.CurrencyRateAdjustment, error)
}

// CurrencyRateWriterSvc defines admin operations on rate adjustments
type CurrencyRateWriterSvc interface {
	// SetRateAdjustment stores or replaces the adjustment for a currency
	// pair, recording the fetched rate and final = fetched + adjustment.
	// Admin only; a non-positive final rate is rejected.
	SetRateAdjustment(ctx context.Context, adminID string, req dto.SetRateAdjustmentRequest) (*domain.CurrencyRateAdjustment, error)
}

// CurrencyRateSvcFacade combines all rate-related service interfaces
type CurrencyRateSvcFacade interface {
	CurrencyRateReaderSvc
	CurrencyRateWriterSvc
}
