package repositories

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// CurrencyRateReader defines read operations for rate adjustment data
type CurrencyRateReader interface {
	// FindLatestAdjustment retrieves the most recently updated adjustment
	// row for the (base, target) pair, or apperrors.ErrNotFound.
	FindLatestAdjustment(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (*domain.CurrencyRateAdjustment, error)

	// ListAdjustments retrieves the current adjustment row of every pair.
	ListAdjustments(ctx context.Context) ([]domain.CurrencyRateAdjustment, error)
}

// CurrencyRateWriter defines write operations for rate adjustment data
type CurrencyRateWriter interface {
	// UpsertAdjustment inserts or replaces the adjustment row keyed by
	// (base, target).
	UpsertAdjustment(ctx context.Context, adjustment domain.CurrencyRateAdjustment) error
}

// CurrencyRateRepositoryFacade combines all rate-adjustment repository interfaces
type CurrencyRateRepositoryFacade interface {
	CurrencyRateReader
	CurrencyRateWriter
}
