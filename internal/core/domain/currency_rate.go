package domain

import (
	"github.com/shopspring/decimal"
)

// CurrencyRateAdjustment is the most recent manually-curated FX rate for a
// currency pair: the raw fetched market rate plus an admin-set delta. The
// authoritative row per (base, target) is the one with the latest update
// timestamp. FinalRate is always strictly positive.
type CurrencyRateAdjustment struct {
	AdjustmentID       string          `json:"adjustmentID"` // Primary Key (UUID)
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	FetchedRate        decimal.Decimal `json:"fetchedRate"` // External rate at set time
	Adjustment         decimal.Decimal `json:"adjustment"`  // Can be negative
	FinalRate          decimal.Decimal `json:"finalRate"`   // FetchedRate + Adjustment
	SetBy              string          `json:"setBy"`       // Admin UserID
	AuditFields
}
