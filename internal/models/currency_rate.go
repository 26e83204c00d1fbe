package models

import (
	"github.com/shopspring/decimal"
)

// CurrencyRateAdjustment is the DB row for the currency_rate_adjustments
// table. The authoritative row per (base, target) pair is selected by the
// most recent last_updated_at; final_rate carries a CHECK (> 0).
type CurrencyRateAdjustment struct {
	AdjustmentID       string          `db:"adjustment_id"`
	BaseCurrencyCode   string          `db:"base_currency_code"`
	TargetCurrencyCode string          `db:"target_currency_code"`
	FetchedRate        decimal.Decimal `db:"fetched_rate"`
	Adjustment         decimal.Decimal `db:"adjustment"`
	FinalRate          decimal.Decimal `db:"final_rate"`
	SetBy              string          `db:"set_by"`
	AuditFields
}
