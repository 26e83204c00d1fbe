package mapping

import (
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/models"
)

// ToModelCurrencyRateAdjustment converts a domain adjustment to its DB row
func ToModelCurrencyRateAdjustment(d domain.CurrencyRateAdjustment) models.CurrencyRateAdjustment {
	return models.CurrencyRateAdjustment{
		AdjustmentID:       d.AdjustmentID,
		BaseCurrencyCode:   d.BaseCurrencyCode,
		TargetCurrencyCode: d.TargetCurrencyCode,
		FetchedRate:        d.FetchedRate,
		Adjustment:         d.Adjustment,
		FinalRate:          d.FinalRate,
		SetBy:              d.SetBy,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCurrencyRateAdjustment converts a DB row to the domain adjustment
func ToDomainCurrencyRateAdjustment(m models.CurrencyRateAdjustment) domain.CurrencyRateAdjustment {
	return domain.CurrencyRateAdjustment{
		AdjustmentID:       m.AdjustmentID,
		BaseCurrencyCode:   m.BaseCurrencyCode,
		TargetCurrencyCode: m.TargetCurrencyCode,
		FetchedRate:        m.FetchedRate,
		Adjustment:         m.Adjustment,
		FinalRate:          m.FinalRate,
		SetBy:              m.SetBy,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}
