package mapping

import (
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/models"
)

// ToModelBankAccount converts a domain BankAccount to a model BankAccount
func ToModelBankAccount(d domain.BankAccount) models.BankAccount {
	return models.BankAccount{
		BankAccountID: d.BankAccountID,
		UserID:        d.UserID,
		Name:          d.Name,
		HolderName:    d.HolderName,
		CurrencyCode:  d.CurrencyCode,
		IBAN:          d.IBAN,
		SwiftBIC:      d.SwiftBIC,
		Direction:     string(d.Direction),
		Sequence:      d.Sequence,
		Note:          d.Note,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankAccount converts a model BankAccount to a domain BankAccount
func ToDomainBankAccount(m models.BankAccount) domain.BankAccount {
	return domain.BankAccount{
		BankAccountID: m.BankAccountID,
		UserID:        m.UserID,
		Name:          m.Name,
		HolderName:    m.HolderName,
		CurrencyCode:  m.CurrencyCode,
		IBAN:          m.IBAN,
		SwiftBIC:      m.SwiftBIC,
		Direction:     domain.BankAccountDirection(m.Direction),
		Sequence:      m.Sequence,
		Note:          m.Note,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBankAccountSlice converts a slice of model rows.
func ToDomainBankAccountSlice(ms []models.BankAccount) []domain.BankAccount {
	out := make([]domain.BankAccount, len(ms))
	for i, m := range ms {
		out[i] = ToDomainBankAccount(m)
	}
	return out
}
