package mapping

import (
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/models"
)

// ToModelReceipt converts a domain Receipt to a model Receipt
func ToModelReceipt(d domain.Receipt) models.Receipt {
	return models.Receipt{
		ReceiptID:         d.ReceiptID,
		UserID:            d.UserID,
		SenderAccountID:   d.SenderAccountID,
		ReceiverAccountID: d.ReceiverAccountID,
		Amount:            d.Amount,
		OverrideAmount:    d.OverrideAmount,
		CurrencyCode:      d.CurrencyCode,
		Status:            string(d.Status),
		IsLock:            d.IsLock,
		ApprovedBy:        d.ApprovedBy,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReceipt converts a model Receipt to a domain Receipt
func ToDomainReceipt(m models.Receipt) domain.Receipt {
	return domain.Receipt{
		ReceiptID:         m.ReceiptID,
		UserID:            m.UserID,
		SenderAccountID:   m.SenderAccountID,
		ReceiverAccountID: m.ReceiverAccountID,
		Amount:            m.Amount,
		OverrideAmount:    m.OverrideAmount,
		CurrencyCode:      m.CurrencyCode,
		Status:            domain.ReceiptStatus(m.Status),
		IsLock:            m.IsLock,
		ApprovedBy:        m.ApprovedBy,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainReceiptSlice converts a slice of model rows.
func ToDomainReceiptSlice(ms []models.Receipt) []domain.Receipt {
	out := make([]domain.Receipt, len(ms))
	for i, m := range ms {
		out[i] = ToDomainReceipt(m)
	}
	return out
}
