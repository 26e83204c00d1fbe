package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/models"
)

// ToModelWallet converts a domain Wallet to a model Wallet
func ToModelWallet(d domain.Wallet) models.Wallet {
	return models.Wallet{
		WalletID:         d.WalletID,
		UserID:           d.UserID,
		CurrencyCode:     d.CurrencyCode,
		WalletType:       string(d.WalletType),
		AvailableBalance: d.AvailableBalance,
		LockedBalance:    d.LockedBalance,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWallet converts a model Wallet to a domain Wallet
func ToDomainWallet(m models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID:         m.WalletID,
		UserID:           m.UserID,
		CurrencyCode:     m.CurrencyCode,
		WalletType:       domain.WalletType(m.WalletType),
		AvailableBalance: m.AvailableBalance,
		LockedBalance:    m.LockedBalance,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelWalletTransaction converts a domain WalletTransaction to its DB row,
// JSON-encoding the typed metadata sum for the JSONB column.
func ToModelWalletTransaction(d domain.WalletTransaction) (models.WalletTransaction, error) {
	var meta []byte
	if !d.Metadata.IsZero() {
		var err error
		meta, err = json.Marshal(d.Metadata)
		if err != nil {
			return models.WalletTransaction{}, fmt.Errorf("failed to encode transaction metadata: %w", err)
		}
	}
	return models.WalletTransaction{
		TransactionID: d.TransactionID,
		WalletID:      d.WalletID,
		UserID:        d.UserID,
		Kind:          string(d.Kind),
		Amount:        d.Amount,
		CurrencyCode:  d.CurrencyCode,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		ReceiptID:     d.ReceiptID,
		Metadata:      meta,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainWalletTransaction converts a model WalletTransaction to a domain one.
func ToDomainWalletTransaction(m models.WalletTransaction) (domain.WalletTransaction, error) {
	var meta domain.TransactionMetadata
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &meta); err != nil {
			return domain.WalletTransaction{}, fmt.Errorf("failed to decode transaction metadata for %s: %w", m.TransactionID, err)
		}
	}
	return domain.WalletTransaction{
		TransactionID: m.TransactionID,
		WalletID:      m.WalletID,
		UserID:        m.UserID,
		Kind:          domain.TransactionKind(m.Kind),
		Amount:        m.Amount,
		CurrencyCode:  m.CurrencyCode,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReceiptID:     m.ReceiptID,
		Metadata:      meta,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToDomainWalletTransactionSlice converts a slice of model rows, failing on
// the first undecodable metadata blob.
func ToDomainWalletTransactionSlice(ms []models.WalletTransaction) ([]domain.WalletTransaction, error) {
	out := make([]domain.WalletTransaction, len(ms))
	for i, m := range ms {
		d, err := ToDomainWalletTransaction(m)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
