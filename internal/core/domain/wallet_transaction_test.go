package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

func TestSignedAmount(t *testing.T) {
	amount := decimal.RequireFromString("12.50")

	credits := []domain.TransactionKind{
		domain.KindDeposit, domain.KindUnlock, domain.KindTransferIn, domain.KindFXConvertIn,
	}
	debits := []domain.TransactionKind{
		domain.KindWithdraw, domain.KindLock, domain.KindTransferOut, domain.KindFXConvertOut,
	}

	for _, kind := range credits {
		assert.True(t, domain.SignedAmount(kind, amount).Equal(amount), "kind %s should credit", kind)
	}
	for _, kind := range debits {
		assert.True(t, domain.SignedAmount(kind, amount).Equal(amount.Neg()), "kind %s should debit", kind)
	}
}

func TestTransactionMetadataIsZero(t *testing.T) {
	assert.True(t, domain.TransactionMetadata{}.IsZero())
	assert.False(t, domain.TransactionMetadata{Lock: &domain.LockMetadata{Reason: "manual"}}.IsZero())
}
