package services

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// PaymentSvc defines the payment gateway surface: intent creation and the
// webhook that credits the wallet when the gateway confirms payment.
type PaymentSvc interface {
	// CreateIntent registers a top-up intent with the gateway and returns the
	// redirect details for the client.
	CreateIntent(ctx context.Context, userID string, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error)

	// HandleWebhook verifies the gateway signature over the raw body and, for a
	// succeeded intent, deposits the amount into the user's wallet. Replayed
	// intents are ignored.
	HandleWebhook(ctx context.Context, signature string, body []byte) error
}
