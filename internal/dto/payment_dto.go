package dto

import (
	"github.com/shopspring/decimal"
)

// CreatePaymentIntentRequest defines the structure for starting a gateway top-up.
type CreatePaymentIntentRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Amount       decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// PaymentIntentResponse returns the gateway redirect details for a created intent.
type PaymentIntentResponse struct {
	IntentID    string `json:"intentID"`
	RedirectURL string `json:"redirectURL"`
}

// PaymentWebhookPayload is the gateway callback body. The raw request body is
// verified against the gateway signature header before this is decoded.
type PaymentWebhookPayload struct {
	IntentID     string          `json:"intentID"`
	Status       string          `json:"status"`
	UserID       string          `json:"userID"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Reference    string          `json:"reference"`
}
