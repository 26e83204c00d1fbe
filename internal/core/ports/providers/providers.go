// Package providers declares the outbound dependencies the core treats as
// opaque: the FX rate API, the payment-intent gateway and the blob store.
// Adapters live under internal/adapters.
package providers

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
)

// FXRateProvider fetches live market rates. Calls must be bounded by the
// caller's context; failures are retryable and never partially applied.
type FXRateProvider interface {
	// FetchRate returns the positive market rate from base to target.
	FetchRate(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (decimal.Decimal, error)
}

// PaymentIntent is the client-confirmable handle returned by the gateway.
type PaymentIntent struct {
	IntentID     string
	ClientSecret string
	Amount       decimal.Decimal
	CurrencyCode string
}

// PaymentGateway is the opaque payment provider. Wallet credits happen only
// after its signed webhook confirms success, never at intent creation.
type PaymentGateway interface {
	// CreateIntent registers a payment of amount/currency for the user.
	CreateIntent(ctx context.Context, userID string, amount decimal.Decimal, currencyCode string) (*PaymentIntent, error)
}

// BlobStore is the opaque object store used by the upload pipeline.
type BlobStore interface {
	// Put stores the stream under key and returns a resolvable URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// GetStream opens the stored object for reading.
	GetStream(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the stored object.
	Delete(ctx context.Context, key string) error
}
