// Package payment is the HTTP client for the opaque payment gateway. Intent
// creation is a single POST; settlement confirmation arrives separately via
// the signed webhook handled by the payment service.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velmora/wallet_ledger_app/internal/core/ports/providers"
	"github.com/velmora/wallet_ledger_app/internal/platform/config"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds the payment gateway client.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.PaymentBaseURL,
		apiKey:     cfg.PaymentAPIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Ensure Client implements providers.PaymentGateway
var _ providers.PaymentGateway = (*Client)(nil)

type createIntentRequest struct {
	UserID   string          `json:"userID"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type createIntentResponse struct {
	IntentID     string `json:"intentID"`
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent registers a payment of amount/currency for the user.
func (c *Client) CreateIntent(ctx context.Context, userID string, amount decimal.Decimal, currencyCode string) (*providers.PaymentIntent, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("payment gateway base URL not configured")
	}

	payload, err := json.Marshal(createIntentRequest{
		UserID:   userID,
		Amount:   amount,
		Currency: currencyCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/intents", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intent request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var body createIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode intent response: %w", err)
	}

	return &providers.PaymentIntent{
		IntentID:     body.IntentID,
		ClientSecret: body.ClientSecret,
		Amount:       amount,
		CurrencyCode: currencyCode,
	}, nil
}
