// Package fx is the HTTP client for the external exchange-rate API. The API
// is treated as opaque: GET {base_url}/rates?base=X&target=Y returning a JSON
// body with the rate. Authentication is either an API-key header or an OAuth2
// client-credentials token source, depending on configuration.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/velmora/wallet_ledger_app/internal/core/ports/providers"
	"github.com/velmora/wallet_ledger_app/internal/platform/config"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds the FX provider client. When the FX_OAUTH_* settings are
// present the underlying http.Client carries a client-credentials token
// source; otherwise requests are signed with the API-key header.
func NewClient(cfg *config.Config) *Client {
	httpClient := &http.Client{Timeout: cfg.FXTimeout}

	if cfg.FXOAuthTokenURL != "" && cfg.FXOAuthClientID != "" {
		ccfg := clientcredentials.Config{
			ClientID:     cfg.FXOAuthClientID,
			ClientSecret: cfg.FXOAuthClientSecret,
			TokenURL:     cfg.FXOAuthTokenURL,
		}
		httpClient = ccfg.Client(context.Background())
		httpClient.Timeout = cfg.FXTimeout
	}

	return &Client{
		baseURL:    cfg.FXBaseURL,
		apiKey:     cfg.FXAPIKey,
		httpClient: httpClient,
	}
}

// Ensure Client implements providers.FXRateProvider
var _ providers.FXRateProvider = (*Client)(nil)

type rateResponse struct {
	Base   string          `json:"base"`
	Target string          `json:"target"`
	Rate   decimal.Decimal `json:"rate"`
	AsOf   time.Time       `json:"asOf"`
}

// FetchRate returns the market rate from base to target.
func (c *Client) FetchRate(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (decimal.Decimal, error) {
	if c.baseURL == "" {
		return decimal.Zero, fmt.Errorf("fx provider base URL not configured")
	}

	endpoint := fmt.Sprintf("%s/rates?base=%s&target=%s",
		c.baseURL, url.QueryEscape(baseCurrencyCode), url.QueryEscape(targetCurrencyCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build fx request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fx provider returned status %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode fx response: %w", err)
	}
	return body.Rate, nil
}
