package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/core/ports/providers"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
)

// PaymentService bridges the opaque payment gateway to the wallet engine.
// Wallet credits happen only from the signed webhook, never at intent
// creation.
type PaymentService struct {
	gateway       providers.PaymentGateway
	walletSvc     portssvc.WalletWriterSvc
	webhookSecret string

	mu        sync.Mutex
	processed map[string]bool // intent IDs already credited (replay guard)
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(gateway providers.PaymentGateway, walletSvc portssvc.WalletWriterSvc, webhookSecret string) *PaymentService {
	return &PaymentService{
		gateway:       gateway,
		walletSvc:     walletSvc,
		webhookSecret: webhookSecret,
		processed:     make(map[string]bool),
	}
}

// Ensure PaymentService implements portssvc.PaymentSvc
var _ portssvc.PaymentSvc = (*PaymentService)(nil)

// CreateIntent registers a top-up intent with the gateway.
func (s *PaymentService) CreateIntent(ctx context.Context, userID string, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	intent, err := s.gateway.CreateIntent(ctx, userID, req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: payment gateway intent creation failed: %v", apperrors.ErrInternal, err)
	}
	return &dto.PaymentIntentResponse{
		IntentID:    intent.IntentID,
		RedirectURL: intent.ClientSecret,
	}, nil
}

// VerifySignature checks the hex HMAC-SHA256 of body against the shared
// webhook secret.
func (s *PaymentService) VerifySignature(signature string, body []byte) bool {
	if s.webhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleWebhook verifies the gateway signature over the raw body and, for a
// succeeded intent, deposits the amount into the user's wallet. Replayed
// intents and non-success statuses never mutate a wallet.
func (s *PaymentService) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !s.VerifySignature(signature, body) {
		return fmt.Errorf("%w: invalid webhook signature", apperrors.ErrUnauthorized)
	}

	var payload dto.PaymentWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: malformed webhook payload", apperrors.ErrValidation)
	}
	if payload.IntentID == "" || payload.UserID == "" {
		return fmt.Errorf("%w: webhook payload missing intent or user", apperrors.ErrValidation)
	}

	if payload.Status != "succeeded" {
		logger.Info("Payment webhook ignored",
			slog.String("intent_id", payload.IntentID),
			slog.String("status", payload.Status),
		)
		return nil
	}

	s.mu.Lock()
	if s.processed[payload.IntentID] {
		s.mu.Unlock()
		logger.Info("Payment webhook replayed, ignoring", slog.String("intent_id", payload.IntentID))
		return nil
	}
	s.processed[payload.IntentID] = true
	s.mu.Unlock()

	_, err := s.walletSvc.Deposit(ctx, payload.UserID, dto.DepositRequest{
		CurrencyCode: payload.CurrencyCode,
		WalletType:   domain.WalletTypePersonal,
		Amount:       payload.Amount,
		Metadata: &dto.DepositMetadataBody{
			Source:    "payment_gateway",
			Reference: payload.IntentID,
		},
	}, payload.UserID)
	if err != nil {
		// Allow a later retry of the same intent after a failed credit.
		s.mu.Lock()
		delete(s.processed, payload.IntentID)
		s.mu.Unlock()
		return err
	}

	logger.Info("Payment credited",
		slog.String("intent_id", payload.IntentID),
		slog.String("user_id", payload.UserID),
		slog.String("amount", payload.Amount.String()),
	)
	return nil
}
