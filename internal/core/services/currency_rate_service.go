package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/core/ports/providers"
	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/platform/metrics"
)

// defaultBaseCurrency is used when a rate request leaves the base empty.
const defaultBaseCurrency = "USD"

// CurrencyRateService layers admin-curated adjustments over a live FX
// provider. The stored adjustment for a pair wins; pairs with no adjustment
// fall back to the live rate.
type CurrencyRateService struct {
	rateRepo   portsrepo.CurrencyRateRepositoryFacade
	fxProvider providers.FXRateProvider
	userSvc    portssvc.UserReaderSvc
	fxTimeout  time.Duration
	metrics    *metrics.Metrics
}

// NewCurrencyRateService creates a new CurrencyRateService.
func NewCurrencyRateService(rateRepo portsrepo.CurrencyRateRepositoryFacade, fxProvider providers.FXRateProvider, userSvc portssvc.UserReaderSvc, fxTimeout time.Duration, m *metrics.Metrics) *CurrencyRateService {
	if fxTimeout <= 0 {
		fxTimeout = 5 * time.Second
	}
	return &CurrencyRateService{
		rateRepo:   rateRepo,
		fxProvider: fxProvider,
		userSvc:    userSvc,
		fxTimeout:  fxTimeout,
		metrics:    m,
	}
}

// Ensure CurrencyRateService implements portssvc.CurrencyRateSvcFacade
var _ portssvc.CurrencyRateSvcFacade = (*CurrencyRateService)(nil)

func (s *CurrencyRateService) fetchRate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fxTimeout)
	defer cancel()

	start := time.Now()
	rate, err := s.fxProvider.FetchRate(ctx, base, target)
	s.metrics.FXFetch(start, err)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: FX provider fetch for %s/%s failed: %v", apperrors.ErrInternal, base, target, err)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: provider returned %s for %s/%s", apperrors.ErrInvalidRate, rate, base, target)
	}
	return rate, nil
}

func normalizePair(base, target string) (string, string, error) {
	if base == "" {
		base = defaultBaseCurrency
	}
	if len(base) != 3 || len(target) != 3 {
		return "", "", fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if base == target {
		return "", "", fmt.Errorf("%w: base and target currency codes cannot be the same", apperrors.ErrValidation)
	}
	return base, target, nil
}

// GetCurrentRate fetches the live market rate for the pair. No caching.
func (s *CurrencyRateService) GetCurrentRate(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (*dto.RateResponse, error) {
	base, target, err := normalizePair(baseCurrencyCode, targetCurrencyCode)
	if err != nil {
		return nil, err
	}

	rate, err := s.fetchRate(ctx, base, target)
	if err != nil {
		return nil, err
	}
	return &dto.RateResponse{
		BaseCurrencyCode:   base,
		TargetCurrencyCode: target,
		FetchedRate:        rate,
		Adjustment:         decimal.Zero,
		FinalRate:          rate,
		FetchedAt:          time.Now(),
	}, nil
}

// GetAdjustedRate returns the latest stored adjustment for the pair, falling
// back to the live rate with a zero adjustment when none is stored.
func (s *CurrencyRateService) GetAdjustedRate(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (*dto.RateResponse, error) {
	base, target, err := normalizePair(baseCurrencyCode, targetCurrencyCode)
	if err != nil {
		return nil, err
	}

	adj, err := s.rateRepo.FindLatestAdjustment(ctx, base, target)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.GetCurrentRate(ctx, base, target)
		}
		return nil, err
	}
	return &dto.RateResponse{
		BaseCurrencyCode:   base,
		TargetCurrencyCode: target,
		FetchedRate:        adj.FetchedRate,
		Adjustment:         adj.Adjustment,
		FinalRate:          adj.FinalRate,
		FetchedAt:          adj.LastUpdatedAt,
	}, nil
}

// ListAdjustments retrieves the stored admin adjustments. Admin only.
func (s *CurrencyRateService) ListAdjustments(ctx context.Context, adminID string) ([]domain.CurrencyRateAdjustment, error) {
	if _, err := s.userSvc.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.rateRepo.ListAdjustments(ctx)
}

// SetRateAdjustment stores or replaces the adjustment for a pair, recording
// the current fetched rate and final = fetched + adjustment.
func (s *CurrencyRateService) SetRateAdjustment(ctx context.Context, adminID string, req dto.SetRateAdjustmentRequest) (*domain.CurrencyRateAdjustment, error) {
	if _, err := s.userSvc.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	base, target, err := normalizePair(req.BaseCurrencyCode, req.TargetCurrencyCode)
	if err != nil {
		return nil, err
	}

	fetched, err := s.fetchRate(ctx, base, target)
	if err != nil {
		return nil, err
	}

	final := fetched.Add(req.Adjustment)
	if final.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: final rate %s must be positive", apperrors.ErrValidation, final)
	}

	now := time.Now()
	adjustment := domain.CurrencyRateAdjustment{
		AdjustmentID:       uuid.NewString(),
		BaseCurrencyCode:   base,
		TargetCurrencyCode: target,
		FetchedRate:        fetched,
		Adjustment:         req.Adjustment,
		FinalRate:          final,
		SetBy:              adminID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     adminID,
			LastUpdatedAt: now,
			LastUpdatedBy: adminID,
		},
	}

	if err := s.rateRepo.UpsertAdjustment(ctx, adjustment); err != nil {
		return nil, err
	}
	return &adjustment, nil
}
