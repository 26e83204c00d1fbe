package services

import (
	"github.com/velmora/wallet_ledger_app/internal/core/ports/providers"
	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/platform/config"
	"github.com/velmora/wallet_ledger_app/internal/platform/metrics"
)

// Providers bundles the outbound adapters the services need.
type Providers struct {
	FXRate         providers.FXRateProvider
	PaymentGateway providers.PaymentGateway
	BlobStore      providers.BlobStore
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, provs Providers, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// User service first: it carries the admin capability check the
	// privileged services depend on.
	userSvc := NewUserService(repos.UserRepo)
	container.User = userSvc

	container.Auth = NewAuthService(cfg, repos.UserRepo)

	rateSvc := NewCurrencyRateService(repos.CurrencyRateRepo, provs.FXRate, userSvc, cfg.FXTimeout, m)
	container.CurrencyRate = rateSvc

	walletSvc := NewWalletService(repos.WalletRepo, repos.UserRepo, rateSvc, m)
	container.Wallet = walletSvc

	container.Receipt = NewReceiptService(repos.ReceiptRepo, repos.BankAccountRepo, userSvc, walletSvc, m)
	container.BankAccount = NewBankAccountService(repos.BankAccountRepo)
	container.Upload = NewUploadService(provs.BlobStore, cfg.UploadDir, cfg.UploadWorkers, m)
	container.Payment = NewPaymentService(provs.PaymentGateway, walletSvc, cfg.PaymentWebhookSecret)

	return container
}
