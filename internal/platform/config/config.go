package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Redis (optional; enables the redis-backed rate limit store)
	RedisURL string

	// FX provider
	FXBaseURL           string
	FXAPIKey            string
	FXTimeout           time.Duration
	FXOAuthTokenURL     string
	FXOAuthClientID     string
	FXOAuthClientSecret string

	// Payment gateway
	PaymentBaseURL       string
	PaymentAPIKey        string
	PaymentWebhookSecret string

	// Uploads
	UploadDir             string
	BlobDir               string
	BlobBaseURL           string
	UploadMemoryThreshold int64
	UploadDiskThreshold   int64
	UploadWorkers         int

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "wallet-ledger-app")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("FX_BASE_URL", "")
	viper.SetDefault("FX_API_KEY", "")
	viper.SetDefault("FX_TIMEOUT", "5s")
	viper.SetDefault("FX_OAUTH_TOKEN_URL", "")
	viper.SetDefault("FX_OAUTH_CLIENT_ID", "")
	viper.SetDefault("FX_OAUTH_CLIENT_SECRET", "")
	viper.SetDefault("PAYMENT_BASE_URL", "")
	viper.SetDefault("PAYMENT_API_KEY", "")
	viper.SetDefault("PAYMENT_WEBHOOK_SECRET", "")
	viper.SetDefault("UPLOAD_DIR", "/tmp/wla-uploads")
	viper.SetDefault("BLOB_DIR", "/tmp/wla-blobs")
	viper.SetDefault("BLOB_BASE_URL", "http://localhost:8080/files")
	viper.SetDefault("UPLOAD_MEMORY_THRESHOLD", int64(8<<20))
	viper.SetDefault("UPLOAD_DISK_THRESHOLD", int64(64<<20))
	viper.SetDefault("UPLOAD_WORKERS", 4)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RedisURL = viper.GetString("REDIS_URL")

	cfg.FXBaseURL = viper.GetString("FX_BASE_URL")
	if cfg.FXBaseURL == "" {
		log.Println("Warning: FX_BASE_URL not set. Live rate fetches will fail.")
	}
	cfg.FXAPIKey = viper.GetString("FX_API_KEY")

	fxTimeoutStr := viper.GetString("FX_TIMEOUT")
	fxTimeout, err := time.ParseDuration(fxTimeoutStr)
	if err != nil {
		fxTimeout = 5 * time.Second
		log.Printf("Warning: Invalid value for FX_TIMEOUT ('%s'). Defaulting to %s.\n", fxTimeoutStr, fxTimeout.String())
	}
	cfg.FXTimeout = fxTimeout

	cfg.FXOAuthTokenURL = viper.GetString("FX_OAUTH_TOKEN_URL")
	cfg.FXOAuthClientID = viper.GetString("FX_OAUTH_CLIENT_ID")
	cfg.FXOAuthClientSecret = viper.GetString("FX_OAUTH_CLIENT_SECRET")

	cfg.PaymentBaseURL = viper.GetString("PAYMENT_BASE_URL")
	cfg.PaymentAPIKey = viper.GetString("PAYMENT_API_KEY")
	cfg.PaymentWebhookSecret = viper.GetString("PAYMENT_WEBHOOK_SECRET")
	if cfg.PaymentWebhookSecret == "" {
		log.Println("Warning: PAYMENT_WEBHOOK_SECRET not set. Webhook verification will reject all calls.")
	}

	cfg.UploadDir = viper.GetString("UPLOAD_DIR")
	cfg.BlobDir = viper.GetString("BLOB_DIR")
	cfg.BlobBaseURL = viper.GetString("BLOB_BASE_URL")
	cfg.UploadMemoryThreshold = viper.GetInt64("UPLOAD_MEMORY_THRESHOLD")
	cfg.UploadDiskThreshold = viper.GetInt64("UPLOAD_DISK_THRESHOLD")
	cfg.UploadWorkers = viper.GetInt("UPLOAD_WORKERS")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
