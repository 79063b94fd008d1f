package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	// External collaborators. Empty base URLs are allowed; calls then fail
	// at the network layer.
	CentralAPIURL      string `env:"CENTRAL_SYSTEM_API_URL"`
	CentralFrontendURL string `env:"CENTRAL_SYSTEM_FRONTEND_URL" envDefault:"http://localhost:3001"`
	TrainingAPIURL     string `env:"TRAINING_API_URL"`
	PublicURL          string `env:"TRAINING_URL" envDefault:"http://localhost:3000"`
	ProfileLookupPath  string `env:"CENTRAL_PROFILE_LOOKUP_PATH" envDefault:"/auth/access/request/external/profile"`

	HTTPTimeout time.Duration `env:"OUTBOUND_HTTP_TIMEOUT" envDefault:"15s"`

	// TrustProxyHeaders keys client IPs on X-Forwarded-For / X-Real-IP. Enable
	// only behind a proxy that overwrites them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Routing policy.
	ProtectedPrefixes []string `env:"PROTECTED_PATH_PREFIXES" envSeparator:"," envDefault:"/trainee,/training-executive,/supreme,/select-training,/settings"`
	SignInPath        string   `env:"SIGN_IN_PATH" envDefault:"/signin"`
	DefaultRoute      string   `env:"DEFAULT_AUTHENTICATED_ROUTE" envDefault:"/trainee"`
	InterviewRoute    string   `env:"INTERVIEW_ROUTE" envDefault:"/trainee/interview-questions"`

	// Cookie lifetimes and UX pacing.
	CredentialMaxAge time.Duration `env:"AUTH_COOKIE_MAX_AGE" envDefault:"5h"`
	TransferMaxAge   time.Duration `env:"PROFILE_TRANSFER_MAX_AGE" envDefault:"600s"`
	PacingDelay      time.Duration `env:"PACING_DELAY" envDefault:"1s"`
	SignInDelay      time.Duration `env:"SIGN_IN_REDIRECT_DELAY" envDefault:"2s"`

	SchemaCacheSize int           `env:"SCHEMA_CACHE_SIZE" envDefault:"64"`
	SchemaCacheTTL  time.Duration `env:"SCHEMA_CACHE_TTL" envDefault:"5m"`

	// Optional S3 offload for uploaded profile pictures.
	AWSRegion           string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL      string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID      string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey        string `env:"AWS_SECRET_ACCESS_KEY"`
	AttachmentBucket    string `env:"ATTACHMENT_BUCKET"`
	AttachmentPublicURL string `env:"ATTACHMENT_PUBLIC_URL"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool { return c.AppEnv == "production" }
