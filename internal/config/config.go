// Package config loads operational configuration from the environment, per
// §6's Operational Config table. Loading, validation, and process
// supervision are explicitly out of the bridge's core scope (spec.md §1),
// but a real deployment still needs exactly this ambient plumbing.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full set of environment-derived settings. Zero/empty values
// for optional adapters (transcript store, SMS, email) mean that adapter
// runs as a no-op, per §6: "in development, placeholder values are
// tolerated and the corresponding adapter turns into a no-op."
type Config struct {
	Port        int    `envconfig:"PORT" default:"3000"`
	NodeEnv     string `envconfig:"NODE_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	PublicHost  string `envconfig:"PUBLIC_HOST" default:"localhost:3000"`

	LLMAPIKey string `envconfig:"LLM_API_KEY"`
	LLMVoice  string `envconfig:"LLM_VOICE" default:"shimmer"`

	CarrierAccountSID string `envconfig:"CARRIER_ACCOUNT_SID"`
	CarrierAuthToken  string `envconfig:"CARRIER_AUTH_TOKEN"`
	CarrierNumber     string `envconfig:"CARRIER_NUMBER"`

	BackendBaseURL     string `envconfig:"BACKEND_BASE_URL"`
	BackendClientID    string `envconfig:"BACKEND_CLIENT_ID"`
	BackendClientSecret string `envconfig:"BACKEND_CLIENT_SECRET"`
	BackendRefreshToken string `envconfig:"BACKEND_REFRESH_TOKEN"`

	TranscriptStoreURL string `envconfig:"TRANSCRIPT_STORE_URL"`
	TranscriptStoreKey string `envconfig:"TRANSCRIPT_STORE_KEY"`

	RedisURL string `envconfig:"REDIS_URL"`

	SMTPHost string `envconfig:"SMTP_HOST"`
	SMTPFrom string `envconfig:"SMTP_FROM"`
	ShopName string `envconfig:"SHOP_NAME" default:"当店"`

	TracingEnabled bool `envconfig:"TRACING_ENABLED" default:"false"`
}

// IsProduction reports whether NodeEnv names a production deployment.
func (c Config) IsProduction() bool { return c.NodeEnv == "production" }

// Load reads an optional .env file (development convenience, matching the
// teacher's cmd/main.go) then populates Config from the process
// environment. In production, missing LLM/carrier/backend credentials abort
// start-up per §6; in development they are tolerated.
func Load() (Config, error) {
	_ = godotenv.Load() // no .env file is not an error

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: process environment: %w", err)
	}

	if cfg.IsProduction() {
		missing := []string{}
		if cfg.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if cfg.CarrierAccountSID == "" {
			missing = append(missing, "CARRIER_ACCOUNT_SID")
		}
		if cfg.BackendBaseURL == "" {
			missing = append(missing, "BACKEND_BASE_URL")
		}
		if len(missing) > 0 {
			return Config{}, fmt.Errorf("config: missing required production settings: %v", missing)
		}
	}

	return cfg, nil
}
