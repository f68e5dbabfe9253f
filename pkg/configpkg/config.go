// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settlement policies decide when a created payment intent may be credited.
const (
	SettlementAlwaysConfirm    = "always_confirm"
	SettlementRequireSucceeded = "require_succeeded"
)

// Credit modes decide how a confirmed deposit is written to the balance authority.
const (
	CreditModeLedger    = "ledger"
	CreditModeOverwrite = "overwrite"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
// Every binary reads the same struct and uses the part it needs.
type Config struct {
	Environement  string `mapstructure:"GO_ENV"`
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DBSource      string `mapstructure:"DB_SOURCE"`

	BalanceServiceURL string        `mapstructure:"BALANCE_SERVICE_URL"`
	DepositServiceURL string        `mapstructure:"DEPOSIT_SERVICE_URL"`
	GatewayURL        string        `mapstructure:"GATEWAY_URL"`
	ProxyTimeout      time.Duration `mapstructure:"PROXY_TIMEOUT"`
	ServiceTimeout    time.Duration `mapstructure:"SERVICE_TIMEOUT"`

	// CORSAllowedOrigins and FrontendURL are the browser origins the gateway
	// accepts in production. Other environments accept any origin.
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	FrontendURL        string   `mapstructure:"FRONTEND_URL"`

	StripeSecretKey         string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeAPIURL            string        `mapstructure:"STRIPE_API_URL"`
	StripeTestPaymentMethod string        `mapstructure:"STRIPE_TEST_PAYMENT_METHOD"`
	PaymentTimeout          time.Duration `mapstructure:"PAYMENT_TIMEOUT"`
	SettlementPolicy        string        `mapstructure:"SETTLEMENT_POLICY"`
	CreditMode              string        `mapstructure:"CREDIT_MODE"`
	MinDepositAmount        int64         `mapstructure:"MIN_DEPOSIT_AMOUNT"`
	DefaultCurrency         string        `mapstructure:"DEFAULT_CURRENCY"`

	ReconcileInterval    time.Duration `mapstructure:"RECONCILE_INTERVAL"`
	ReconcileBatchSize   int32         `mapstructure:"RECONCILE_BATCH_SIZE"`
	ReconcileGracePeriod time.Duration `mapstructure:"RECONCILE_GRACE_PERIOD"`

	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int    `mapstructure:"REDIS_DB"`
	OutboxKey            string `mapstructure:"OUTBOX_KEY"`
	MaxProvisionAttempts int    `mapstructure:"MAX_PROVISION_ATTEMPTS"`
}

var defaults = map[string]any{
	"GO_ENV":                     "production",
	"SERVER_ADDRESS":             "0.0.0.0:8080",
	"DB_DRIVER":                  "postgres",
	"DB_SOURCE":                  "",
	"BALANCE_SERVICE_URL":        "http://balance-service:3000",
	"DEPOSIT_SERVICE_URL":        "http://deposit-service:3001",
	"GATEWAY_URL":                "http://api-gateway:3002",
	"PROXY_TIMEOUT":              30 * time.Second,
	"SERVICE_TIMEOUT":            10 * time.Second,
	"CORS_ALLOWED_ORIGINS":       "http://localhost:3000,http://localhost:3003,http://localhost:3004",
	"FRONTEND_URL":               "",
	"STRIPE_SECRET_KEY":          "",
	"STRIPE_API_URL":             "",
	"STRIPE_TEST_PAYMENT_METHOD": "",
	"PAYMENT_TIMEOUT":            30 * time.Second,
	"SETTLEMENT_POLICY":          SettlementAlwaysConfirm,
	"CREDIT_MODE":                CreditModeLedger,
	"MIN_DEPOSIT_AMOUNT":         50,
	"DEFAULT_CURRENCY":           "usd",
	"RECONCILE_INTERVAL":         time.Minute,
	"RECONCILE_BATCH_SIZE":       50,
	"RECONCILE_GRACE_PERIOD":     30 * time.Second,
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"OUTBOX_KEY":                 "provisioning:outbox",
	"MAX_PROVISION_ATTEMPTS":     10,
}

// Load reads configuration from file or environment variables.
//
// The file is optional; environment variables override it.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

// Validate checks that the switches hold known values.
func (c Config) Validate() error {
	switch c.SettlementPolicy {
	case SettlementAlwaysConfirm, SettlementRequireSucceeded:
	default:
		return fmt.Errorf("unknown SETTLEMENT_POLICY %q", c.SettlementPolicy)
	}

	switch c.CreditMode {
	case CreditModeLedger, CreditModeOverwrite:
	default:
		return fmt.Errorf("unknown CREDIT_MODE %q", c.CreditMode)
	}

	if c.MinDepositAmount <= 0 {
		return fmt.Errorf("MIN_DEPOSIT_AMOUNT must be positive, got %d", c.MinDepositAmount)
	}

	for _, origin := range c.AllowedOrigins() {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS origin %q must start with http:// or https://", origin)
		}
	}

	return nil
}

// IsProduction reports whether the binaries run in production.
func (c Config) IsProduction() bool {
	return c.Environement == "production"
}

// AllowedOrigins returns the configured CORS origins with the front-end url appended.
func (c Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSAllowedOrigins)+1)

	for _, origin := range c.CORSAllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}

	return origins
}
