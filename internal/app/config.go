package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/laundryconnect/laundryconnect/internal/reports/render"
)

// Report engines.
const (
	EngineNative    = "native"
	EngineGotenberg = "gotenberg"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`
	AppRateLimit      int           `envconfig:"APP_RATE_LIMIT" default:"60"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// RedisAddr enables the Redis notification feed when set.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	NotifyChannel string `envconfig:"NOTIFY_CHANNEL" default:"laundryconnect:notifications"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	ReportEngine         string `envconfig:"REPORT_ENGINE" default:"native"`
	ReportCurrencySymbol string `envconfig:"REPORT_CURRENCY_SYMBOL" default:"$"`
	ReportLocale         string `envconfig:"REPORT_LOCALE" default:"en"`
	ReportCompany        string `envconfig:"REPORT_COMPANY" default:"LaundryConnect"`
	ReportRateLimit      int    `envconfig:"REPORT_RATE_LIMIT" default:"20"`

	SeedFile string `envconfig:"SEED_FILE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	c.ReportEngine = strings.ToLower(strings.TrimSpace(c.ReportEngine))
	switch c.ReportEngine {
	case EngineNative:
		if !render.Drawable(c.ReportCurrencySymbol) {
			return fmt.Errorf("currency symbol %q cannot be drawn by the native pdf engine; use the gotenberg engine", c.ReportCurrencySymbol)
		}
	case EngineGotenberg:
		if strings.TrimSpace(c.GotenbergURL) == "" {
			return errors.New("gotenberg url must be provided for the gotenberg report engine")
		}
	default:
		return fmt.Errorf("unknown report engine %q", c.ReportEngine)
	}
	if c.AppRateLimit <= 0 || c.ReportRateLimit <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

const testModeEnv = "LAUNDRY_TEST_MODE"

// InTestMode reports whether LAUNDRY_TEST_MODE asks the binaries to skip runtime startup.
func InTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	return on
}
