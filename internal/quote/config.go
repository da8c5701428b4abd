package quote

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/iiSmitty/my-it-services/internal/ratelimit"
)

const (
	defaultCatalogPath     = "config/catalog.yaml"
	defaultSubmitDelay     = time.Second
	defaultResetDelay      = 3 * time.Second
	defaultNotificationTTL = 5 * time.Second
	defaultRetention       = 5 * time.Minute
	defaultTokenTTL        = 10 * time.Minute
	defaultRatePerMinute   = 30
	defaultRateBurst       = 10
	defaultSweepInterval   = time.Minute
)

// QuoteConfig holds runtime configuration for the Quote module.
type QuoteConfig struct {
	CatalogPath     string
	SubmitDelay     time.Duration
	ResetDelay      time.Duration
	NotificationTTL time.Duration
	Retention       time.Duration
	TokenSecret     string
	TokenTTL        time.Duration
	RatePerMinute   int
	RateBurst       int
	SweepInterval   time.Duration
	TrustedProxies  ratelimit.Proxies
	RedisAddr       string
}

// LoadQuoteConfig reads configuration from environment variables and applies defaults.
func LoadQuoteConfig() (QuoteConfig, error) {
	cfg := QuoteConfig{
		CatalogPath:     defaultCatalogPath,
		SubmitDelay:     defaultSubmitDelay,
		ResetDelay:      defaultResetDelay,
		NotificationTTL: defaultNotificationTTL,
		Retention:       defaultRetention,
		TokenTTL:        defaultTokenTTL,
		RatePerMinute:   defaultRatePerMinute,
		RateBurst:       defaultRateBurst,
		SweepInterval:   defaultSweepInterval,
	}

	if v := os.Getenv("QUOTE_CONFIG"); v != "" {
		cfg.CatalogPath = v
	}

	if v, err := readIntEnv("QUOTE_SUBMIT_DELAY_MS"); err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_SUBMIT_DELAY_MS: %w", err)
	} else if v != nil {
		cfg.SubmitDelay = time.Duration(*v) * time.Millisecond
	}

	if v, err := readIntEnv("QUOTE_RESET_DELAY_MS"); err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_RESET_DELAY_MS: %w", err)
	} else if v != nil {
		cfg.ResetDelay = time.Duration(*v) * time.Millisecond
	}

	if v, err := readIntEnv("QUOTE_NOTIFICATION_TTL_MS"); err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_NOTIFICATION_TTL_MS: %w", err)
	} else if v != nil {
		cfg.NotificationTTL = time.Duration(*v) * time.Millisecond
	}

	if v, err := readIntEnv("QUOTE_RETENTION_SECONDS"); err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_RETENTION_SECONDS: %w", err)
	} else if v != nil {
		cfg.Retention = time.Duration(*v) * time.Second
	}

	if v, err := readIntEnv("QUOTE_TOKEN_TTL_SECONDS"); err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_TOKEN_TTL_SECONDS: %w", err)
	} else if v != nil {
		cfg.TokenTTL = time.Duration(*v) * time.Second
	}

	if v, err := readIntEnv("QUOTE_RATE_PER_MINUTE"); err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_RATE_PER_MINUTE: %w", err)
	} else if v != nil {
		cfg.RatePerMinute = *v
	}

	if v, err := readIntEnv("QUOTE_RATE_BURST"); err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_RATE_BURST: %w", err)
	} else if v != nil {
		cfg.RateBurst = *v
	}

	if v := os.Getenv("QUOTE_SWEEP_INTERVAL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return QuoteConfig{}, fmt.Errorf("parse QUOTE_SWEEP_INTERVAL_SECONDS: %w", err)
		}
		cfg.SweepInterval = time.Duration(secs) * time.Second
	}

	cfg.TokenSecret = os.Getenv("QUOTE_TOKEN_SECRET")
	if cfg.TokenSecret == "" {
		return QuoteConfig{}, fmt.Errorf("QUOTE_TOKEN_SECRET is required")
	}
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")

	proxies, err := ratelimit.ParseProxies(os.Getenv("QUOTE_TRUSTED_PROXIES"))
	if err != nil {
		return QuoteConfig{}, fmt.Errorf("parse QUOTE_TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	if cfg.SubmitDelay <= 0 || cfg.ResetDelay <= 0 || cfg.NotificationTTL <= 0 || cfg.Retention <= 0 {
		return QuoteConfig{}, fmt.Errorf("submission timings must be positive")
	}
	if cfg.TokenTTL <= 0 || cfg.SweepInterval <= 0 {
		return QuoteConfig{}, fmt.Errorf("token ttl and sweep interval must be positive")
	}
	if cfg.RatePerMinute <= 0 || cfg.RateBurst <= 0 {
		return QuoteConfig{}, fmt.Errorf("rate limit values must be positive")
	}
	if cfg.Retention <= cfg.NotificationTTL || cfg.Retention <= cfg.ResetDelay {
		return QuoteConfig{}, fmt.Errorf("QUOTE_RETENTION_SECONDS must exceed QUOTE_NOTIFICATION_TTL_MS and QUOTE_RESET_DELAY_MS")
	}

	return cfg, nil
}

func readIntEnv(name string) (*int, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
