package quote

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iiSmitty/my-it-services/internal/metrics"
	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
	"github.com/iiSmitty/my-it-services/internal/quote/schedule"
)

// Logger provides minimal logging required by the Quote module.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// QuoteDeps groups external dependencies needed by the Quote module.
// RDB is optional; without it rate limits are kept per process.
type QuoteDeps struct {
	Catalog   *catalog.Catalog
	RDB       *redis.Client
	Logger    Logger
	Config    QuoteConfig
	Metrics   *metrics.Recorder
	Scheduler schedule.Scheduler
	module    *moduleState
}

// Validate ensures required dependencies are provided.
func (d *QuoteDeps) Validate() error {
	if d.Catalog == nil {
		return errors.New("quote deps: Catalog is required")
	}
	if d.Logger == nil {
		return errors.New("quote deps: Logger is required")
	}
	if d.Config.TokenSecret == "" {
		return errors.New("quote deps: token secret is required")
	}
	if d.Scheduler == nil {
		d.Scheduler = schedule.NewReal()
	}
	return nil
}
