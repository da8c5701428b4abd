package quote

import (
	"context"
	"net/http"
	"time"

	quotehttp "github.com/iiSmitty/my-it-services/internal/quote/http"
	"github.com/iiSmitty/my-it-services/internal/quote/message"
	"github.com/iiSmitty/my-it-services/internal/quote/pricing"
	"github.com/iiSmitty/my-it-services/internal/quote/submission"
	"github.com/iiSmitty/my-it-services/internal/quote/ws"
	"github.com/iiSmitty/my-it-services/internal/ratelimit"
	"github.com/iiSmitty/my-it-services/utils"
)

type moduleState struct {
	composer    *message.Composer
	hub         *ws.Hub
	submissions *submission.Service
	server      *quotehttp.Server
	tokens      *utils.Manager
	limiter     ratelimit.Limiter
	buckets     *ratelimit.Memory
	cfg         QuoteConfig
}

func ensureModule(deps *QuoteDeps) (*moduleState, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if deps.module != nil {
		return deps.module, nil
	}

	rule, err := pricing.CompileRule(deps.Catalog.DiscountRule())
	if err != nil {
		return nil, err
	}
	resolver, err := pricing.NewResolver(deps.Catalog, rule)
	if err != nil {
		return nil, err
	}
	tokens, err := utils.NewManager(deps.Config.TokenSecret)
	if err != nil {
		return nil, err
	}

	defaultUrgency, _ := deps.Catalog.DefaultUrgency()
	composer := message.NewComposer(deps.Catalog, resolver)
	hub := ws.NewHub(tokens, deps.Logger)
	submissions, err := submission.NewService(submission.Config{
		SubmitDelay:     deps.Config.SubmitDelay,
		ResetDelay:      deps.Config.ResetDelay,
		NotificationTTL: deps.Config.NotificationTTL,
		Retention:       deps.Config.Retention,
	}, submission.Deps{
		Builder:        composer,
		Scheduler:      deps.Scheduler,
		Notifier:       hub,
		Logger:         deps.Logger,
		Metrics:        deps.Metrics,
		DefaultUrgency: defaultUrgency,
	})
	if err != nil {
		return nil, err
	}

	state := &moduleState{
		composer:    composer,
		hub:         hub,
		submissions: submissions,
		tokens:      tokens,
		cfg:         deps.Config,
	}
	if deps.RDB != nil {
		state.limiter = ratelimit.NewRedis(deps.RDB, deps.Config.RatePerMinute)
	} else {
		state.buckets = ratelimit.NewMemory(deps.Config.RatePerMinute, deps.Config.RateBurst)
		state.limiter = state.buckets
	}
	state.server = quotehttp.NewServer(quotehttp.Config{TokenTTL: deps.Config.TokenTTL}, deps.Logger, deps.Catalog, composer, submissions, tokens, http.HandlerFunc(hub.ServeWS), deps.Metrics)

	deps.module = state
	return deps.module, nil
}

// RegisterQuoteRoutes wires HTTP and WebSocket routes into the provided mux.
// API routes are rate limited per client address; X-Forwarded-For is only
// believed from Config.TrustedProxies.
func RegisterQuoteRoutes(mux quotehttp.Router, deps *QuoteDeps, mw quotehttp.Middleware) error {
	module, err := ensureModule(deps)
	if err != nil {
		return err
	}
	limit := ratelimit.Middleware(module.limiter, deps.Config.TrustedProxies, deps.Logger)
	api := limit
	if mw.API != nil {
		outer := mw.API
		api = func(h http.Handler) http.Handler { return outer(limit(h)) }
	}
	module.server.Register(mux, quotehttp.Middleware{API: api, Stream: mw.Stream})
	return nil
}

// StartQuoteWorkers launches maintenance workers. Pending submission tasks
// are cancelled once ctx is done.
func StartQuoteWorkers(ctx context.Context, deps *QuoteDeps) error {
	module, err := ensureModule(deps)
	if err != nil {
		return err
	}
	if module.buckets != nil {
		go module.startBucketSweep(ctx, deps.Logger)
	}
	go func() {
		<-ctx.Done()
		module.submissions.Close()
	}()
	return nil
}

func (m *moduleState) startBucketSweep(ctx context.Context, logger Logger) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.buckets.Sweep(time.Now().Add(-m.cfg.SweepInterval)); n > 0 {
				logger.Infof("quote rate limit: swept %d idle buckets", n)
			}
		}
	}
}
