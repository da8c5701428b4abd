package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iiSmitty/my-it-services/internal/logging"
	"github.com/iiSmitty/my-it-services/internal/metrics"
	"github.com/iiSmitty/my-it-services/internal/quote"
	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
)

const serviceName = "my-it-services"

type application struct {
	logger   *logging.Logger
	errorLog *log.Logger
	metrics  *metrics.Recorder
	quote    *quote.QuoteDeps
}

func initializeApp(logger *logging.Logger, cat *catalog.Catalog, cfg quote.QuoteConfig, rdb *redis.Client, rec *metrics.Recorder) *application {
	return &application{
		logger:   logger,
		errorLog: logger.StdLogger(),
		metrics:  rec,
		quote: &quote.QuoteDeps{
			Catalog: cat,
			RDB:     rdb,
			Logger:  logger.With("module", "quote"),
			Config:  cfg,
			Metrics: rec,
		},
	}
}

func openRedis(addr string, logger *logging.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Errorf("Failed to ping redis at %s: %v", addr, err)
		_ = rdb.Close()
		return nil, err
	}
	logger.Infof("Successfully connected to redis at %s", addr)
	return rdb, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
		next.ServeHTTP(w, r)
	})
}
