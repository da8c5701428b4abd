package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/iiSmitty/my-it-services/internal/config"
	"github.com/iiSmitty/my-it-services/internal/logging"
	"github.com/iiSmitty/my-it-services/internal/metrics"
	"github.com/iiSmitty/my-it-services/internal/quote"
	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
	"github.com/iiSmitty/my-it-services/internal/tracing"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:4173"}

func main() {
	envErr := godotenv.Load()
	logger := logging.New(serviceName, os.Getenv("LOG_LEVEL"))
	if envErr != nil {
		logger.Infof("Warning: Error loading .env file: %v", envErr)
	}
	fatal := func(err error, msg string) {
		logger.Zerolog().Fatal().Err(err).Msg(msg)
	}

	quoteCfg, err := quote.LoadQuoteConfig()
	if err != nil {
		fatal(err, "load quote config")
	}
	fileCfg, err := config.LoadConfig(quoteCfg.CatalogPath)
	if err != nil {
		fatal(err, "load catalog file")
	}
	cat, err := catalog.FromConfig(fileCfg)
	if err != nil {
		fatal(err, "build catalog")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = fileCfg.Server.Address
	} else {
		port = ":" + port
	}
	addr := flag.String("addr", port, "HTTP network address")
	flag.Parse()

	tp, err := tracing.InitTracerProvider(serviceName, os.Getenv("JAEGER_ENDPOINT"))
	if err != nil {
		fatal(err, "init tracer provider")
	}

	var rdb *redis.Client
	if quoteCfg.RedisAddr != "" {
		rdb, err = openRedis(quoteCfg.RedisAddr, logger)
		if err != nil {
			fatal(err, "connect redis")
		}
		defer rdb.Close()
	}

	app := initializeApp(logger, cat, quoteCfg, rdb, metrics.New())
	handler, err := app.routes()
	if err != nil {
		fatal(err, "register routes")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(os.Getenv("CORS_ORIGINS")),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "traceparent"},
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     app.errorLog,
		Handler:      addSecurityHeaders(c.Handler(handler)),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if err := quote.StartQuoteWorkers(gctx, app.quote); err != nil {
		fatal(err, "start quote workers")
	}

	g.Go(func() error {
		logger.Infof("Starting server on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Errorf("tracer shutdown: %v", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		fatal(err, "server stopped")
	}
	logger.Infof("Server stopped")
}

func allowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return defaultOrigins
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
