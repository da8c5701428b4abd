package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"github.com/iiSmitty/my-it-services/internal/quote"
	quotehttp "github.com/iiSmitty/my-it-services/internal/quote/http"
	"github.com/iiSmitty/my-it-services/internal/tracing"
)

func (app *application) routes() (http.Handler, error) {
	standardMiddleware := alice.New(tracing.Middleware(serviceName), app.recoverPanic, app.logRequest, app.instrument, secureHeaders)
	apiMiddleware := alice.New(makeResponseJSON)

	mux := pat.New()

	mux.Get("/healthz", apiMiddleware.ThenFunc(app.healthz))
	mux.Get("/metrics", app.metrics.Handler())

	// Quote
	if err := quote.RegisterQuoteRoutes(mux, app.quote, quotehttp.Middleware{API: apiMiddleware.Then}); err != nil {
		return nil, err
	}

	return standardMiddleware.Then(mux), nil
}

func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
