package http

import (
	"net/http"
	"time"

	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
	"github.com/iiSmitty/my-it-services/internal/quote/message"
	"github.com/iiSmitty/my-it-services/internal/quote/submission"
)

// Config is the subset of runtime configuration required by the HTTP handlers.
type Config struct {
	TokenTTL time.Duration
}

// Logger captures the logging contract required by the server.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Router is satisfied by pat.PatternServeMux.
type Router interface {
	Get(pat string, h http.Handler)
	Post(pat string, h http.Handler)
}

// TokenIssuer signs the token a browser presents on the websocket.
type TokenIssuer interface {
	NewJWT(subject string, ttl time.Duration) (string, error)
}

// Recorder counts outcomes of the synchronous endpoints.
type Recorder interface {
	ValidationFailed(field string)
	QuoteComposed(custom bool)
}

// Middleware wraps each route group. Nil members leave handlers as they are.
type Middleware struct {
	API    func(http.Handler) http.Handler
	Stream func(http.Handler) http.Handler
}

// Server provides HTTP handlers for the quote domain.
type Server struct {
	cfg         Config
	logger      Logger
	catalog     *catalog.Catalog
	composer    *message.Composer
	submissions *submission.Service
	tokens      TokenIssuer
	stream      http.Handler
	metrics     Recorder
}

// NewServer constructs a Server instance. stream serves the notification
// websocket.
func NewServer(cfg Config, logger Logger, cat *catalog.Catalog, composer *message.Composer, submissions *submission.Service, tokens TokenIssuer, stream http.Handler, metrics Recorder) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 10 * time.Minute
	}
	return &Server{
		cfg:         cfg,
		logger:      logger,
		catalog:     cat,
		composer:    composer,
		submissions: submissions,
		tokens:      tokens,
		stream:      stream,
		metrics:     metrics,
	}
}

// Register mounts quote routes on the mux.
func (s *Server) Register(mux Router, mw Middleware) {
	api := wrap(mw.API)
	stream := wrap(mw.Stream)

	mux.Get("/api/v1/quote/catalog", api(http.HandlerFunc(s.handleCatalog)))
	mux.Post("/api/v1/quote/price", api(http.HandlerFunc(s.handlePrice)))
	mux.Post("/api/v1/quote/validate", api(http.HandlerFunc(s.handleValidate)))
	mux.Post("/api/v1/quote/message", api(http.HandlerFunc(s.handleMessage)))
	mux.Post("/api/v1/quote/submissions", api(http.HandlerFunc(s.handleSubmit)))
	mux.Get("/api/v1/quote/submissions/:id", api(http.HandlerFunc(s.handleSubmission)))
	if s.stream != nil {
		mux.Get("/ws/quote", stream(s.stream))
	}
}

func wrap(fn func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if fn == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return fn
}
