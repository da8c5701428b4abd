package submission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/iiSmitty/my-it-services/internal/quote/form"
	"github.com/iiSmitty/my-it-services/internal/quote/message"
	"github.com/iiSmitty/my-it-services/internal/quote/schedule"
)

const (
	defaultSubmitDelay     = time.Second
	defaultResetDelay      = 3 * time.Second
	defaultNotificationTTL = 5 * time.Second
	defaultRetention       = 5 * time.Minute
)

const (
	SuccessMessage = "Quote request sent! Check WhatsApp to continue the conversation."
	FailureMessage = "Something went wrong preparing your quote. Please try again."
)

var (
	ErrInvalidForm = errors.New("form has invalid fields")
	ErrNotFound    = errors.New("submission not found")
	ErrClosed      = errors.New("submission service closed")
)

type Status string

const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusReset   Status = "reset"
)

// Event types pushed to the browser.
const (
	EventNotification = "notification"
	EventLink         = "link"
	EventDismiss      = "dismiss"
	EventReset        = "reset"
)

// Event is a notification frame for one submission.
type Event struct {
	Type           string `json:"type"`
	SubmissionID   string `json:"submission_id"`
	Level          string `json:"level,omitempty"`
	Message        string `json:"message,omitempty"`
	URL            string `json:"url,omitempty"`
	DefaultUrgency string `json:"default_urgency,omitempty"`
}

// Submission is a snapshot of a quote request in flight.
type Submission struct {
	ID                  string          `json:"id"`
	Status              Status          `json:"status"`
	Request             message.Request `json:"request"`
	Message             string          `json:"message,omitempty"`
	WhatsAppURL         string          `json:"whatsapp_url,omitempty"`
	Total               int             `json:"total"`
	RequiresCustomQuote bool            `json:"requires_custom_quote"`
	Error               string          `json:"error,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	SentAt              *time.Time      `json:"sent_at,omitempty"`
}

// Config holds the flow timings.
type Config struct {
	SubmitDelay     time.Duration
	ResetDelay      time.Duration
	NotificationTTL time.Duration
	Retention       time.Duration
}

func (c Config) withDefaults() Config {
	if c.SubmitDelay <= 0 {
		c.SubmitDelay = defaultSubmitDelay
	}
	if c.ResetDelay <= 0 {
		c.ResetDelay = defaultResetDelay
	}
	if c.NotificationTTL <= 0 {
		c.NotificationTTL = defaultNotificationTTL
	}
	if c.Retention <= 0 {
		c.Retention = defaultRetention
	}
	return c
}

// Logger is the logging contract of the service.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Notifier delivers events to the browser that owns a submission.
type Notifier interface {
	Push(submissionID string, payload interface{})
	Forget(submissionID string)
}

// Builder composes the quote for a validated request.
type Builder interface {
	Build(req message.Request) (message.Quote, error)
}

// Recorder counts submission outcomes.
type Recorder interface {
	Submission(status string)
	ValidationFailed(field string)
	QuoteComposed(custom bool)
}

// Deps wires the service.
type Deps struct {
	Builder        Builder
	Scheduler      schedule.Scheduler
	Notifier       Notifier
	Logger         Logger
	Metrics        Recorder
	DefaultUrgency string
	NewID          func() string
}

type record struct {
	sub   Submission
	tasks []*schedule.Task
}

// Service runs the submit, notify and reset sequence as scheduled tasks.
type Service struct {
	cfg  Config
	deps Deps

	mu     sync.Mutex
	items  map[string]*record
	closed bool
}

func NewService(cfg Config, deps Deps) (*Service, error) {
	if deps.Builder == nil {
		return nil, errors.New("submission: builder is required")
	}
	if deps.Scheduler == nil {
		deps.Scheduler = schedule.NewReal()
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Service{cfg: cfg.withDefaults(), deps: deps, items: make(map[string]*record)}, nil
}

// Submit validates f and schedules the send. Invalid forms return
// ErrInvalidForm together with the validation result.
func (s *Service) Submit(ctx context.Context, f form.Form) (Submission, form.Result, error) {
	_, span := otel.Tracer("quote/submission").Start(ctx, "Submit")
	defer span.End()

	_, res := f.Validate()
	if !res.Valid {
		if s.deps.Metrics != nil {
			for field, st := range res.Fields {
				if st.State == form.StateInvalid {
					s.deps.Metrics.ValidationFailed(string(field))
				}
			}
		}
		span.SetStatus(codes.Error, "invalid form")
		return Submission{}, res, ErrInvalidForm
	}

	sub := Submission{
		ID:        s.deps.NewID(),
		Status:    StatusSending,
		Request:   f.Request(),
		CreatedAt: s.deps.Scheduler.Now(),
	}
	span.SetAttributes(
		attribute.String("submission.id", sub.ID),
		attribute.Int("submission.services", len(sub.Request.Services)),
	)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Submission{}, res, ErrClosed
	}
	rec := &record{sub: sub}
	s.items[sub.ID] = rec
	rec.tasks = append(rec.tasks, s.deps.Scheduler.Schedule(s.cfg.SubmitDelay, func() { s.send(sub.ID) }))
	s.mu.Unlock()

	s.count(string(StatusSending))
	s.logf("quote submission %s queued for %s", sub.ID, sub.Request.Name)
	return sub, res, nil
}

// Get returns the current snapshot of a submission.
func (s *Service) Get(id string) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return rec.sub, nil
}

// Close cancels every pending task. Later submits fail with ErrClosed.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, rec := range s.items {
		for _, t := range rec.tasks {
			t.Cancel()
		}
		rec.tasks = nil
	}
}

func (s *Service) send(id string) {
	_, span := otel.Tracer("quote/submission").Start(context.Background(), "Send")
	span.SetAttributes(attribute.String("submission.id", id))
	defer span.End()

	s.mu.Lock()
	rec, ok := s.items[id]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	req := rec.sub.Request
	s.mu.Unlock()

	quote, err := s.deps.Builder.Build(req)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	now := s.deps.Scheduler.Now()
	if err != nil {
		rec.sub.Status = StatusFailed
		rec.sub.Error = err.Error()
	} else {
		rec.sub.Status = StatusSent
		rec.sub.Message = quote.Text
		rec.sub.WhatsAppURL = quote.URL
		rec.sub.Total = quote.Pricing.Total
		rec.sub.RequiresCustomQuote = quote.Pricing.RequiresCustomQuote
		rec.sub.SentAt = &now
		rec.tasks = append(rec.tasks, s.deps.Scheduler.Schedule(s.cfg.ResetDelay, func() { s.reset(id) }))
	}
	rec.tasks = append(rec.tasks,
		s.deps.Scheduler.Schedule(s.cfg.NotificationTTL, func() { s.push(id, Event{Type: EventDismiss}) }),
		s.deps.Scheduler.Schedule(s.cfg.Retention, func() { s.purge(id) }),
	)
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.count(string(StatusFailed))
		if s.deps.Logger != nil {
			s.deps.Logger.Errorf("quote submission %s failed: %v", id, err)
		}
		s.push(id, Event{Type: EventNotification, Level: "error", Message: FailureMessage})
		return
	}

	s.count(string(StatusSent))
	if s.deps.Metrics != nil {
		s.deps.Metrics.QuoteComposed(quote.Pricing.RequiresCustomQuote)
	}
	s.logf("quote submission %s sent, total %d", id, quote.Pricing.Total)
	s.push(id, Event{Type: EventLink, URL: quote.URL})
	s.push(id, Event{Type: EventNotification, Level: "success", Message: SuccessMessage})
}

func (s *Service) reset(id string) {
	s.mu.Lock()
	rec, ok := s.items[id]
	if ok {
		rec.sub.Status = StatusReset
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	s.count(string(StatusReset))
	s.push(id, Event{Type: EventReset, DefaultUrgency: s.deps.DefaultUrgency})
}

func (s *Service) purge(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	if s.deps.Notifier != nil {
		s.deps.Notifier.Forget(id)
	}
}

func (s *Service) push(id string, ev Event) {
	if s.deps.Notifier == nil {
		return
	}
	ev.SubmissionID = id
	s.deps.Notifier.Push(id, ev)
}

func (s *Service) count(status string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.Submission(status)
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Infof(format, args...)
	}
}
