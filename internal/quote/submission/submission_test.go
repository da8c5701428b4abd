package submission

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/iiSmitty/my-it-services/internal/quote/catalog/catalogtest"
	"github.com/iiSmitty/my-it-services/internal/quote/form"
	"github.com/iiSmitty/my-it-services/internal/quote/message"
	"github.com/iiSmitty/my-it-services/internal/quote/pricing"
	"github.com/iiSmitty/my-it-services/internal/quote/schedule"
)

type stubNotifier struct {
	mu        sync.Mutex
	events    []Event
	forgotten []string
}

func (n *stubNotifier) Forget(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.forgotten = append(n.forgotten, id)
}

func (n *stubNotifier) Push(id string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, payload.(Event))
}

func (n *stubNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type stubMetrics struct {
	statuses []string
	fields   []string
	composed int
}

func (m *stubMetrics) Submission(status string) { m.statuses = append(m.statuses, status) }
func (m *stubMetrics) ValidationFailed(f string) { m.fields = append(m.fields, f) }
func (m *stubMetrics) QuoteComposed(custom bool) { m.composed++ }

type failingBuilder struct{}

func (failingBuilder) Build(message.Request) (message.Quote, error) {
	return message.Quote{}, errors.New("boom")
}

type fixture struct {
	svc      *Service
	clock    *schedule.Manual
	notifier *stubNotifier
	metrics  *stubMetrics
}

func newFixture(t *testing.T, builder Builder) fixture {
	t.Helper()
	if builder == nil {
		cat := catalogtest.New(t)
		r, err := pricing.NewResolver(cat, nil)
		if err != nil {
			t.Fatalf("NewResolver: %v", err)
		}
		builder = message.NewComposer(cat, r)
	}
	f := fixture{
		clock:    schedule.NewManual(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		notifier: &stubNotifier{},
		metrics:  &stubMetrics{},
	}
	svc, err := NewService(Config{}, Deps{
		Builder:        builder,
		Scheduler:      f.clock,
		Notifier:       f.notifier,
		Metrics:        f.metrics,
		DefaultUrgency: "week",
		NewID:          func() string { return "sub-1" },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func validForm() form.Form {
	return form.New("week").SetName("Thabo").SelectServices("windows")
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	f := newFixture(t, nil)
	_, res, err := f.svc.Submit(context.Background(), form.New("week").SetName("J"))
	if !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
	if res.FirstInvalid != form.FieldName {
		t.Fatalf("expected name to be first invalid, got %q", res.FirstInvalid)
	}
	if f.clock.Pending() != 0 {
		t.Fatal("invalid form must not schedule anything")
	}
	if len(f.metrics.fields) != 2 {
		t.Fatalf("expected 2 validation failures recorded, got %v", f.metrics.fields)
	}
}

func TestSubmissionTimeline(t *testing.T) {
	f := newFixture(t, nil)

	sub, res, err := f.svc.Submit(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Valid || sub.Status != StatusSending || sub.ID != "sub-1" {
		t.Fatalf("unexpected submission %+v", sub)
	}

	f.clock.Advance(999 * time.Millisecond)
	if got, _ := f.svc.Get("sub-1"); got.Status != StatusSending {
		t.Fatalf("expected still sending before delay, got %s", got.Status)
	}

	f.clock.Advance(time.Millisecond)
	got, err := f.svc.Get("sub-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusSent {
		t.Fatalf("expected sent, got %s", got.Status)
	}
	if !strings.HasPrefix(got.WhatsAppURL, "https://wa.me/27723386828?text=") {
		t.Fatalf("unexpected link %q", got.WhatsAppURL)
	}
	if !strings.Contains(got.Message, "Service: Clean Windows Install (R250)") || got.Total != 250 {
		t.Fatalf("unexpected message %q total %d", got.Message, got.Total)
	}
	if types := f.notifier.types(); len(types) != 2 || types[0] != EventLink || types[1] != EventNotification {
		t.Fatalf("unexpected events after send %v", types)
	}
	if f.notifier.events[1].Message != SuccessMessage || f.notifier.events[1].Level != "success" {
		t.Fatalf("unexpected notification %+v", f.notifier.events[1])
	}

	f.clock.Advance(3 * time.Second)
	if got, _ := f.svc.Get("sub-1"); got.Status != StatusReset {
		t.Fatalf("expected reset after 3s, got %s", got.Status)
	}
	last := f.notifier.events[len(f.notifier.events)-1]
	if last.Type != EventReset || last.DefaultUrgency != "week" {
		t.Fatalf("unexpected reset event %+v", last)
	}

	f.clock.Advance(2 * time.Second)
	last = f.notifier.events[len(f.notifier.events)-1]
	if last.Type != EventDismiss || last.SubmissionID != "sub-1" {
		t.Fatalf("expected dismiss after notification ttl, got %+v", last)
	}

	f.clock.Advance(5 * time.Minute)
	if _, err := f.svc.Get("sub-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected purge after retention, got %v", err)
	}
	if len(f.notifier.forgotten) != 1 || f.notifier.forgotten[0] != "sub-1" {
		t.Fatalf("expected notifier to forget purged submission, got %v", f.notifier.forgotten)
	}

	want := []string{"sending", "sent", "reset"}
	if strings.Join(f.metrics.statuses, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected recorded statuses %v", f.metrics.statuses)
	}
	if f.metrics.composed != 1 {
		t.Fatalf("expected one composed quote, got %d", f.metrics.composed)
	}
}

func TestSubmissionBuildFailure(t *testing.T) {
	f := newFixture(t, failingBuilder{})
	if _, _, err := f.svc.Submit(context.Background(), validForm()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.clock.Advance(time.Second)

	got, _ := f.svc.Get("sub-1")
	if got.Status != StatusFailed || got.Error != "boom" {
		t.Fatalf("unexpected failed submission %+v", got)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].Level != "error" {
		t.Fatalf("expected one error notification, got %+v", f.notifier.events)
	}

	f.clock.Advance(10 * time.Second)
	if got, _ := f.svc.Get("sub-1"); got.Status != StatusFailed {
		t.Fatalf("failed submissions are not reset, got %s", got.Status)
	}
}

func TestCloseCancelsPendingTasks(t *testing.T) {
	f := newFixture(t, nil)
	if _, _, err := f.svc.Submit(context.Background(), validForm()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.svc.Close()
	f.clock.Advance(time.Minute)

	if len(f.notifier.events) != 0 {
		t.Fatalf("expected no events after close, got %v", f.notifier.types())
	}
	if _, _, err := f.svc.Submit(context.Background(), validForm()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

type closingBuilder struct {
	svc   *Service
	inner Builder
}

func (b *closingBuilder) Build(req message.Request) (message.Quote, error) {
	b.svc.Close()
	return b.inner.Build(req)
}

func TestCloseDuringBuildSchedulesNothing(t *testing.T) {
	cat := catalogtest.New(t)
	r, err := pricing.NewResolver(cat, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	builder := &closingBuilder{inner: message.NewComposer(cat, r)}
	f := newFixture(t, builder)
	builder.svc = f.svc

	if _, _, err := f.svc.Submit(context.Background(), validForm()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.clock.Advance(time.Second)

	if f.clock.Pending() != 0 {
		t.Fatalf("expected no tasks after close, got %d", f.clock.Pending())
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("expected no events after close, got %v", f.notifier.types())
	}
	if got, _ := f.svc.Get("sub-1"); got.Status != StatusSending {
		t.Fatalf("expected submission left as sending, got %s", got.Status)
	}
}

func TestGetUnknown(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.svc.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewServiceRequiresBuilder(t *testing.T) {
	if _, err := NewService(Config{}, Deps{}); err == nil {
		t.Fatal("expected error without builder")
	}
}
