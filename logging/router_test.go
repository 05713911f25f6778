package logging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type failingSink struct{}

func (failingSink) Write(Event) error           { return errors.New("boom") }
func (failingSink) Close(context.Context) error { return errors.New("close boom") }

type nopPrinter struct{}

func (nopPrinter) Printf(string, ...any) {}

func fixedClock() Clock {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return ClockFunc(func() time.Time { return at })
}

func TestRouterDeliversFilteredEventsInOrder(t *testing.T) {
	sink := &captureSink{}
	cfg := DefaultConfig()
	cfg.Fields = map[string]any{"seed": int64(7)}
	router := NewRouter(fixedClock(), nopPrinter{}, cfg, []NamedSink{{Name: "capture", Sink: sink}})

	ctx := context.Background()
	router.Publish(ctx, Event{Type: "battle.phase", Turn: 1, Severity: SeverityInfo})
	router.Publish(ctx, Event{Type: "battle.debug", Turn: 1, Severity: SeverityDebug})
	router.Publish(ctx, Event{Turn: 1, Severity: SeverityError})
	router.Publish(ctx, Event{Type: "battle.action", Turn: 1, Severity: SeverityInfo, Extra: map[string]any{"seed": "own"}})

	if err := router.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !sink.closed {
		t.Fatalf("expected sink to be closed")
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].Type != "battle.phase" || sink.events[1].Type != "battle.action" {
		t.Fatalf("unexpected order: %+v", sink.events)
	}
	if sink.events[0].Extra["seed"] != int64(7) {
		t.Fatalf("expected router field, got %v", sink.events[0].Extra)
	}
	if sink.events[1].Extra["seed"] != "own" {
		t.Fatalf("router field must not override event field, got %v", sink.events[1].Extra)
	}
	if sink.events[0].Time.IsZero() {
		t.Fatalf("expected router clock to stamp the event")
	}
	stats := router.Stats()
	if stats.EventsTotal != 2 {
		t.Fatalf("expected 2 forwarded events, got %d", stats.EventsTotal)
	}
	if stats.Sinks["capture"].Written != 2 {
		t.Fatalf("expected 2 writes on capture, got %+v", stats.Sinks)
	}

	router.Publish(ctx, Event{Type: "late"})
	if len(sink.events) != 2 {
		t.Fatalf("closed router must ignore events")
	}
}

func TestRouterReportsSinkCloseError(t *testing.T) {
	router := NewRouter(fixedClock(), nopPrinter{}, DefaultConfig(), []NamedSink{{Name: "bad", Sink: failingSink{}}})
	router.Publish(context.Background(), Event{Type: "battle.phase", Severity: SeverityWarn})
	if err := router.Close(context.Background()); err == nil {
		t.Fatalf("expected close error")
	}
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if got := router.Stats().Sinks["bad"].Failed; got != 1 {
		t.Fatalf("expected one failed write, got %d", got)
	}
	if router.Sink("bad") == nil || router.Sink("missing") != nil {
		t.Fatalf("unexpected sink lookup results")
	}
}

func TestWithFieldsAndFanout(t *testing.T) {
	var got []Event
	capture := PublisherFunc(func(_ context.Context, e Event) { got = append(got, e) })
	pub := Fanout(WithFields(capture, map[string]any{"battle": "b1"}), nil, capture)

	original := Event{Type: "battle.turn"}
	pub.Publish(context.Background(), original)

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0].Extra["battle"] != "b1" || got[1].Extra != nil {
		t.Fatalf("unexpected extras: %v / %v", got[0].Extra, got[1].Extra)
	}
	if original.Extra != nil {
		t.Fatalf("WithFields must not mutate the caller's event")
	}
	if _, ok := WithFields(nil, nil).(nopPublisher); !ok {
		t.Fatalf("expected nop publisher for nil input")
	}
}
