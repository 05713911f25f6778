package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Printer receives the router's own diagnostics, such as dropped events and
// failing sinks. *log.Logger and telemetry.Logger both satisfy it.
type Printer interface {
	Printf(format string, args ...any)
}

// Router fans events out to sinks asynchronously. Publish never blocks: a
// full queue drops the event and counts it.
type Router struct {
	queue    chan Event
	outlets  []*outlet
	clock    Clock
	fallback Printer
	minimum  Severity
	fields   map[string]any
	dropWarn time.Duration

	stop     chan struct{}
	done     sync.WaitGroup
	closed   atomic.Bool
	closeMu  sync.Mutex
	forwards atomic.Uint64
	drops    atomic.Uint64
	warnedAt atomic.Int64
}

// SinkStats counts one sink's deliveries.
type SinkStats struct {
	Written uint64
	Failed  uint64
	Dropped uint64
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
	Sinks        map[string]SinkStats
}

// NewRouter starts a router. A nil clock uses time.Now and a nil fallback
// writes to stderr.
func NewRouter(clock Clock, fallback Printer, cfg Config, namedSinks []NamedSink) *Router {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	if fallback == nil {
		fallback = log.New(os.Stderr, "[logging] ", log.LstdFlags)
	}
	defaults := DefaultConfig()
	size := cfg.BufferSize
	if size <= 0 {
		size = defaults.BufferSize
	}
	dropWarn := cfg.DropWarnInterval
	if dropWarn <= 0 {
		dropWarn = defaults.DropWarnInterval
	}

	r := &Router{
		queue:    make(chan Event, size),
		clock:    clock,
		fallback: fallback,
		minimum:  cfg.MinimumSeverity,
		fields:   cfg.CloneFields(),
		dropWarn: dropWarn,
		stop:     make(chan struct{}),
	}
	backlog := min(max(size, 32), 1024)
	for _, named := range namedSinks {
		if named.Sink != nil {
			r.outlets = append(r.outlets, newOutlet(named, backlog, fallback))
		}
	}

	for _, o := range r.outlets {
		r.done.Add(1)
		go func() {
			defer r.done.Done()
			o.run()
		}()
	}
	r.done.Add(1)
	go r.dispatch()
	return r
}

func (r *Router) dispatch() {
	defer r.done.Done()
	defer func() {
		for _, o := range r.outlets {
			close(o.events)
		}
	}()
	for {
		select {
		case event := <-r.queue:
			r.forward(event)
		case <-r.stop:
			for {
				select {
				case event := <-r.queue:
					r.forward(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Router) forward(event Event) {
	if event.Severity < r.minimum {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	event = mergeFields(event, r.fields)
	r.forwards.Add(1)
	for _, o := range r.outlets {
		o.offer(event)
	}
}

// Publish implements Publisher.
func (r *Router) Publish(_ context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.dropped(event)
	}
}

func (r *Router) dropped(event Event) {
	r.drops.Add(1)
	now := time.Now().UnixNano()
	last := r.warnedAt.Load()
	if now-last < r.dropWarn.Nanoseconds() {
		return
	}
	if r.warnedAt.CompareAndSwap(last, now) {
		r.fallback.Printf("dropping event type=%s battle=%s turn=%d", event.Type, event.Battle, event.Turn)
	}
}

// Close stops accepting events, delivers what is queued and closes every
// sink. It returns the first sink error. Later calls return nil.
func (r *Router) Close(ctx context.Context) error {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed.Swap(true) {
		return nil
	}
	close(r.stop)

	flushed := make(chan struct{})
	go func() {
		r.done.Wait()
		close(flushed)
	}()
	select {
	case <-flushed:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, o := range r.outlets {
		if err := o.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	stats := RouterStats{
		EventsTotal:  r.forwards.Load(),
		DroppedTotal: r.drops.Load(),
		Sinks:        make(map[string]SinkStats, len(r.outlets)),
	}
	for _, o := range r.outlets {
		stats.Sinks[o.name] = SinkStats{
			Written: o.written.Load(),
			Failed:  o.failed.Load(),
			Dropped: o.dropped.Load(),
		}
	}
	return stats
}

// Sink returns the sink registered under name, or nil.
func (r *Router) Sink(name string) Sink {
	for _, o := range r.outlets {
		if o.name == name {
			return o.sink
		}
	}
	return nil
}

// outlet feeds one sink from its own goroutine so a slow sink only delays
// itself. Consecutive failures back off exponentially up to 3.2s.
type outlet struct {
	name     string
	sink     Sink
	events   chan Event
	fallback Printer

	streak  int
	resume  time.Time
	written atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

func newOutlet(named NamedSink, backlog int, fallback Printer) *outlet {
	return &outlet{
		name:     named.Name,
		sink:     named.Sink,
		events:   make(chan Event, backlog),
		fallback: fallback,
	}
}

func (o *outlet) offer(event Event) {
	select {
	case o.events <- event.Clone():
	default:
		o.dropped.Add(1)
		o.fallback.Printf("sink %s backlog full dropping event type=%s", o.name, event.Type)
	}
}

func (o *outlet) run() {
	for event := range o.events {
		if o.streak > 0 {
			if wait := time.Until(o.resume); wait > 0 {
				time.Sleep(wait)
			}
		}
		if err := o.sink.Write(event); err != nil {
			o.failed.Add(1)
			o.streak++
			delay := 100 * time.Millisecond << min(o.streak, 5)
			o.resume = time.Now().Add(delay)
			o.fallback.Printf("sink %s failed: %v (retry in %s)", o.name, err, delay)
			continue
		}
		o.written.Add(1)
		o.streak = 0
	}
}
