package battlelog

import "time"

// Epoch is the first timestamp of the deterministic clock.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock returns the timestamp for the entry with sequence number seq.
type Clock func(seq int) time.Time

// DeterministicClock spaces entries one millisecond apart from epoch so
// replays produce identical timestamps.
func DeterministicClock(epoch time.Time) Clock {
	return func(seq int) time.Time {
		return epoch.Add(time.Duration(seq) * time.Millisecond)
	}
}

// WallClock stamps entries with the current UTC time. Logs recorded with it
// are not byte-identical across runs.
func WallClock() Clock {
	return func(int) time.Time {
		return time.Now().UTC()
	}
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the timestamp source.
func WithClock(clock Clock) Option {
	return func(l *Logger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// Logger appends entries in order. It is not safe for concurrent use; each
// battle owns its own logger.
type Logger struct {
	entries []Entry
	turn    int
	phase   string
	clock   Clock
}

// New constructs a logger using the deterministic clock unless overridden.
func New(opts ...Option) *Logger {
	l := &Logger{clock: DeterministicClock(Epoch)}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// LogPhase records entering phase. Entering TurnStartPhase increments the
// turn counter first.
func (l *Logger) LogPhase(phase string) Entry {
	if phase == TurnStartPhase {
		l.turn++
	}
	l.phase = phase
	return l.append(Entry{Kind: KindPhase, Result: phase})
}

// LogAction records a resolved action. Seq, Timestamp, Turn, Phase and Kind
// are filled in by the logger.
func (l *Logger) LogAction(e Entry) Entry {
	e.Kind = KindAction
	return l.append(e)
}

// LogSkip records an action that was not resolved.
func (l *Logger) LogSkip(e Entry) Entry {
	e.Kind = KindSkip
	return l.append(e)
}

// LogEffect records a status effect side effect.
func (l *Logger) LogEffect(e Entry) Entry {
	e.Kind = KindEffect
	return l.append(e)
}

func (l *Logger) append(e Entry) Entry {
	e.Seq = len(l.entries)
	e.Timestamp = l.clock(e.Seq)
	e.Turn = l.turn
	e.Phase = l.phase
	e = e.clone()
	l.entries = append(l.entries, e)
	return e.clone()
}

// Turn returns the current turn number; zero before the first turn.
func (l *Logger) Turn() int { return l.turn }

// Phase returns the last phase logged.
func (l *Logger) Phase() string { return l.phase }

// Len returns the number of entries.
func (l *Logger) Len() int { return len(l.entries) }

// Log returns a copy of every entry.
func (l *Logger) Log() []Entry {
	return l.Since(0)
}

// Since returns a copy of the entries from index n on.
func (l *Logger) Since(n int) []Entry {
	if n < 0 {
		n = 0
	}
	if n >= len(l.entries) {
		return []Entry{}
	}
	out := make([]Entry, 0, len(l.entries)-n)
	for _, e := range l.entries[n:] {
		out = append(out, e.clone())
	}
	return out
}

// Reset clears entries and the turn counter.
func (l *Logger) Reset() {
	l.entries = nil
	l.turn = 0
	l.phase = ""
}
