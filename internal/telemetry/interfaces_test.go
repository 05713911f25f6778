package telemetry

import (
	"bytes"
	"log"
	"testing"

	"spirit-tamer/battlecore/logging"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WrapLogger(log.New(&buf, "", 0))
		logger.Printf("turn %d", 3)
		if got := buf.String(); got != "turn 3\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})

	t.Run("prefix", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Prefix(WrapLogger(log.New(&buf, "", 0)), "[spectate] ")
		logger.Printf("session=%s", "abc")
		if got := buf.String(); got != "[spectate] session=abc\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
		Prefix(nil, "x").Printf("ignored")
	})

	t.Run("standard logger", func(t *testing.T) {
		base := log.New(&bytes.Buffer{}, "", 0)
		provider, ok := WrapLogger(base).(interface{ StandardLogger() *log.Logger })
		if !ok || provider.StandardLogger() != base {
			t.Fatalf("expected the wrapped logger back")
		}
	})

	Discard.Printf("ignored")
}

func TestWrapMetrics(t *testing.T) {
	metrics := logging.Metrics{}
	adapter := WrapMetrics(&metrics)

	adapter.Add("battles_total", 2)
	adapter.Store("battles_total", 5)
	adapter.Add("battles_total", 3)
	metrics.RecordRouter(logging.RouterStats{EventsTotal: 7, DroppedTotal: 1})

	snapshot := metrics.Snapshot()
	if got := snapshot["battles_total"]; got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}
	if snapshot["logging_events_total"] != 7 || snapshot["logging_dropped_total"] != 1 {
		t.Fatalf("unexpected router metrics: %v", snapshot)
	}

	var nilAdapter Metrics = WrapMetrics(nil)
	nilAdapter.Add("ignored", 1)
	nilAdapter.Store("ignored", 1)
}
