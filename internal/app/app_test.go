package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"spirit-tamer/battlecore/internal/config"
	"spirit-tamer/battlecore/internal/telemetry"
	"spirit-tamer/battlecore/logging"
)

func testConfig() config.Config {
	return config.Config{
		Seed:        12345,
		Turns:       5,
		GoldenMode:  config.GoldenOff,
		LogSinks:    []string{logging.SinkMemory},
		LogSeverity: "info",
		Parallel:    1,
	}
}

func run(t *testing.T, cfg config.Config, metrics *logging.Metrics) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), cfg, Options{
		Logger:  telemetry.LoggerFunc(func(format string, args ...any) { t.Logf(format, args...) }),
		Stdout:  &stdout,
		Stderr:  &stderr,
		Metrics: metrics,
	})
	return stdout.String(), err
}

func TestRunPrintsLogAndSummary(t *testing.T) {
	metrics := &logging.Metrics{}
	out, err := run(t, testConfig(), metrics)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "=== Turn 1 ===") {
		t.Fatalf("expected printed log, got %q", out)
	}
	if !strings.Contains(out, "seed=12345") || !strings.Contains(out, "checksum=") {
		t.Fatalf("expected summary line, got %q", out)
	}
	snapshot := metrics.Snapshot()
	if snapshot["battles_total"] != 1 || snapshot["battle_log_entries"] == 0 {
		t.Fatalf("unexpected metrics %v", snapshot)
	}
	if snapshot["logging_events_total"] == 0 {
		t.Fatalf("expected router events, got %v", snapshot)
	}
}

func TestRunQuietPrintsOnlySummary(t *testing.T) {
	cfg := testConfig()
	cfg.Quiet = true
	out, err := run(t, cfg, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out, "=== Turn") || strings.Count(out, "\n") != 1 {
		t.Fatalf("expected a single summary line, got %q", out)
	}
}

func TestRunGoldenRecordThenVerify(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Quiet = true
	cfg.GoldenDB = filepath.Join(dir, "golden.db")
	cfg.GoldenFile = filepath.Join(dir, "seed.golden.json")

	cfg.GoldenMode = config.GoldenRecord
	if _, err := run(t, cfg, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	cfg.GoldenMode = config.GoldenVerify
	if _, err := run(t, cfg, nil); err != nil {
		t.Fatalf("verify: %v", err)
	}

	fileOnly := cfg
	fileOnly.GoldenDB = ""
	fileOnly.Seed = 99
	if _, err := run(t, fileOnly, nil); !errors.Is(err, ErrGoldenMismatch) {
		t.Fatalf("expected ErrGoldenMismatch, got %v", err)
	}
}

func TestRunWritesTSVAndSoaks(t *testing.T) {
	cfg := testConfig()
	cfg.Quiet = true
	cfg.TSVPath = filepath.Join(t.TempDir(), "battle.tsv")
	cfg.SoakSeeds = 4
	cfg.Parallel = 2
	metrics := &logging.Metrics{}
	if _, err := run(t, cfg, metrics); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(cfg.TSVPath)
	if err != nil {
		t.Fatalf("read tsv: %v", err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if len(strings.Split(first, "\t")) != 10 || !strings.Contains(first, "turn=1") {
		t.Fatalf("unexpected tsv line %q", first)
	}
	if got := metrics.Snapshot()["soak_battles_total"]; got != 4 {
		t.Fatalf("expected 4 soak battles, got %d", got)
	}
}

func TestRunRejectsMissingContent(t *testing.T) {
	cfg := testConfig()
	cfg.ContentPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := run(t, cfg, nil); err == nil {
		t.Fatalf("expected missing catalog to fail")
	}
}

func TestRunStreamsToSpectators(t *testing.T) {
	cfg := testConfig()
	cfg.Quiet = true
	cfg.LogSinks = []string{logging.SinkSpectate}
	cfg.SpectateAddr = "127.0.0.1:0"

	var conn *websocket.Conn
	err := Run(context.Background(), cfg, Options{
		Logger: telemetry.Discard,
		Stdout: &bytes.Buffer{},
		Ready: func(addr string) {
			c, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/spectate", nil)
			if err != nil {
				t.Errorf("dial spectator: %v", err)
				return
			}
			resp.Body.Close()
			conn = c
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if conn == nil {
		t.Fatalf("spectator never connected")
	}
	defer conn.Close()

	types := map[string]bool{}
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg map[string]any
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		typ, _ := msg["type"].(string)
		types[typ] = true
	}
	if !types["hello"] || !types["battle.turn_completed"] {
		t.Fatalf("expected hello and turn events, got %v", types)
	}
}
