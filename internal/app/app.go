package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spirit-tamer/battlecore/internal/battlelog"
	"spirit-tamer/battlecore/internal/config"
	"spirit-tamer/battlecore/internal/content"
	"spirit-tamer/battlecore/internal/golden"
	"spirit-tamer/battlecore/internal/net/spectate"
	"spirit-tamer/battlecore/internal/rng"
	"spirit-tamer/battlecore/internal/scenario"
	"spirit-tamer/battlecore/internal/telemetry"
	"spirit-tamer/battlecore/logging"
	loggingSinks "spirit-tamer/battlecore/logging/sinks"
)

// ErrReplayDiverged is returned when replaying a seed does not reproduce the
// recorded log.
var ErrReplayDiverged = errors.New("replay diverged")

// ErrGoldenMismatch is returned when a run differs from its golden baseline.
var ErrGoldenMismatch = errors.New("golden log mismatch")

// Options carries the process-level dependencies of Run.
type Options struct {
	Logger  telemetry.Logger
	Stdout  io.Writer
	Stderr  io.Writer
	Metrics *logging.Metrics
	// Ready, when set, receives the spectator listen address once serving.
	Ready func(addr string)
}

// Run plays the configured battle, replays it to confirm determinism and
// then runs the optional golden check, TSV export and soak.
func Run(ctx context.Context, cfg config.Config, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = &logging.Metrics{}
	}
	counters := telemetry.WrapMetrics(metrics)

	cat, err := loadCatalog(cfg.ContentPath)
	if err != nil {
		return err
	}

	logCfg := cfg.Logging()
	named, closers, hub, err := buildSinks(logCfg, stdout, stderr, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			if cerr := c.Close(); cerr != nil {
				logger.Printf("failed to close log output: %v", cerr)
			}
		}
	}()

	router := logging.NewRouter(nil, logger, logCfg, named)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
		metrics.RecordRouter(router.Stats())
	}()

	var srv *http.Server
	if hub != nil {
		srv, err = serveSpectators(logCfg.Spectate.Addr, hub, logger, opts.Ready)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	battleID := uuid.NewString()
	sc := scenario.Config{
		BattleID:     battleID,
		Seed:         cfg.Seed,
		MaxTurns:     cfg.Turns,
		PlayerPolicy: cfg.PlayerPolicy,
		Publisher:    router,
	}
	result, err := replayChecked(ctx, cat, sc)
	if err != nil {
		return err
	}
	counters.Add("battles_total", 1)
	counters.Store("battle_turns", uint64(result.Turns))
	counters.Store("battle_log_entries", uint64(len(result.Log)))

	checksum, err := golden.Checksum(result.Seed, result.Log)
	if err != nil {
		return err
	}
	if !cfg.Quiet {
		if err := battlelog.Print(stdout, result.Log); err != nil {
			return fmt.Errorf("print battle log: %w", err)
		}
	}
	winner := result.Winner
	if winner == "" {
		winner = "draw"
	}
	fmt.Fprintf(stdout, "battle=%s seed=%d turns=%d winner=%s checksum=%s\n", battleID, result.Seed, result.Turns, winner, checksum)

	if err := checkGolden(ctx, cfg, result, logger); err != nil {
		return err
	}
	if cfg.TSVPath != "" {
		if err := writeTSV(cfg.TSVPath, result.Log); err != nil {
			return err
		}
		logger.Printf("wrote %d log entries to %s", len(result.Log), cfg.TSVPath)
	}
	if cfg.SoakSeeds > 0 {
		if err := soak(ctx, cat, cfg, counters); err != nil {
			return err
		}
		logger.Printf("soak replayed %d seeds with parallelism %d", cfg.SoakSeeds, cfg.Parallel)
	}

	if srv != nil && cfg.Linger > 0 {
		logger.Printf("spectator feed open for %s", cfg.Linger)
		select {
		case <-ctx.Done():
		case <-time.After(cfg.Linger):
		}
	}
	return nil
}

func loadCatalog(path string) (*content.Catalog, error) {
	if path == "" {
		return content.Default()
	}
	return content.Load(path)
}

// buildSinks constructs the enabled diagnostic sinks. Console lines go to
// stderr so stdout carries only the battle log.
func buildSinks(cfg logging.Config, stdout, stderr io.Writer, logger telemetry.Logger) ([]logging.NamedSink, []io.Closer, *spectate.Hub, error) {
	var (
		named   []logging.NamedSink
		closers []io.Closer
		hub     *spectate.Hub
	)
	for _, name := range cfg.EnabledSinks {
		switch name {
		case logging.SinkConsole:
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(stderr, cfg.Console)})
		case logging.SinkJSON:
			w := stdout
			if cfg.JSON.FilePath != "" {
				f, err := os.Create(cfg.JSON.FilePath)
				if err != nil {
					for _, c := range closers {
						c.Close()
					}
					return nil, nil, nil, fmt.Errorf("open json log: %w", err)
				}
				closers = append(closers, f)
				w = f
			}
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(w, cfg.JSON.FlushInterval)})
		case logging.SinkMemory:
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewMemorySink()})
		case logging.SinkSpectate:
			hub = spectate.NewHub(spectate.Config{Logger: logger, HistoryLimit: cfg.Spectate.History})
			named = append(named, logging.NamedSink{Name: name, Sink: hub})
		}
	}
	return named, closers, hub, nil
}

func serveSpectators(addr string, hub *spectate.Hub, logger telemetry.Logger, ready func(string)) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for spectators: %w", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/spectate", hub.Handle)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("spectator server failed: %v", err)
		}
	}()
	logger.Printf("spectator feed listening on ws://%s/spectate", ln.Addr())
	if ready != nil {
		ready(ln.Addr().String())
	}
	return srv, nil
}

// replayChecked runs the battle, runs it again without diagnostics and
// fails when the two logs differ.
func replayChecked(ctx context.Context, cat *content.Catalog, sc scenario.Config) (scenario.Result, error) {
	result, err := scenario.Run(ctx, cat, sc)
	if err != nil {
		return scenario.Result{}, fmt.Errorf("battle seed %d: %w", sc.Seed, err)
	}
	sc.Publisher = nil
	replay, err := scenario.Run(ctx, cat, sc)
	if err != nil {
		return scenario.Result{}, fmt.Errorf("replay seed %d: %w", sc.Seed, err)
	}
	if diffs := battlelog.Compare(replay.Log, result.Log); len(diffs) > 0 {
		return scenario.Result{}, fmt.Errorf("%w: seed %d: %d differences, first %s", ErrReplayDiverged, sc.Seed, len(diffs), diffs[0])
	}
	return result, nil
}

func checkGolden(ctx context.Context, cfg config.Config, result scenario.Result, logger telemetry.Logger) error {
	if cfg.GoldenMode == config.GoldenOff {
		return nil
	}
	name := fmt.Sprintf("seed-%d", cfg.Seed)

	var store *golden.Store
	if cfg.GoldenDB != "" {
		var err error
		if store, err = golden.Open(cfg.GoldenDB); err != nil {
			return err
		}
		defer store.Close()
	}

	switch cfg.GoldenMode {
	case config.GoldenRecord:
		if store != nil {
			b, err := store.Record(ctx, name, result.Seed, result.Log)
			if err != nil {
				return err
			}
			logger.Printf("recorded golden %s checksum=%s", name, b.Checksum)
		}
		if cfg.GoldenFile != "" {
			if err := golden.WriteFile(cfg.GoldenFile, result.Seed, result.Log); err != nil {
				return err
			}
			logger.Printf("recorded golden file %s", cfg.GoldenFile)
		}
	case config.GoldenVerify:
		var baselines []golden.Baseline
		if store != nil {
			b, err := store.Lookup(ctx, name)
			if err != nil {
				return err
			}
			baselines = append(baselines, b)
		}
		if cfg.GoldenFile != "" {
			b, err := golden.ReadFile(cfg.GoldenFile)
			if err != nil {
				return err
			}
			baselines = append(baselines, b)
		}
		for _, b := range baselines {
			if diffs := b.Verify(result.Seed, result.Log); len(diffs) > 0 {
				for _, d := range diffs {
					logger.Printf("golden %s: %s", b.Name, d)
				}
				return fmt.Errorf("%w: %s has %d differences", ErrGoldenMismatch, b.Name, len(diffs))
			}
			logger.Printf("golden %s verified", b.Name)
		}
	}
	return nil
}

func writeTSV(path string, entries []battlelog.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tsv: %w", err)
	}
	if err := battlelog.WriteTSV(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write tsv: %w", err)
	}
	return f.Close()
}

// soak replays battles on seeds derived from the configured one, at most
// cfg.Parallel at a time. Each battle owns its controller and provider.
func soak(ctx context.Context, cat *content.Catalog, cfg config.Config, counters telemetry.Metrics) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i := 0; i < cfg.SoakSeeds; i++ {
		seed := rng.DeriveSeed(cfg.Seed, fmt.Sprintf("soak-%d", i))
		g.Go(func() error {
			result, err := replayChecked(gctx, cat, scenario.Config{
				BattleID:     fmt.Sprintf("soak-%d", i),
				Seed:         seed,
				MaxTurns:     cfg.Turns,
				PlayerPolicy: cfg.PlayerPolicy,
			})
			if err != nil {
				return err
			}
			counters.Add("soak_battles_total", 1)
			counters.Add("soak_turns_total", uint64(result.Turns))
			if result.Winner != "" {
				counters.Add("soak_wins_"+result.Winner, 1)
			}
			return nil
		})
	}
	return g.Wait()
}
