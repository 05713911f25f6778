// Package config loads battlesim settings from the environment, then lets
// command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"spirit-tamer/battlecore/logging"
)

// Config is the runtime configuration of the battlesim binary.
type Config struct {
	Seed         int64         `env:"BATTLE_SEED" envDefault:"12345"`
	Turns        int           `env:"BATTLE_TURNS" envDefault:"20"`
	ContentPath  string        `env:"BATTLE_CONTENT_PATH"`
	PlayerPolicy string        `env:"BATTLE_PLAYER_POLICY"`
	GoldenDB     string        `env:"BATTLE_GOLDEN_DB"`
	GoldenFile   string        `env:"BATTLE_GOLDEN_FILE"`
	GoldenMode   string        `env:"BATTLE_GOLDEN_MODE" envDefault:"off"`
	TSVPath      string        `env:"BATTLE_TSV_PATH"`
	LogSinks     []string      `env:"BATTLE_LOG_SINKS" envSeparator:"," envDefault:"console"`
	LogSeverity  string        `env:"BATTLE_LOG_SEVERITY" envDefault:"info"`
	LogJSONPath  string        `env:"BATTLE_LOG_JSON_PATH"`
	SpectateAddr string        `env:"BATTLE_SPECTATE_ADDR"`
	Parallel     int           `env:"BATTLE_PARALLEL" envDefault:"1"`
	SoakSeeds    int           `env:"BATTLE_SOAK_SEEDS" envDefault:"0"`
	Quiet        bool          `env:"BATTLE_QUIET"`
	Linger       time.Duration `env:"BATTLE_SPECTATE_LINGER" envDefault:"0s"`
}

// Golden modes.
const (
	GoldenOff    = "off"
	GoldenRecord = "record"
	GoldenVerify = "verify"
)

// ParseEnv loads environment variables into target.
func ParseEnv(target any) error {
	if target == nil {
		return errors.New("config target is required")
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment, then parses args with fs. Flags default to the
// environment values so an explicit flag always wins.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	sinks := strings.Join(cfg.LogSinks, ",")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "battle seed")
	fs.IntVar(&cfg.Turns, "turns", cfg.Turns, "maximum number of turns")
	fs.StringVar(&cfg.ContentPath, "content", cfg.ContentPath, "content catalog (yaml or json); empty uses the built-in demo")
	fs.StringVar(&cfg.PlayerPolicy, "player-policy", cfg.PlayerPolicy, "AI policy for the player side; empty uses the scripted choice")
	fs.StringVar(&cfg.GoldenDB, "golden-db", cfg.GoldenDB, "sqlite database holding golden logs")
	fs.StringVar(&cfg.GoldenFile, "golden-file", cfg.GoldenFile, "JSON file holding a golden log")
	fs.StringVar(&cfg.GoldenMode, "golden", cfg.GoldenMode, "golden mode: off, record or verify")
	fs.StringVar(&cfg.TSVPath, "tsv", cfg.TSVPath, "write the battle log as TSV to this path")
	fs.StringVar(&sinks, "log-sinks", sinks, "comma separated diagnostic sinks: console, json, memory, spectate")
	fs.StringVar(&cfg.LogSeverity, "log-severity", cfg.LogSeverity, "minimum diagnostic severity")
	fs.StringVar(&cfg.LogJSONPath, "log-json", cfg.LogJSONPath, "path for the json sink; empty writes to stdout")
	fs.StringVar(&cfg.SpectateAddr, "spectate", cfg.SpectateAddr, "listen address for the spectator websocket feed")
	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "battles run concurrently during a soak")
	fs.IntVar(&cfg.SoakSeeds, "soak", cfg.SoakSeeds, "number of derived seeds to replay-check")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "do not print the battle log")
	fs.DurationVar(&cfg.Linger, "linger", cfg.Linger, "keep the spectator feed open after the battle")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.LogSinks = splitList(sinks)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects settings the binary cannot honour.
func (c Config) Validate() error {
	if c.Turns <= 0 {
		return fmt.Errorf("config: turns must be positive, got %d", c.Turns)
	}
	if c.Parallel <= 0 {
		return fmt.Errorf("config: parallel must be positive, got %d", c.Parallel)
	}
	if c.SoakSeeds < 0 {
		return fmt.Errorf("config: soak must not be negative, got %d", c.SoakSeeds)
	}
	switch c.GoldenMode {
	case GoldenOff:
	case GoldenRecord, GoldenVerify:
		if c.GoldenDB == "" && c.GoldenFile == "" {
			return fmt.Errorf("config: golden %s needs a database or a file", c.GoldenMode)
		}
	default:
		return fmt.Errorf("config: unknown golden mode %q", c.GoldenMode)
	}
	for _, sink := range c.LogSinks {
		switch sink {
		case logging.SinkConsole, logging.SinkJSON, logging.SinkMemory, logging.SinkSpectate:
		default:
			return fmt.Errorf("config: unknown log sink %q", sink)
		}
	}
	if c.hasSink(logging.SinkSpectate) && c.SpectateAddr == "" {
		return errors.New("config: the spectate sink needs a listen address")
	}
	return nil
}

func (c Config) hasSink(name string) bool {
	for _, s := range c.LogSinks {
		if s == name {
			return true
		}
	}
	return false
}

// Logging converts the diagnostic settings for the logging router.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string(nil), c.LogSinks...)
	cfg.MinimumSeverity = logging.ParseSeverity(c.LogSeverity)
	cfg.JSON.FilePath = c.LogJSONPath
	cfg.Spectate.Addr = c.SpectateAddr
	cfg.Fields = map[string]any{"seed": c.Seed}
	return cfg
}
