package logging

import (
	"maps"
	"slices"
	"time"
)

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	Spectate         SpectateConfig
	DropWarnInterval time.Duration
}

type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	// Verbose includes payloads in console lines.
	Verbose bool
}

type SpectateConfig struct {
	Addr string
	// History is the number of events replayed to late spectators.
	History int
}

// Sink names understood by the battlesim binary.
const (
	SinkConsole  = "console"
	SinkJSON     = "json"
	SinkMemory   = "memory"
	SinkSpectate = "spectate"
)

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{SinkConsole},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: time.Second,
		},
		Spectate: SpectateConfig{
			History: 512,
		},
	}
}

func (c Config) HasSink(name string) bool {
	return slices.Contains(c.EnabledSinks, name)
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	return maps.Clone(c.Fields)
}
