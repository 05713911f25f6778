package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strings"

	"spirit-tamer/battlecore/logging"
)

// ConsoleSink writes one line per event.
type ConsoleSink struct {
	logger  *log.Logger
	verbose bool
}

func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *ConsoleSink {
	if w == nil {
		w = io.Discard
	}
	return &ConsoleSink{logger: log.New(w, "", log.LstdFlags), verbose: cfg.Verbose}
}

func (s *ConsoleSink) Write(event logging.Event) error {
	s.logger.Print(FormatLine(event, s.verbose))
	return nil
}

func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

// FormatLine renders event as space separated key=value pairs after the
// bracketed type. Payload and extra fields are added only when verbose.
func FormatLine(event logging.Event, verbose bool) string {
	var b strings.Builder
	b.WriteString("[" + string(event.Type) + "]")
	field := func(key, value string) {
		if value != "" {
			b.WriteString(" " + key + "=" + value)
		}
	}
	field("turn", fmt.Sprint(event.Turn))
	field("battle", event.Battle)
	field("phase", event.Phase)
	field("actor", entity(event.Actor))
	field("severity", event.Severity.String())
	refs := make([]string, 0, len(event.Targets))
	for _, target := range event.Targets {
		refs = append(refs, entity(target))
	}
	field("targets", strings.Join(refs, ","))
	if !verbose {
		return b.String()
	}
	if event.Payload != nil {
		field("payload", compact(event.Payload))
	}
	for _, key := range slices.Sorted(maps.Keys(event.Extra)) {
		field(key, fmt.Sprint(event.Extra[key]))
	}
	return b.String()
}

func entity(ref logging.EntityRef) string {
	switch {
	case ref.ID == "":
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	default:
		return string(ref.Kind) + ":" + ref.ID
	}
}

func compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
