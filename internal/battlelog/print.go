package battlelog

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Print writes a human-readable rendering of entries, grouped by turn.
func Print(w io.Writer, entries []Entry) error {
	return PrintLocalized(w, entries, language.English)
}

// PrintLocalized renders entries with numbers formatted for tag.
func PrintLocalized(w io.Writer, entries []Entry, tag language.Tag) error {
	p := message.NewPrinter(tag)
	if len(entries) == 0 {
		_, err := io.WriteString(w, "(no log)\n")
		return err
	}
	turn := -1
	for _, e := range entries {
		if e.Turn != turn {
			turn = e.Turn
			if _, err := p.Fprintf(w, "\n=== Turn %d ===\n", turn); err != nil {
				return err
			}
		}
		if e.Kind == KindPhase {
			if _, err := fmt.Fprintf(w, "[Phase] %s\n", e.Result); err != nil {
				return err
			}
			continue
		}

		parts := []string{fmt.Sprintf("Actor %d", e.ActorID)}
		switch e.Kind {
		case KindEffect:
			parts = append(parts, "effect "+e.ActionID)
		case KindSkip:
			parts = append(parts, "skips "+e.ActionID)
		default:
			parts = append(parts, "uses "+e.ActionID)
		}
		if e.TargetID != 0 {
			parts = append(parts, fmt.Sprintf("on %d", e.TargetID))
		}
		parts = append(parts, "-> "+e.Result)
		if dmg, ok := e.DamageValue(); ok {
			parts = append(parts, p.Sprintf("dmg %d", dmg))
		}
		if e.Status != "" {
			parts = append(parts, "status "+e.Status)
		}
		if e.Notes != "" {
			parts = append(parts, "("+e.Notes+")")
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteTSV exports entries as tab-separated key=value lines for playback
// tooling. Columns: time, turn, actor, action, target, result, dmg, status,
// phase, notes.
func WriteTSV(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		dmg := ""
		if v, ok := e.DamageValue(); ok {
			dmg = fmt.Sprint(v)
		}
		_, err := fmt.Fprintf(w, "%s\tturn=%d\tactor=%d\taction=%s\ttarget=%d\tresult=%s\tdmg=%s\tstatus=%s\tphase=%s\tnotes=%s\n",
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			e.Turn, e.ActorID, e.ActionID, e.TargetID,
			tsvField(e.Result), dmg, tsvField(e.Status), e.Phase, tsvField(e.Notes))
		if err != nil {
			return err
		}
	}
	return nil
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func tsvField(s string) string {
	return tsvReplacer.Replace(s)
}
