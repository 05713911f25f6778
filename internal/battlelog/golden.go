package battlelog

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Diff is one field-level mismatch between two logs. Field is "entry" when
// one log has no entry at Index.
type Diff struct {
	Index    int
	Field    string
	Actual   string
	Expected string
}

// Missing is the placeholder used for absent entries or values.
const Missing = "<missing>"

func (d Diff) String() string {
	return fmt.Sprintf("[%d] %s: actual=%s expected=%s", d.Index, d.Field, d.Actual, d.Expected)
}

// Compare walks both logs index by index and returns every mismatch of
// turn, phase, actor, action, target, result, damage and status. Extra or
// missing entries are reported as "entry" diffs; the walk never stops early.
func Compare(actual, expected []Entry) []Diff {
	var diffs []Diff
	n := max(len(actual), len(expected))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(actual):
			diffs = append(diffs, Diff{Index: i, Field: "entry", Actual: Missing, Expected: expected[i].String()})
			continue
		case i >= len(expected):
			diffs = append(diffs, Diff{Index: i, Field: "entry", Actual: actual[i].String(), Expected: Missing})
			continue
		}
		a, e := actual[i], expected[i]
		check := func(field, av, ev string) {
			if av != ev {
				diffs = append(diffs, Diff{Index: i, Field: field, Actual: av, Expected: ev})
			}
		}
		check("turn", strconv.Itoa(a.Turn), strconv.Itoa(e.Turn))
		check("phase", a.Phase, e.Phase)
		check("actor", strconv.Itoa(a.ActorID), strconv.Itoa(e.ActorID))
		check("action", a.ActionID, e.ActionID)
		check("target", strconv.Itoa(a.TargetID), strconv.Itoa(e.TargetID))
		check("result", a.Result, e.Result)
		check("damage", damageString(a), damageString(e))
		check("status", a.Status, e.Status)
	}
	return diffs
}

// Equal reports whether Compare finds no differences.
func Equal(actual, expected []Entry) bool {
	return len(Compare(actual, expected)) == 0
}

func damageString(e Entry) string {
	if v, ok := e.DamageValue(); ok {
		return strconv.Itoa(v)
	}
	return Missing
}

// golden is the on-disk shape of a recorded baseline.
type golden struct {
	Version int     `json:"version"`
	Seed    int64   `json:"seed"`
	Entries []Entry `json:"entries"`
}

// GoldenVersion is the current baseline format.
const GoldenVersion = 1

// MarshalGolden encodes a baseline for seed.
func MarshalGolden(seed int64, entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(golden{Version: GoldenVersion, Seed: seed, Entries: entries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("battlelog: encode golden: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalGolden decodes a baseline produced by MarshalGolden.
func UnmarshalGolden(data []byte) (int64, []Entry, error) {
	var g golden
	if err := json.Unmarshal(data, &g); err != nil {
		return 0, nil, fmt.Errorf("battlelog: decode golden: %w", err)
	}
	if g.Version != GoldenVersion {
		return 0, nil, fmt.Errorf("battlelog: unsupported golden version %d", g.Version)
	}
	return g.Seed, g.Entries, nil
}
