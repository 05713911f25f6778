// Package golden stores trusted battle logs and checks new runs against
// them. Baselines live in a SQLite database or in standalone JSON files.
package golden

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"spirit-tamer/battlecore/internal/battlelog"
)

// ErrNotFound is returned when no baseline exists under a name.
var ErrNotFound = errors.New("golden: baseline not found")

// Baseline is one recorded log.
type Baseline struct {
	Name     string
	Seed     int64
	Entries  []battlelog.Entry
	Checksum string
}

// Checksum hashes the canonical golden encoding of entries.
func Checksum(seed int64, entries []battlelog.Entry) (string, error) {
	data, err := battlelog.MarshalGolden(seed, entries)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify compares actual against the baseline. A seed mismatch is reported
// as a diff at index -1.
func (b Baseline) Verify(seed int64, actual []battlelog.Entry) []battlelog.Diff {
	var diffs []battlelog.Diff
	if seed != b.Seed {
		diffs = append(diffs, battlelog.Diff{Index: -1, Field: "seed", Actual: fmt.Sprint(seed), Expected: fmt.Sprint(b.Seed)})
	}
	return append(diffs, battlelog.Compare(actual, b.Entries)...)
}

// WriteFile records a baseline as JSON, replacing path atomically.
func WriteFile(path string, seed int64, entries []battlelog.Entry) error {
	data, err := battlelog.MarshalGolden(seed, entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("golden: create directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("golden: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("golden: replace file: %w", err)
	}
	return nil
}

// ReadFile loads a baseline written by WriteFile.
func ReadFile(path string) (Baseline, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Baseline{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return Baseline{}, fmt.Errorf("golden: read %s: %w", path, err)
	}
	seed, entries, err := battlelog.UnmarshalGolden(data)
	if err != nil {
		return Baseline{}, err
	}
	sum := sha256.Sum256(data)
	return Baseline{Name: filepath.Base(path), Seed: seed, Entries: entries, Checksum: hex.EncodeToString(sum[:])}, nil
}
