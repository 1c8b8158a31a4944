// Package state owns the ingestion job's durable files: the processed-file
// index, the previous-materials baseline, and the daily history. All three are
// plain, human-inspectable JSON. Loads tolerate missing or corrupt files by
// reinitializing to an empty default; saves go through a temp file and rename
// so a crash mid-write never leaves a truncated store behind.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mudguts/cmdrlog/internal/utils"
	"github.com/mudguts/cmdrlog/pkg/inventory"
)

const (
	IndexFile     = "processed_index.json"
	MaterialsFile = "previous_state.json"
	HistoryFile   = "session_history.json"
)

// Index is the durable set of source files already fully ingested. It only
// ever grows.
type Index map[string]struct{}

// Materials is the last-observed container snapshot per category, saved at the
// end of the previous run. It is the baseline every diff runs against.
type Materials map[string]inventory.Snapshot

// History maps calendar date (YYYY-MM-DD) to the ordered activity lines for
// that date.
type History map[string][]string

func LoadIndex(dir string) Index {
	path := filepath.Join(dir, IndexFile)
	idx := make(Index)
	var paths []string
	if !loadJSON(path, &paths) {
		return idx
	}
	for _, p := range paths {
		idx[p] = struct{}{}
	}
	return idx
}

func SaveIndex(dir string, idx Index) error {
	paths := make([]string, 0, len(idx))
	for p := range idx {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return writeJSON(filepath.Join(dir, IndexFile), paths)
}

// Has reports whether a source file has already been ingested.
func (idx Index) Has(path string) bool {
	_, ok := idx[path]
	return ok
}

// Add marks source files as ingested.
func (idx Index) Add(paths ...string) {
	for _, p := range paths {
		idx[p] = struct{}{}
	}
}

func LoadMaterials(dir string) Materials {
	path := filepath.Join(dir, MaterialsFile)
	m := make(Materials, len(inventory.Categories))
	raw := make(map[string]map[string]int)
	loadJSON(path, &raw)
	for _, cat := range inventory.Categories {
		snap := inventory.Snapshot{}
		for item, count := range raw[cat] {
			snap[item] = count
		}
		m[cat] = snap
	}
	return m
}

func SaveMaterials(dir string, m Materials) error {
	return writeJSON(filepath.Join(dir, MaterialsFile), m)
}

func LoadHistory(dir string) History {
	path := filepath.Join(dir, HistoryFile)
	h := make(History)
	loadJSON(path, &h)
	return h
}

func SaveHistory(dir string, h History) error {
	return writeJSON(filepath.Join(dir, HistoryFile), h)
}

// Merge folds newly derived per-day activities into the history. Dates already
// present keep their existing lines as an exact prefix; incoming lines are
// appended, never deduplicated, so repeated runs can keep contributing to the
// same calendar day.
func Merge(existing History, incoming map[string][]string) History {
	merged := make(History, len(existing)+len(incoming))
	for date, lines := range existing {
		merged[date] = append([]string(nil), lines...)
	}
	for date, lines := range incoming {
		if len(lines) == 0 {
			continue
		}
		merged[date] = append(merged[date], lines...)
	}
	return merged
}

// Dates returns the history's date keys in ascending order.
func (h History) Dates() []string {
	dates := make([]string, 0, len(h))
	for d := range h {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// loadJSON fills v from path, reporting whether a usable file was read. A
// missing file is the normal first-run case; a corrupt one is warned about
// because it silently drops prior baseline data.
func loadJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			utils.Log.Warnf("Could not read state file %s, reinitializing: %v", path, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		utils.Log.Warnf("Corrupt state file %s, reinitializing: %v", path, err)
		return false
	}
	return true
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
