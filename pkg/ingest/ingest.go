// Package ingest drives one batch pass over the simulator's journal
// directory: discover unprocessed journal files, normalize their events into
// per-day activity lines, diff the live container snapshots against the
// previous run's baseline, and fold everything into the durable daily
// history. The processed-file index is committed last so an interrupted run
// is always safe to retry.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mudguts/cmdrlog/internal/utils"
	"github.com/mudguts/cmdrlog/pkg/archive"
	"github.com/mudguts/cmdrlog/pkg/inventory"
	"github.com/mudguts/cmdrlog/pkg/journal"
	"github.com/mudguts/cmdrlog/pkg/state"
)

// Journal lines are JSON objects; some (Materials, ShipLocker) run long.
// Anything past this is treated as corrupt and skipped like a malformed line.
const maxLineBytes = 1024 * 1024

// Config carries the resolved settings for one ingestion run. All durable
// state is loaded at the start of RunOnce and persisted at the end; there is
// no process-lifetime state.
type Config struct {
	// JournalDir is the simulator-owned directory holding Journal.*.log files
	// and the three container snapshot files.
	JournalDir string
	// StateDir holds the ingestion job's own durable JSON files.
	StateDir string
	// Archive, when non-nil, receives a copy of every parsed event line.
	Archive *archive.DB
	// Now supplies the run timestamp; defaults to time.Now. Diff activities
	// are dated by it.
	Now func() time.Time
}

type Runner struct {
	cfg Config
}

// Stats summarizes one run.
type Stats struct {
	FilesIngested  int
	LinesRead      int
	LinesSkipped   int
	EventsDropped  int
	EventsUnknown  int
	ItemsCollected int
	DatesTouched   []string
	Commander      string
	Fuel           string
	Hull           string
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.JournalDir == "" {
		return nil, fmt.Errorf("JournalDir is required")
	}
	if cfg.StateDir == "" {
		return nil, fmt.Errorf("StateDir is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{cfg: cfg}, nil
}

// RunOnce performs a single batch pass. It returns the run's stats; a non-nil
// error means durable state could not be persisted and nothing was committed.
func (r *Runner) RunOnce(ctx context.Context) (*Stats, error) {
	stats := &Stats{Commander: "Commander", Fuel: "Unknown", Hull: "No reported damage"}

	index := state.LoadIndex(r.cfg.StateDir)

	all, err := journal.Discover(r.cfg.JournalDir)
	if err != nil {
		return stats, fmt.Errorf("discovering journal files: %w", err)
	}
	var fresh []string
	for _, path := range all {
		if !index.Has(path) {
			fresh = append(fresh, path)
		}
	}
	if len(fresh) == 0 {
		utils.Log.Info("No new journal files to process.")
		return stats, nil
	}
	journal.SortByTimestamp(fresh)

	materials := state.LoadMaterials(r.cfg.StateDir)
	agg := journal.NewAggregator()

	var ingested []string
	var archived []archive.Event
	for _, path := range fresh {
		utils.Log.Infof("Processing %s...", path)
		ok, err := r.ingestFile(path, agg, stats, &archived)
		if err != nil {
			utils.Log.Errorf("Skipping %s after read failure: %v", path, err)
			continue
		}
		if ok {
			ingested = append(ingested, path)
			stats.FilesIngested++
		}
	}
	if len(ingested) == 0 {
		return stats, fmt.Errorf("no journal file could be read")
	}

	// Container snapshots are diffed once per run, after all journal files,
	// strictly against the baseline saved by the previous run.
	today := r.cfg.Now().Format("2006-01-02")
	for _, cat := range inventory.Categories {
		snapPath := filepath.Join(r.cfg.JournalDir, inventory.SnapshotFile(cat))
		snap, present, err := inventory.LoadSnapshot(snapPath)
		if err != nil {
			utils.Log.Warnf("Could not read %s snapshot, treating as empty: %v", cat, err)
			continue
		}
		if !present {
			continue
		}
		added, removed := inventory.Diff(snap, materials[cat])
		if lines := inventory.CollectedLines(added); len(lines) > 0 {
			agg.Append(today, lines...)
			stats.ItemsCollected += len(lines)
		}
		if len(removed) > 0 {
			utils.Log.Debugf("%s removals this run: %v", cat, removed)
		}
		materials[cat] = snap
	}

	incoming := agg.Finalize()
	stats.DatesTouched = agg.Dates()

	merged := state.Merge(state.LoadHistory(r.cfg.StateDir), incoming)
	if err := state.SaveHistory(r.cfg.StateDir, merged); err != nil {
		return stats, fmt.Errorf("persisting history: %w", err)
	}
	if err := state.SaveMaterials(r.cfg.StateDir, materials); err != nil {
		return stats, fmt.Errorf("persisting materials baseline: %w", err)
	}

	if r.cfg.Archive != nil {
		if err := r.cfg.Archive.InsertEvents(ctx, archived); err != nil {
			utils.Log.Warnf("Could not archive %d events: %v", len(archived), err)
		}
	}

	// The index commit is last: a crash anywhere above leaves these files
	// uncommitted, and reprocessing them is safe.
	index.Add(ingested...)
	if err := state.SaveIndex(r.cfg.StateDir, index); err != nil {
		return stats, fmt.Errorf("committing processed-file index: %w", err)
	}

	utils.Log.Infof("Run complete: files=%d lines=%d skipped=%d unknown=%d collected=%d dates=%v fuel=%q hull=%q",
		stats.FilesIngested, stats.LinesRead, stats.LinesSkipped, stats.EventsUnknown,
		stats.ItemsCollected, stats.DatesTouched, stats.Fuel, stats.Hull)
	return stats, nil
}

// ingestFile feeds every parseable line of one journal file into the
// aggregator. A single bad or oversized line never aborts the file; a read
// error does, and the file is then left out of the index commit.
func (r *Runner) ingestFile(path string, agg *journal.Aggregator, stats *Stats, archived *[]archive.Event) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 64*1024)
	lineIdx := -1
	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return false, readErr
		}
		if raw != "" {
			lineIdx++
			line := strings.TrimRight(raw, "\r\n")
			switch {
			case line == "":
			case len(line) > maxLineBytes:
				stats.LinesRead++
				stats.LinesSkipped++
				utils.Log.Debugf("Skipping oversized line %d of %s (%d bytes)", lineIdx, path, len(line))
			default:
				stats.LinesRead++
				r.ingestLine(path, lineIdx, line, agg, stats, archived)
			}
		}
		if readErr == io.EOF {
			return true, nil
		}
	}
}

func (r *Runner) ingestLine(path string, lineIdx int, line string, agg *journal.Aggregator, stats *Stats, archived *[]archive.Event) {
	ev, ok := journal.ParseLine(line)
	if !ok {
		stats.LinesSkipped++
		utils.Log.Debugf("Skipping unparsable line %d of %s", lineIdx, path)
		return
	}
	if name, ok := ev.Commander(); ok {
		stats.Commander = "CMDR " + name
	}

	act, ok := agg.Add(ev)
	if ok {
		if act.Ship {
			r.trackShipStatus(ev, stats)
		}
		if act.Category == "Other" {
			stats.EventsUnknown++
		}
	} else {
		// Denylisted lines never become activities but still reach the
		// archive so later reclassification has the full record.
		stats.EventsDropped++
		act = journal.Activity{Type: ev.Type(), Category: "Noise"}
	}

	if r.cfg.Archive != nil {
		date, _ := ev.Date()
		*archived = append(*archived, archive.Event{
			SourcePath: path,
			LineIndex:  lineIdx,
			Date:       date,
			EventType:  act.Type,
			Category:   act.Category,
			Activity:   act.Text,
			RawJSON:    ev.Raw(),
		})
	}
}

// trackShipStatus keeps the run's last-known fuel and hull readings. These are
// surfaced in run logging only; they never enter the daily history.
func (r *Runner) trackShipStatus(ev journal.Event, stats *Stats) {
	switch ev.Type() {
	case "FuelScoop":
		stats.Fuel = ev.Num("Total") + " tons"
	case "RefuelAll":
		stats.Fuel = "Refuelled"
	case "HullDamage":
		stats.Hull = "Hull integrity at " + ev.Num("Health") + "%"
	case "Repair":
		stats.Hull = "Repaired " + ev.Str("Item")
	}
}
