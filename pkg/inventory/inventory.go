package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// The three container categories the simulator exposes as live JSON snapshots.
var Categories = []string{"Cargo", "Backpack", "ShipLocker"}

// SnapshotFile returns the snapshot filename the simulator writes for a
// category (Cargo.json, Backpack.json, ShipLocker.json).
func SnapshotFile(category string) string {
	return category + ".json"
}

// Snapshot maps item name to count for one container category.
type Snapshot map[string]int

type snapshotDoc struct {
	Items []struct {
		Name  string `json:"Name"`
		Count int    `json:"Count"`
	} `json:"Items"`
}

// LoadSnapshot reads a live container snapshot file. A missing file means the
// container has not changed since its last creation and loads as an empty
// snapshot with ok=false; a present but unreadable file is an error.
func LoadSnapshot(path string) (Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return nil, false, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	snap := make(Snapshot, len(doc.Items))
	for _, item := range doc.Items {
		snap[item.Name] = item.Count
	}
	return snap, true, nil
}

// Diff compares a fresh snapshot against the previous run's baseline. Items
// whose count grew accrue the positive delta to added; items whose count
// shrank accrue the magnitude to removed. Items present only in the baseline
// are left uncompared: the snapshot not observing an item is not the same as
// the item being removed to zero.
func Diff(current, previous Snapshot) (added, removed map[string]int) {
	added = make(map[string]int)
	removed = make(map[string]int)
	for item, count := range current {
		prev := previous[item]
		switch {
		case count > prev:
			added[item] += count - prev
		case count < prev:
			removed[item] += prev - count
		}
	}
	return added, removed
}

// CollectedLines renders one "Collected Nx <item>." line per added item, in
// stable item order.
func CollectedLines(added map[string]int) []string {
	items := make([]string, 0, len(added))
	for item := range added {
		items = append(items, item)
	}
	sort.Strings(items)
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("Collected %dx %s.", added[item], item))
	}
	return lines
}
