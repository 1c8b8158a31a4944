package inventory

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDiffAddedAndRemoved(t *testing.T) {
	previous := Snapshot{"Gold": 2}
	current := Snapshot{"Gold": 5, "Iron": 1}

	added, removed := Diff(current, previous)

	wantAdded := map[string]int{"Gold": 3, "Iron": 1}
	if !reflect.DeepEqual(added, wantAdded) {
		t.Fatalf("added: want %#v, got %#v", wantAdded, added)
	}
	if len(removed) != 0 {
		t.Fatalf("removed: want empty, got %#v", removed)
	}
}

func TestDiffCountDrop(t *testing.T) {
	previous := Snapshot{"Gold": 5}
	current := Snapshot{"Gold": 2}

	added, removed := Diff(current, previous)
	if len(added) != 0 {
		t.Fatalf("added: want empty, got %#v", added)
	}
	if !reflect.DeepEqual(removed, map[string]int{"Gold": 3}) {
		t.Fatalf("removed: want Gold:3, got %#v", removed)
	}
}

// An item missing from the current snapshot means the run didn't observe it,
// not that it was removed to zero.
func TestDiffVanishedItemIsNotRemoved(t *testing.T) {
	previous := Snapshot{"Gold": 5, "Iron": 2}
	current := Snapshot{"Gold": 5}

	added, removed := Diff(current, previous)
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("vanished items must not diff, got added=%#v removed=%#v", added, removed)
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.json")
	content := `{"timestamp":"2025-03-09T12:00:00Z","event":"Cargo","Items":[{"Name":"Gold","Count":5},{"Name":"Iron","Count":1}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, present, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("snapshot file exists, present should be true")
	}
	if !reflect.DeepEqual(snap, Snapshot{"Gold": 5, "Iron": 1}) {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
}

func TestLoadSnapshotMissingFileIsEmptyNotError(t *testing.T) {
	snap, present, err := LoadSnapshot(filepath.Join(t.TempDir(), "Backpack.json"))
	if err != nil {
		t.Fatalf("missing snapshot must not error: %v", err)
	}
	if present {
		t.Fatal("present should be false for a missing file")
	}
	if len(snap) != 0 {
		t.Fatalf("want empty snapshot, got %#v", snap)
	}
}

func TestLoadSnapshotCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ShipLocker.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadSnapshot(path); err == nil {
		t.Fatal("corrupt snapshot should surface an error for the caller to downgrade")
	}
}

func TestCollectedLinesStableOrder(t *testing.T) {
	got := CollectedLines(map[string]int{"iron": 1, "gold": 3, "copper": 2})
	want := []string{
		"Collected 2x copper.",
		"Collected 3x gold.",
		"Collected 1x iron.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %#v, got %#v", want, got)
	}
}
