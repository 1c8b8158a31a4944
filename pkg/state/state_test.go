package state

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mudguts/cmdrlog/pkg/inventory"
)

func TestIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()

	idx := LoadIndex(dir)
	if len(idx) != 0 {
		t.Fatalf("fresh state dir should load an empty index, got %#v", idx)
	}

	idx.Add("/journals/Journal.2025-03-09T120000.01.log", "/journals/Journal.2025-03-10T080000.01.log")
	if err := SaveIndex(dir, idx); err != nil {
		t.Fatal(err)
	}

	reloaded := LoadIndex(dir)
	if !reflect.DeepEqual(reloaded, idx) {
		t.Fatalf("want %#v, got %#v", idx, reloaded)
	}
	if !reloaded.Has("/journals/Journal.2025-03-09T120000.01.log") {
		t.Fatal("Has should report an ingested file")
	}
	if reloaded.Has("/journals/Journal.2025-03-11T090000.01.log") {
		t.Fatal("Has should not report a file never ingested")
	}
}

func TestMaterialsRoundTripAlwaysCoversAllCategories(t *testing.T) {
	dir := t.TempDir()

	m := LoadMaterials(dir)
	for _, cat := range inventory.Categories {
		if m[cat] == nil {
			t.Fatalf("category %s missing from fresh materials", cat)
		}
	}

	m["Cargo"] = inventory.Snapshot{"Gold": 5}
	if err := SaveMaterials(dir, m); err != nil {
		t.Fatal(err)
	}

	reloaded := LoadMaterials(dir)
	if !reflect.DeepEqual(reloaded["Cargo"], inventory.Snapshot{"Gold": 5}) {
		t.Fatalf("want Cargo Gold:5, got %#v", reloaded["Cargo"])
	}
	if len(reloaded["Backpack"]) != 0 || len(reloaded["ShipLocker"]) != 0 {
		t.Fatalf("untouched categories should stay empty, got %#v", reloaded)
	}
}

func TestHistoryMergeAppendsWithoutRewriting(t *testing.T) {
	existing := History{
		"2025-03-09": {"Arrived in Sol at 2025-03-09T12:00:00."},
	}
	incoming := map[string][]string{
		"2025-03-09": {"Sold 3x Gold for 3000 credits at Abraham Lincoln."},
		"2025-03-10": {"Docked at Daedalus in Sol."},
		"2025-03-11": nil,
	}

	merged := Merge(existing, incoming)

	want := History{
		"2025-03-09": {
			"Arrived in Sol at 2025-03-09T12:00:00.",
			"Sold 3x Gold for 3000 credits at Abraham Lincoln.",
		},
		"2025-03-10": {"Docked at Daedalus in Sol."},
	}
	if !reflect.DeepEqual(merged, want) {
		t.Fatalf("want %#v, got %#v", want, merged)
	}

	// Merge must not alias the caller's slices.
	merged["2025-03-09"][0] = "mutated"
	if existing["2025-03-09"][0] != "Arrived in Sol at 2025-03-09T12:00:00." {
		t.Fatal("merge aliased the existing history's backing array")
	}
}

func TestHistoryDatesSorted(t *testing.T) {
	h := History{
		"2025-03-10": {"b"},
		"2025-03-09": {"a"},
		"2025-02-28": {"c"},
	}
	want := []string{"2025-02-28", "2025-03-09", "2025-03-10"}
	if got := h.Dates(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestCorruptStateFilesReinitialize(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{IndexFile, MaterialsFile, HistoryFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{broken"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if idx := LoadIndex(dir); len(idx) != 0 {
		t.Fatalf("corrupt index should reload empty, got %#v", idx)
	}
	if h := LoadHistory(dir); len(h) != 0 {
		t.Fatalf("corrupt history should reload empty, got %#v", h)
	}
	m := LoadMaterials(dir)
	for _, cat := range inventory.Categories {
		if len(m[cat]) != 0 {
			t.Fatalf("corrupt materials should reload empty, got %#v", m)
		}
	}
}

func TestSaveCreatesStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	if err := SaveHistory(dir, History{"2025-03-09": {"line"}}); err != nil {
		t.Fatal(err)
	}
	if got := LoadHistory(dir); !reflect.DeepEqual(got, History{"2025-03-09": {"line"}}) {
		t.Fatalf("history did not survive round trip, got %#v", got)
	}
}
