package archive

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "archive.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertEventsAndStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	events := []Event{
		{SourcePath: "/j/Journal.2025-03-09T100000.01.log", LineIndex: 0, Date: "2025-03-09", EventType: "FSDJump", Category: "Travel", Activity: "Arrived in Sol at 2025-03-09T10:00:00.", RawJSON: `{"event":"FSDJump"}`},
		{SourcePath: "/j/Journal.2025-03-09T100000.01.log", LineIndex: 1, Date: "2025-03-09", EventType: "Scan", Category: "Exploration", Activity: "Scanned Earth at 2025-03-09T10:05:00."},
		{SourcePath: "/j/Journal.2025-03-09T100000.01.log", LineIndex: 2, Date: "2025-03-09", EventType: "Scan", Category: "Exploration", Activity: "Scanned Mars at 2025-03-09T10:06:00."},
		{SourcePath: "/j/Journal.2025-03-10T080000.01.log", LineIndex: 0, Date: "2025-03-10", EventType: "Docked", Category: "Docking", Activity: "Docked at Daedalus at 2025-03-10T08:00:00."},
	}
	if err := db.InsertEvents(ctx, events); err != nil {
		t.Fatal(err)
	}

	typeStats, err := db.TypeStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wantTypes := []TypeStat{
		{EventType: "Scan", Category: "Exploration", Count: 2},
		{EventType: "Docked", Category: "Docking", Count: 1},
		{EventType: "FSDJump", Category: "Travel", Count: 1},
	}
	if !reflect.DeepEqual(typeStats, wantTypes) {
		t.Fatalf("want %#v, got %#v", wantTypes, typeStats)
	}

	dateStats, err := db.DateStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wantDates := []DateStat{
		{Date: "2025-03-09", Count: 3},
		{Date: "2025-03-10", Count: 1},
	}
	if !reflect.DeepEqual(dateStats, wantDates) {
		t.Fatalf("want %#v, got %#v", wantDates, dateStats)
	}
}

func TestInsertEventsEmptyBatchIsNoOp(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertEvents(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	stats, err := db.TypeStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 0 {
		t.Fatalf("want empty archive, got %#v", stats)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.sqlite")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InsertEvents(context.Background(), []Event{
		{SourcePath: "/j/a.log", Date: "2025-03-09", EventType: "FSDJump", Category: "Travel", Activity: "x"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	stats, err := reopened.DateStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || stats[0].Count != 1 {
		t.Fatalf("archive did not survive reopen, got %#v", stats)
	}
}

func TestCloseNil(t *testing.T) {
	var db *DB
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}
