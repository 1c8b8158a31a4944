package galnet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mudguts/cmdrlog/pkg/knowledge"
)

const frontPage = `<html><body>
<div>
  <h3 class="hiLite galnetNewsArticleTitle"><a href="/galnet/uid/abc123">Federation Expands Patrols</a></h3>
  <p>09 MAR 3311</p>
  <p>Federal Navy vessels have increased patrols in the Sol system.</p>
  <p>President Hudson praised the initiative.</p>
</div>
<div>
  <h3 class="hiLite galnetNewsArticleTitle"><a href="/galnet/uid/def456">Thargoid Sighting Near Pleiades</a></h3>
  <p>08 MAR 3311</p>
  <p>Pilots report renewed Thargoid activity.</p>
</div>
<div>
  <h3 class="hiLite galnetNewsArticleTitle"><a href="/somewhere/else">Not An Article</a></h3>
</div>
</body></html>`

func TestFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/galnet" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(frontPage))
	}))
	defer srv.Close()

	fetcher := NewFetcher(srv.URL)
	articles, err := fetcher.FetchLatest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 2 {
		t.Fatalf("want 2 articles, got %#v", articles)
	}

	first := articles[0]
	if first.UID != "abc123" {
		t.Fatalf("want uid abc123, got %q", first.UID)
	}
	if first.Title != "Federation Expands Patrols" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Date != "09 MAR 3311" {
		t.Fatalf("unexpected date %q", first.Date)
	}
	wantContent := "Federal Navy vessels have increased patrols in the Sol system.\nPresident Hudson praised the initiative."
	if first.Content != wantContent {
		t.Fatalf("want %q, got %q", wantContent, first.Content)
	}
	if first.Link != srv.URL+"/galnet/uid/abc123" {
		t.Fatalf("unexpected link %q", first.Link)
	}
}

func TestFetchLatestNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewFetcher(srv.URL).FetchLatest(context.Background()); err == nil {
		t.Fatal("non-200 page should error")
	}
}

func TestMergeIntoStoreDeduplicatesByUID(t *testing.T) {
	dir := t.TempDir()

	merged, added, err := MergeIntoStore(dir, []Article{
		{UID: "a", Title: "A", Content: "body a"},
		{UID: "b", Title: "B", Content: "body b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 || len(merged) != 2 {
		t.Fatalf("want 2 added, got added=%d merged=%d", added, len(merged))
	}

	merged, added, err = MergeIntoStore(dir, []Article{
		{UID: "b", Title: "B", Content: "body b"},
		{UID: "c", Title: "C", Content: "body c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Fatalf("want 1 new article, got %d", added)
	}
	uids := make([]string, 0, len(merged))
	for _, a := range merged {
		uids = append(uids, a.UID)
	}
	if !reflect.DeepEqual(uids, []string{"a", "b", "c"}) {
		t.Fatalf("want uids [a b c], got %v", uids)
	}

	// The store on disk matches what was returned.
	data, err := os.ReadFile(filepath.Join(dir, articlesFile))
	if err != nil {
		t.Fatal(err)
	}
	var stored []Article
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(stored, merged) {
		t.Fatalf("store/return mismatch: %#v vs %#v", stored, merged)
	}
}

func TestNormalizeWritesKnowledgeEntries(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "galnet_entries.json")
	articles := []Article{
		{UID: "abc123", Title: "Federation Expands Patrols", Content: "Federal Navy vessels...\n"},
	}
	if err := Normalize(articles, outPath); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var entries []knowledge.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	want := []knowledge.Entry{{
		ID:          "galnet_abc123",
		Name:        "Federation Expands Patrols",
		Description: "Federal Navy vessels...",
	}}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("want %#v, got %#v", want, entries)
	}
}
