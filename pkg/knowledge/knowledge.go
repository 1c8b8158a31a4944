// Package knowledge holds the local lore base used to enrich diary prompts.
// The base is an explicit value loaded per invocation, never package state.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mudguts/cmdrlog/internal/utils"
)

// Entry is one retrievable lore snippet (ships, factions, GalNet articles).
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Base aggregates everything loaded from the knowledge data directory:
// keyed lookup buckets plus flat entry lists.
type Base struct {
	Events    map[string]string
	Terms     map[string]string
	Materials map[string][]string
	Entries   []Entry
}

type bucketDoc struct {
	Events    map[string]string   `json:"events"`
	Terms     map[string]string   `json:"terms"`
	Materials map[string][]string `json:"materials"`
}

func NewBase() *Base {
	return &Base{
		Events:    make(map[string]string),
		Terms:     make(map[string]string),
		Materials: make(map[string][]string),
	}
}

// Load reads every *.json file under dir into one Base. Files may be either
// bucket documents ({"events": ..., "terms": ..., "materials": ...}) or flat
// entry lists ([{"id", "name", "description"}]); files that are neither are
// skipped with a warning. A missing directory loads as an empty base.
func Load(dir string) (*Base, error) {
	base := NewBase()
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		utils.Log.Warnf("No knowledge files found in %s, using empty knowledge base.", dir)
		return base, nil
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			utils.Log.Warnf("Could not read knowledge file %s: %v", path, err)
			continue
		}
		if !base.mergeFile(data) {
			utils.Log.Warnf("Knowledge file %s is neither a bucket document nor an entry list, skipping.", path)
		}
	}
	return base, nil
}

func (b *Base) mergeFile(data []byte) bool {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err == nil {
		for _, e := range entries {
			if e.Name != "" && e.Description != "" {
				b.Entries = append(b.Entries, e)
			}
		}
		return true
	}
	var doc bucketDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	for k, v := range doc.Events {
		b.Events[k] = v
	}
	for k, v := range doc.Terms {
		b.Terms[k] = v
	}
	for k, v := range doc.Materials {
		b.Materials[k] = append(b.Materials[k], v...)
	}
	return true
}

// maxSnippets caps how much lore a single retrieval can pull into a prompt.
const maxSnippets = 8

// Retrieve returns a concatenated blob of lore snippets whose subject appears
// in any of the given activity lines, or "" when none match.
func (b *Base) Retrieve(activities []string) string {
	var snippets []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, dup := seen[s]; dup || len(snippets) >= maxSnippets {
			return
		}
		seen[s] = struct{}{}
		snippets = append(snippets, s)
	}

	for _, activity := range activities {
		for event, description := range b.Events {
			if strings.Contains(activity, event) {
				add(fmt.Sprintf("- %s: %s", event, description))
			}
		}
		for term, definition := range b.Terms {
			if strings.Contains(activity, term) {
				add(fmt.Sprintf("- %s: %s", term, definition))
			}
		}
		for _, materials := range b.Materials {
			for _, material := range materials {
				name, _, _ := strings.Cut(material, " - ")
				if name != "" && strings.Contains(activity, name) {
					add("- " + material)
				}
			}
		}
		for _, entry := range b.Entries {
			if strings.Contains(activity, entry.Name) {
				add(fmt.Sprintf("- %s: %s", entry.Name, entry.Description))
			}
		}
	}
	return strings.Join(snippets, "\n")
}
