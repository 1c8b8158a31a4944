package knowledge

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Issue describes one problem found while validating knowledge entry files.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Validate walks dir (including subdirectories) and checks every *.json entry
// list for well-formedness: valid JSON, a top-level list, and id/name/
// description on each entry. Bucket documents are exempt.
func Validate(dir string) ([]Issue, error) {
	var issues []Issue
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			issues = append(issues, Issue{Path: path, Message: err.Error()})
			return nil
		}
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			issues = append(issues, Issue{Path: path, Message: "invalid JSON"})
			return nil
		}
		list, ok := raw.([]any)
		if !ok {
			// Bucket documents are objects; nothing further to check.
			return nil
		}
		bad := 0
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				bad++
				continue
			}
			for _, key := range []string{"id", "name", "description"} {
				if _, present := entry[key]; !present {
					bad++
					break
				}
			}
		}
		if bad > 0 {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("%d/%d entries are invalid", bad, len(list))})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// MergeEntryFiles combines every entry list in dir whose filename starts with
// prefix into a single entry file at outPath, preserving file order.
func MergeEntryFiles(dir, prefix, outPath string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"*.json"))
	if err != nil {
		return 0, err
	}
	var merged []Entry
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		var entries []Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return 0, fmt.Errorf("%s is not an entry list: %w", path, err)
		}
		merged = append(merged, entries...)
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return 0, err
	}
	return len(merged), nil
}
