package journal

import (
	"path/filepath"
	"regexp"
	"sort"
)

// The producer embeds an ISO-like datetime in every journal filename
// (Journal.2025-03-09T120000.01.log). That timestamp, not filesystem mtime,
// is the authoritative ordering key.
var filenameTimestamp = regexp.MustCompile(`Journal\.(\d{4}-\d{2}-\d{2}T\d{6})`)

// A malformed or missing filename timestamp sorts first.
const timestampSentinel = "0000-00-00T000000"

// Discover returns all journal files in dir, unordered.
func Discover(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "Journal.*.log"))
}

// TimestampKey extracts the embedded datetime from a journal filename.
func TimestampKey(path string) string {
	m := filenameTimestamp.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return timestampSentinel
	}
	return m[1]
}

// SortByTimestamp orders journal files by their embedded filename timestamp,
// ascending. Files with equal keys fall back to lexicographic path order so
// the result is deterministic.
func SortByTimestamp(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		ki, kj := TimestampKey(paths[i]), TimestampKey(paths[j])
		if ki != kj {
			return ki < kj
		}
		return paths[i] < paths[j]
	})
}
