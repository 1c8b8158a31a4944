package journal

import (
	"fmt"
	"sort"
)

// Aggregator buckets normalized activities by the calendar date of the event
// that produced them, preserving within-day order as encountered. Types tagged
// for aggregation accumulate during the pass and collapse to one summary line
// per (date, type) at finalization, anchored where their first occurrence was
// seen.
type Aggregator struct {
	buckets map[string][]slot
	groups  map[groupKey]*aggGroup
}

type groupKey struct {
	date string
	typ  string
}

type slot struct {
	text  string
	group *aggGroup
}

type aggGroup struct {
	typ   string
	first string
	count int
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		buckets: make(map[string][]slot),
		groups:  make(map[groupKey]*aggGroup),
	}
}

// Add normalizes one event and, unless it is denylisted, a ship-status update,
// or missing a usable timestamp, places it into its date bucket. The resulting
// activity is returned either way so callers can archive it or track ship
// status.
func (a *Aggregator) Add(e Event) (Activity, bool) {
	act, ok := Normalize(e)
	if !ok {
		return Activity{}, false
	}
	if act.Ship {
		return act, true
	}
	date, ok := e.Date()
	if !ok {
		return act, true
	}
	if act.Aggregate {
		key := groupKey{date: date, typ: act.Type}
		if g, seen := a.groups[key]; seen {
			g.count++
			return act, true
		}
		g := &aggGroup{typ: act.Type, first: act.Text, count: 1}
		a.groups[key] = g
		a.buckets[date] = append(a.buckets[date], slot{group: g})
		return act, true
	}
	a.buckets[date] = append(a.buckets[date], slot{text: act.Text})
	return act, true
}

// Append adds already-rendered activity lines to the given date bucket. Used
// for inventory diff entries, which carry no event timestamp of their own and
// are dated by run time.
func (a *Aggregator) Append(date string, lines ...string) {
	for _, line := range lines {
		a.buckets[date] = append(a.buckets[date], slot{text: line})
	}
}

// Finalize renders all buckets. Aggregated groups with a single occurrence
// pass through verbatim; repeated occurrences collapse to a
// "<type>: N events (e.g., <first>)" line.
func (a *Aggregator) Finalize() map[string][]string {
	out := make(map[string][]string, len(a.buckets))
	for date, slots := range a.buckets {
		lines := make([]string, 0, len(slots))
		for _, s := range slots {
			if s.group == nil {
				lines = append(lines, s.text)
				continue
			}
			if s.group.count == 1 {
				lines = append(lines, s.group.first)
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %d events (e.g., %s)", s.group.typ, s.group.count, s.group.first))
		}
		out[date] = lines
	}
	return out
}

// Dates returns the bucketed dates in ascending order.
func (a *Aggregator) Dates() []string {
	dates := make([]string, 0, len(a.buckets))
	for d := range a.buckets {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
