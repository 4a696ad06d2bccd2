package task

import (
	"sort"

	"github.com/samber/mo"
	"github.com/tasknotes/libtasknotes/dates"
)

// Ledger is the per-occurrence completion and skip record of a single task:
// a set of calendar dates marked complete and a set marked skipped. All
// operations are idempotent and keyed by date part only; a ledger is a
// throwaway value built from one task snapshot.
type Ledger struct {
	complete map[string]dates.Date
	skipped  map[string]dates.Date
}

// NewLedger builds a ledger from raw instance strings. Entries may be
// unsorted and may carry a time component; malformed entries are dropped.
func NewLedger(complete, skipped []string) Ledger {
	l := Ledger{
		complete: make(map[string]dates.Date, len(complete)),
		skipped:  make(map[string]dates.Date, len(skipped)),
	}
	for _, s := range complete {
		if d, err := dates.Parse(s); err == nil {
			day := d.DatePart()
			l.complete[day.Key()] = day
		}
	}
	for _, s := range skipped {
		if d, err := dates.Parse(s); err == nil {
			day := d.DatePart()
			l.skipped[day.Key()] = day
		}
	}
	return l
}

// IsComplete reports whether the date's occurrence is marked complete.
func (l Ledger) IsComplete(d dates.Date) bool {
	_, ok := l.complete[d.DatePart().Key()]
	return ok
}

// IsSkipped reports whether the date's occurrence is marked skipped.
func (l Ledger) IsSkipped(d dates.Date) bool {
	_, ok := l.skipped[d.DatePart().Key()]
	return ok
}

// MarkComplete records the date's occurrence as complete.
func (l Ledger) MarkComplete(d dates.Date) {
	day := d.DatePart()
	l.complete[day.Key()] = day
}

// UnmarkComplete removes the date's completion mark.
func (l Ledger) UnmarkComplete(d dates.Date) {
	delete(l.complete, d.DatePart().Key())
}

// MarkSkipped records the date's occurrence as skipped.
func (l Ledger) MarkSkipped(d dates.Date) {
	day := d.DatePart()
	l.skipped[day.Key()] = day
}

// UnmarkSkipped removes the date's skip mark.
func (l Ledger) UnmarkSkipped(d dates.Date) {
	delete(l.skipped, d.DatePart().Key())
}

// CompletedCount returns the number of distinct completed dates.
func (l Ledger) CompletedCount() int { return len(l.complete) }

// LatestCompleted returns the most recent completed date regardless of the
// order completions were recorded in.
func (l Ledger) LatestCompleted() mo.Option[dates.Date] {
	var latest dates.Date
	for _, d := range l.complete {
		if latest.IsZero() || d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return mo.None[dates.Date]()
	}
	return mo.Some(latest)
}

// Snapshot returns sorted instance lists ready to persist back onto the task
// record.
func (l Ledger) Snapshot() (complete, skipped []string) {
	for key := range l.complete {
		complete = append(complete, key)
	}
	for key := range l.skipped {
		skipped = append(skipped, key)
	}
	sort.Strings(complete)
	sort.Strings(skipped)
	return complete, skipped
}
