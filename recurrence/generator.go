package recurrence

import (
	"fmt"

	"github.com/tasknotes/libtasknotes/dates"
	"github.com/teambition/rrule-go"
)

// Expand returns the calendar dates on which rule fires within
// [windowStart, windowEnd] inclusive, in strictly ascending order with no
// duplicates. Candidate generation starts at the anchor (the rule's DTSTART,
// or the task's scheduled date when the rule has none) and never emits dates
// before it, even when the window opens earlier.
//
// COUNT is a global budget counted from the anchor: occurrences that elapsed
// before the window still consume it. UNTIL excludes every date strictly
// after it. A rule whose constraints are out of range expands to nothing.
// Each call regenerates from scratch; no cursor state is kept.
func Expand(rule Rule, anchor, windowStart, windowEnd dates.Date) ([]dates.Date, error) {
	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("expand: window end %s before start %s", windowEnd, windowStart)
	}
	if anchor.IsZero() {
		return nil, nil
	}

	rr, err := newRRule(rule, anchor, true)
	if err != nil {
		return nil, nil
	}

	// rrule-go's Between is inclusive on both ends with inc=true. Date-only
	// values sit at midnight UTC on both sides, so the comparison is exact.
	hits := rr.Between(windowStart.DatePart().Time(), windowEnd.DatePart().Time(), true)

	out := make([]dates.Date, 0, len(hits))
	for _, t := range hits {
		d := dates.New(t.Year(), t.Month(), t.Day())
		if len(out) > 0 && out[len(out)-1].SameDay(d) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// newRRule builds the rrule-go rule anchored at the given date. Construction
// failure means the rule is malformed; callers fall back to the empty
// sequence.
func newRRule(rule Rule, anchor dates.Date, withCount bool) (*rrule.RRule, error) {
	opt, err := rule.ropts(anchor, withCount)
	if err != nil {
		return nil, err
	}
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build rrule: %w", err)
	}
	return rr, nil
}
