// Package recurrence implements the occurrence-resolution engine for
// recurring tasks: parsing recurrence rule strings, expanding them into
// calendar dates inside a window, and resolving the next actionable
// occurrence under schedule- or completion-anchored policies.
package recurrence

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/samber/mo"
	"github.com/tasknotes/libtasknotes/dates"
	"github.com/tasknotes/libtasknotes/task"
)

// Occurrence describes one resolved calendar date of a recurring task, ready
// for a calendar renderer to annotate visually.
type Occurrence struct {
	Date dates.Date

	// IsCompleted and IsSkipped reflect the task's ledger. A date marked
	// both complete and skipped reports only IsCompleted; completion wins
	// for display.
	IsCompleted bool
	IsSkipped   bool

	// IsNext marks the schedule-anchored next occurrence, surfaced so the
	// renderer can style it distinctly from plain pattern instances.
	IsNext bool
}

// Resolver answers occurrence queries over task snapshots. All queries are
// pure and safe for concurrent use; the resolver holds no per-task state.
type Resolver struct {
	logger *slog.Logger
	config Config
	cache  *ExpansionCache
}

// NewResolver creates a resolver with DefaultConfig and no logging.
func NewResolver() *Resolver {
	return NewResolverWithConfig(DefaultConfig, nil)
}

// NewResolverWithConfig creates a resolver with explicit tuning. A nil
// logger discards diagnostics.
func NewResolverWithConfig(config Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var cache *ExpansionCache
	if config.CacheEnabled {
		cache = NewExpansionCache(config.Cache)
	}
	return &Resolver{logger: logger, config: config, cache: cache}
}

// Close releases the expansion cache, if one is running.
func (r *Resolver) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

// NextUncompleted resolves the next actionable occurrence of the task.
//
// Under schedule anchoring the pattern stays pinned to the original
// scheduled date; dates already completed or skipped are passed over but
// never move the anchor. Under completion anchoring the pattern re-anchors
// at the most recent completion (falling back to the scheduled date when
// nothing is completed yet), and every recorded completion consumes one unit
// of the rule's COUNT budget.
//
// None means: no rule, unparseable rule, no usable anchor, or the recurrence
// is exhausted by COUNT/UNTIL.
func (r *Resolver) NextUncompleted(t task.Task) mo.Option[dates.Date] {
	rule, ok := r.parseRule(t)
	if !ok {
		return mo.None[dates.Date]()
	}
	ledger := t.Ledger()

	if t.AnchorMode() == task.AnchorCompletion {
		return r.nextFromCompletion(rule, t, ledger)
	}
	return r.nextFromSchedule(rule, t, ledger)
}

// OccurrencesInWindow lists the task's occurrences inside
// [windowStart, windowEnd] inclusive, ascending, annotated with ledger state.
// The schedule-anchored next occurrence is folded in exactly once: when it
// coincides with a pattern date that descriptor is flagged instead of
// duplicated, and when it falls inside the window off-pattern it is inserted.
//
// An inverted window is a caller bug and returns an error; malformed task
// data only ever yields an empty list.
func (r *Resolver) OccurrencesInWindow(t task.Task, windowStart, windowEnd dates.Date) ([]Occurrence, error) {
	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("occurrences in window: end %s before start %s", windowEnd, windowStart)
	}

	rule, ok := r.parseRule(t)
	if !ok {
		return nil, nil
	}
	anchor, ok := r.patternAnchor(rule, t)
	if !ok {
		return nil, nil
	}
	ledger := t.Ledger()

	pattern := r.expandCached(t.Recurrence, rule, anchor, windowStart, windowEnd)

	next, hasNext := r.nextFromSchedule(rule, t, ledger).Get()

	out := make([]Occurrence, 0, len(pattern)+1)
	nextEmitted := false
	for _, d := range pattern {
		occ := r.annotate(d, ledger)
		if hasNext && d.SameDay(next) {
			occ.IsNext = true
			nextEmitted = true
		}
		out = append(out, occ)
	}

	if hasNext && !nextEmitted && !next.Before(windowStart) && !next.After(windowEnd) {
		occ := r.annotate(next, ledger)
		occ.IsNext = true
		out = append(out, occ)
		sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	}
	return out, nil
}

func (r *Resolver) annotate(d dates.Date, ledger task.Ledger) Occurrence {
	completed := ledger.IsComplete(d)
	return Occurrence{
		Date:        d,
		IsCompleted: completed,
		IsSkipped:   !completed && ledger.IsSkipped(d),
	}
}

// parseRule parses the task's recurrence string fresh; the string is the
// source of truth and the parse is cheap.
func (r *Resolver) parseRule(t task.Task) (Rule, bool) {
	if t.Recurrence == "" {
		return Rule{}, false
	}
	rule, err := Parse(t.Recurrence)
	if err != nil {
		r.logger.Debug("ignoring unparseable recurrence",
			"task", t.ID, "rule", t.Recurrence, "error", err)
		return Rule{}, false
	}
	return rule, true
}

// patternAnchor picks the date occurrence arithmetic starts from: the rule's
// own DTSTART when present, the task's scheduled date otherwise.
func (r *Resolver) patternAnchor(rule Rule, t task.Task) (dates.Date, bool) {
	if !rule.DTStart.IsZero() {
		return rule.DTStart.DatePart(), true
	}
	if sched, ok := t.ScheduledDate().Get(); ok {
		return sched, true
	}
	return dates.Date{}, false
}

func (r *Resolver) nextFromSchedule(rule Rule, t task.Task, ledger task.Ledger) mo.Option[dates.Date] {
	sched, ok := t.ScheduledDate().Get()
	if !ok {
		return mo.None[dates.Date]()
	}
	anchor, _ := r.patternAnchor(rule, t)
	return r.scanNext(rule, anchor, sched, ledger, true)
}

func (r *Resolver) nextFromCompletion(rule Rule, t task.Task, ledger task.Ledger) mo.Option[dates.Date] {
	// Completions consume the COUNT budget whether or not they landed on
	// pattern dates.
	if rule.Count > 0 && ledger.CompletedCount() >= rule.Count {
		return mo.None[dates.Date]()
	}

	anchor, ok := ledger.LatestCompleted().Get()
	if !ok {
		// Nothing completed yet: the scheduled date stands in as if it
		// were itself a completion.
		anchor, ok = t.ScheduledDate().Get()
		if !ok {
			return mo.None[dates.Date]()
		}
	}
	return r.scanNext(rule, anchor, anchor, ledger, false)
}

// scanNext walks the rule's occurrences generated from genAnchor and returns
// the first date strictly after the after-date that is neither completed nor
// skipped. The scan is bounded by the configured horizon and occurrence
// budget so pathological ledgers cannot spin it forever; the horizon also
// covers sparse (yearly) rules, whose next hit can sit far beyond any
// calendar window.
func (r *Resolver) scanNext(rule Rule, genAnchor, after dates.Date, ledger task.Ledger, withCount bool) mo.Option[dates.Date] {
	rr, err := newRRule(rule, genAnchor, withCount)
	if err != nil {
		r.logger.Debug("ignoring malformed recurrence", "rule", rule.String(), "error", err)
		return mo.None[dates.Date]()
	}

	horizon := dates.FromTime(after.DatePart().Time().Add(r.config.ScanHorizon))
	next := rr.Iterator()
	for i := 0; i < r.config.MaxScanOccurrences; i++ {
		t, ok := next()
		if !ok {
			return mo.None[dates.Date]()
		}
		d := dates.New(t.Year(), t.Month(), t.Day())
		if !d.After(after) {
			continue
		}
		if d.After(horizon) {
			return mo.None[dates.Date]()
		}
		if ledger.IsComplete(d) || ledger.IsSkipped(d) {
			continue
		}
		return mo.Some(d)
	}
	return mo.None[dates.Date]()
}

// expandCached runs Expand through the expansion cache when one is enabled.
// Rule text rather than the parsed form keys the cache, since the text is
// the source of truth.
func (r *Resolver) expandCached(ruleText string, rule Rule, anchor, windowStart, windowEnd dates.Date) []dates.Date {
	if r.cache == nil {
		out, _ := Expand(rule, anchor, windowStart, windowEnd)
		return out
	}

	key := expansionKey(ruleText, anchor, windowStart, windowEnd)
	if hit, ok := r.cache.Get(key); ok {
		return hit
	}
	out, _ := Expand(rule, anchor, windowStart, windowEnd)
	r.cache.Set(key, out)
	return out
}
