// Package task models the recurrence-relevant slice of a task record and the
// per-occurrence completion ledger attached to it. Records are plain value
// snapshots: the engine never mutates a shared task, it reads one snapshot
// and hands back another for the caller to persist.
package task

import (
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/tasknotes/libtasknotes/dates"
)

// Anchor selects which date "one interval forward" is measured from when
// resolving the next occurrence.
type Anchor string

const (
	// AnchorScheduled pins the pattern to the task's original scheduled
	// date; completions never move it.
	AnchorScheduled Anchor = "scheduled"
	// AnchorCompletion measures from the most recent completion instead.
	AnchorCompletion Anchor = "completion"
)

// Task is the input record consumed from the host application's task cache.
type Task struct {
	ID     string
	Title  string
	Status string

	// Scheduled is the anchor date (optionally with a time of day) for
	// schedule-anchored recurrence. Absent means the task has no
	// recurrence instantiation point.
	Scheduled mo.Option[dates.Date]

	// Recurrence is the serialized rule string; it is the source of truth
	// and gets parsed fresh on every resolution.
	Recurrence string

	// RecurrenceAnchor defaults to AnchorScheduled when empty.
	RecurrenceAnchor Anchor

	// CompleteInstances and SkippedInstances hold YYYY-MM-DD strings with
	// set semantics; order is irrelevant and entries may carry a time
	// component, of which only the date part matters.
	CompleteInstances []string
	SkippedInstances  []string
}

// New returns an empty task with a fresh ID.
func New(title string) Task {
	return Task{ID: uuid.NewString(), Title: title}
}

// AnchorMode returns the effective anchoring policy.
func (t Task) AnchorMode() Anchor {
	if t.RecurrenceAnchor == AnchorCompletion {
		return AnchorCompletion
	}
	return AnchorScheduled
}

// ScheduledDate returns the date part of the scheduled anchor, if any.
func (t Task) ScheduledDate() mo.Option[dates.Date] {
	if sched, ok := t.Scheduled.Get(); ok {
		return mo.Some(sched.DatePart())
	}
	return mo.None[dates.Date]()
}

// Ledger builds the completion ledger from the task's instance lists.
func (t Task) Ledger() Ledger {
	return NewLedger(t.CompleteInstances, t.SkippedInstances)
}
