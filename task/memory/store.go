// Package memory provides an in-memory task store for hosts and tests. It
// serializes the read-modify-write of a task's completion ledger, which the
// pure resolver deliberately leaves to its caller.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tasknotes/libtasknotes/dates"
	"github.com/tasknotes/libtasknotes/task"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
)

// Error represents a store-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Store holds task snapshots keyed by ID. All methods copy values in and
// out, so callers never share mutable state with the store.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]task.Task
}

// New creates an empty store.
func New() *Store {
	return &Store{tasks: make(map[string]task.Task)}
}

// Get returns a snapshot of the task.
func (s *Store) Get(id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, &Error{Type: ErrNotFound, Message: "task " + id + " not found"}
	}
	return copyTask(t), nil
}

// Put inserts or replaces a task snapshot wholesale.
func (s *Store) Put(t task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = copyTask(t)
}

// Delete removes a task.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return &Error{Type: ErrNotFound, Message: "task " + id + " not found"}
	}
	delete(s.tasks, id)
	return nil
}

// List returns snapshots of all tasks, ordered by ID.
func (s *Store) List() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, copyTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ToggleComplete flips the completion mark for one occurrence date under the
// store's lock, so concurrent toggles on the same task cannot interleave.
// It returns the updated snapshot.
func (s *Store) ToggleComplete(id string, d dates.Date) (task.Task, error) {
	return s.mutateLedger(id, func(l task.Ledger) {
		if l.IsComplete(d) {
			l.UnmarkComplete(d)
		} else {
			l.MarkComplete(d)
		}
	})
}

// ToggleSkipped flips the skip mark for one occurrence date, with the same
// serialization guarantee as ToggleComplete.
func (s *Store) ToggleSkipped(id string, d dates.Date) (task.Task, error) {
	return s.mutateLedger(id, func(l task.Ledger) {
		if l.IsSkipped(d) {
			l.UnmarkSkipped(d)
		} else {
			l.MarkSkipped(d)
		}
	})
}

func (s *Store) mutateLedger(id string, mutate func(task.Ledger)) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, &Error{Type: ErrNotFound, Message: "task " + id + " not found"}
	}

	ledger := t.Ledger()
	mutate(ledger)
	t.CompleteInstances, t.SkippedInstances = ledger.Snapshot()

	s.tasks[id] = copyTask(t)
	return copyTask(t), nil
}

// copyTask deep-copies the slices so snapshots stay independent.
func copyTask(t task.Task) task.Task {
	out := t
	out.CompleteInstances = append([]string(nil), t.CompleteInstances...)
	out.SkippedInstances = append([]string(nil), t.SkippedInstances...)
	return out
}
