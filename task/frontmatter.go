package task

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/tasknotes/libtasknotes/dates"
	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter marks a note without a leading "---" fenced YAML block.
var ErrNoFrontmatter = errors.New("note has no frontmatter block")

var fence = []byte("---")

// frontmatter is the YAML shape of a task note's header.
type frontmatter struct {
	ID                string   `yaml:"id,omitempty"`
	Title             string   `yaml:"title,omitempty"`
	Status            string   `yaml:"status,omitempty"`
	Scheduled         string   `yaml:"scheduled,omitempty"`
	Recurrence        string   `yaml:"recurrence,omitempty"`
	RecurrenceAnchor  string   `yaml:"recurrenceAnchor,omitempty"`
	CompleteInstances []string `yaml:"completeInstances,omitempty"`
	SkippedInstances  []string `yaml:"skippedInstances,omitempty"`
}

// ParseNote splits a markdown note into its task record and body. A
// malformed scheduled date degrades to "no scheduled date" rather than
// failing the note; only a missing fence or invalid YAML is an error.
func ParseNote(src []byte) (Task, []byte, error) {
	header, body, err := splitFrontmatter(src)
	if err != nil {
		return Task{}, src, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return Task{}, body, fmt.Errorf("parse frontmatter: %w", err)
	}

	t := Task{
		ID:                fm.ID,
		Title:             fm.Title,
		Status:            fm.Status,
		Recurrence:        fm.Recurrence,
		RecurrenceAnchor:  Anchor(fm.RecurrenceAnchor),
		CompleteInstances: fm.CompleteInstances,
		SkippedInstances:  fm.SkippedInstances,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if fm.Scheduled != "" {
		if d, err := dates.Parse(fm.Scheduled); err == nil {
			t.Scheduled = mo.Some(d)
		}
	}
	return t, body, nil
}

// EncodeNote renders the task back into a frontmatter-fenced markdown note.
// Instance lists are emitted sorted so repeated round trips are stable.
func EncodeNote(t Task, body []byte) ([]byte, error) {
	complete, skipped := t.Ledger().Snapshot()
	fm := frontmatter{
		ID:                t.ID,
		Title:             t.Title,
		Status:            t.Status,
		Recurrence:        t.Recurrence,
		RecurrenceAnchor:  string(t.RecurrenceAnchor),
		CompleteInstances: complete,
		SkippedInstances:  skipped,
	}
	if sched, ok := t.Scheduled.Get(); ok {
		fm.Scheduled = sched.String()
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(fence)
	buf.WriteByte('\n')
	buf.Write(header)
	buf.Write(fence)
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes(), nil
}

func splitFrontmatter(src []byte) (header, body []byte, err error) {
	if !bytes.HasPrefix(src, fence) {
		return nil, src, ErrNoFrontmatter
	}
	rest := src[len(fence):]
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}
	end := bytes.Index(rest, append([]byte("\n"), fence...))
	if end < 0 {
		return nil, src, ErrNoFrontmatter
	}
	header = rest[:end+1]
	body = rest[end+1+len(fence):]
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}
	return header, body, nil
}
