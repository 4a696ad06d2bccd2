package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNote = `---
id: abc-123
title: Water the plants
status: open
scheduled: "2024-01-01"
recurrence: FREQ=DAILY;INTERVAL=2
recurrenceAnchor: completion
completeInstances:
  - "2024-01-01"
  - "2024-01-03"
skippedInstances:
  - "2024-01-05"
---
Remember the balcony ones too.
`

func TestParseNote(t *testing.T) {
	tk, body, err := ParseNote([]byte(sampleNote))
	require.NoError(t, err)

	assert.Equal(t, "abc-123", tk.ID)
	assert.Equal(t, "Water the plants", tk.Title)
	assert.Equal(t, "open", tk.Status)
	assert.Equal(t, "FREQ=DAILY;INTERVAL=2", tk.Recurrence)
	assert.Equal(t, AnchorCompletion, tk.AnchorMode())
	assert.Equal(t, []string{"2024-01-01", "2024-01-03"}, tk.CompleteInstances)
	assert.Equal(t, []string{"2024-01-05"}, tk.SkippedInstances)
	assert.Equal(t, "Remember the balcony ones too.\n", string(body))

	sched, ok := tk.Scheduled.Get()
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", sched.Key())
}

func TestParseNote_GeneratesID(t *testing.T) {
	note := "---\ntitle: No id yet\n---\nbody\n"
	tk, _, err := ParseNote([]byte(note))
	require.NoError(t, err)
	assert.NotEmpty(t, tk.ID)
}

func TestParseNote_MalformedScheduledDegrades(t *testing.T) {
	note := "---\ntitle: Busted\nscheduled: whenever\n---\n"
	tk, _, err := ParseNote([]byte(note))
	require.NoError(t, err)
	assert.True(t, tk.Scheduled.IsAbsent())
}

func TestParseNote_NoFrontmatter(t *testing.T) {
	for _, src := range []string{"just a note", "--- not a fence", "---\nunclosed: yes\n"} {
		_, _, err := ParseNote([]byte(src))
		assert.ErrorIs(t, err, ErrNoFrontmatter, "input %q", src)
	}
}

func TestParseNote_InvalidYAML(t *testing.T) {
	note := "---\n\t{bad yaml\n---\n"
	_, _, err := ParseNote([]byte(note))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFrontmatter)
}

func TestEncodeNote_RoundTrip(t *testing.T) {
	tk, body, err := ParseNote([]byte(sampleNote))
	require.NoError(t, err)

	encoded, err := EncodeNote(tk, body)
	require.NoError(t, err)

	again, body2, err := ParseNote(encoded)
	require.NoError(t, err)
	assert.Equal(t, tk, again)
	assert.Equal(t, body, body2)
}

func TestEncodeNote_SortsInstances(t *testing.T) {
	tk := New("Sorted")
	tk.CompleteInstances = []string{"2024-03-01", "2024-01-01"}

	encoded, err := EncodeNote(tk, nil)
	require.NoError(t, err)

	again, _, err := ParseNote(encoded)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-03-01"}, again.CompleteInstances)
}
