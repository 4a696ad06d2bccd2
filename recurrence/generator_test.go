package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknotes/libtasknotes/dates"
)

func mustParse(t *testing.T, text string) Rule {
	t.Helper()
	rule, err := Parse(text)
	require.NoError(t, err)
	return rule
}

func keys(ds []dates.Date) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Key()
	}
	return out
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name        string
		rule        string
		anchor      dates.Date
		windowStart dates.Date
		windowEnd   dates.Date
		want        []string
	}{
		{
			name:        "daily inclusive window",
			rule:        "FREQ=DAILY",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 1, 4),
			want:        []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
		},
		{
			name:        "never before the anchor",
			rule:        "FREQ=DAILY",
			anchor:      dates.New(2024, 1, 10),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 1, 12),
			want:        []string{"2024-01-10", "2024-01-11", "2024-01-12"},
		},
		{
			name:        "daily with interval",
			rule:        "FREQ=DAILY;INTERVAL=3",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 1, 10),
			want:        []string{"2024-01-01", "2024-01-04", "2024-01-07", "2024-01-10"},
		},
		{
			name:        "weekly byday emits listed weekdays in order",
			rule:        "FREQ=WEEKLY;BYDAY=MO,WE",
			anchor:      dates.New(2024, 1, 1), // a Monday
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 1, 14),
			want:        []string{"2024-01-01", "2024-01-03", "2024-01-08", "2024-01-10"},
		},
		{
			name:        "weekly without byday fires on the anchor weekday",
			rule:        "FREQ=WEEKLY",
			anchor:      dates.New(2024, 1, 3), // a Wednesday
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 1, 31),
			want:        []string{"2024-01-03", "2024-01-10", "2024-01-17", "2024-01-24", "2024-01-31"},
		},
		{
			name:        "daily byday acts as weekday filter",
			rule:        "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR",
			anchor:      dates.New(2024, 1, 4), // a Thursday
			windowStart: dates.New(2024, 1, 4),
			windowEnd:   dates.New(2024, 1, 9),
			want:        []string{"2024-01-04", "2024-01-05", "2024-01-08", "2024-01-09"},
		},
		{
			name:        "monthly day 31 skips short months",
			rule:        "FREQ=MONTHLY;BYMONTHDAY=31",
			anchor:      dates.New(2024, 1, 31),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 5, 31),
			want:        []string{"2024-01-31", "2024-03-31", "2024-05-31"},
		},
		{
			name:        "yearly by month and monthday",
			rule:        "FREQ=YEARLY;BYMONTH=3;BYMONTHDAY=14",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2026, 12, 31),
			want:        []string{"2024-03-14", "2025-03-14", "2026-03-14"},
		},
		{
			name:        "until excludes later dates",
			rule:        "FREQ=DAILY;UNTIL=20240103",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 1, 10),
			want:        []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		},
		{
			name:        "count consumed by occurrences before the window",
			rule:        "FREQ=DAILY;COUNT=5",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 4),
			windowEnd:   dates.New(2024, 1, 31),
			want:        []string{"2024-01-04", "2024-01-05"},
		},
		{
			name:        "count and until both bind",
			rule:        "FREQ=DAILY;COUNT=10;UNTIL=20240103",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 1, 31),
			want:        []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		},
		{
			name:        "bymonthday out of range expands to nothing",
			rule:        "FREQ=MONTHLY;BYMONTHDAY=32",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 12, 31),
			want:        nil,
		},
		{
			name:        "bymonth out of range expands to nothing",
			rule:        "FREQ=YEARLY;BYMONTH=13",
			anchor:      dates.New(2024, 1, 1),
			windowStart: dates.New(2024, 1, 1),
			windowEnd:   dates.New(2024, 12, 31),
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(mustParse(t, tt.rule), tt.anchor, tt.windowStart, tt.windowEnd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, func() []string {
				if len(got) == 0 {
					return nil
				}
				return keys(got)
			}())
		})
	}
}

func TestExpand_MonotonicNoDuplicates(t *testing.T) {
	rules := []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;BYDAY=SU,MO,TU,WE,TH,FR,SA",
		"FREQ=MONTHLY;BYMONTHDAY=15",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=TU,TH",
	}
	anchor := dates.New(2024, 1, 1)
	for _, text := range rules {
		got, err := Expand(mustParse(t, text), anchor, dates.New(2024, 1, 1), dates.New(2024, 6, 30))
		require.NoError(t, err)
		require.NotEmpty(t, got, "rule %q", text)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].Before(got[i]), "rule %q: %s not before %s", text, got[i-1], got[i])
		}
	}
}

func TestExpand_EmptyAnchor(t *testing.T) {
	got, err := Expand(mustParse(t, "FREQ=DAILY"), dates.Date{}, dates.New(2024, 1, 1), dates.New(2024, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpand_InvertedWindow(t *testing.T) {
	_, err := Expand(mustParse(t, "FREQ=DAILY"), dates.New(2024, 1, 1), dates.New(2024, 2, 1), dates.New(2024, 1, 1))
	assert.Error(t, err)
}

func TestExpand_Restartable(t *testing.T) {
	rule := mustParse(t, "FREQ=WEEKLY;BYDAY=MO,FR;COUNT=8")
	anchor := dates.New(2024, 1, 1)
	first, err := Expand(rule, anchor, dates.New(2024, 1, 1), dates.New(2024, 2, 29))
	require.NoError(t, err)
	second, err := Expand(rule, anchor, dates.New(2024, 1, 1), dates.New(2024, 2, 29))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
