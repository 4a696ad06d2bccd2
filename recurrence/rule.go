package recurrence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tasknotes/libtasknotes/dates"
	"github.com/teambition/rrule-go"
)

// Frequency is the recurrence frequency. Only the subset the task model
// actually uses is supported; sub-daily frequencies are not.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// Weekday is a two-letter iCalendar weekday code.
type Weekday string

const (
	Sunday    Weekday = "SU"
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
)

var weekdayCodes = map[Weekday]rrule.Weekday{
	Sunday:    rrule.SU,
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
}

// DefaultHour is the time of day assumed for rules whose DTSTART carries no
// time component.
const DefaultHour = 9

// Rule is a parsed recurrence specification.
type Rule struct {
	Freq       Frequency
	Interval   int // every N frequency units, >= 1
	ByDay      []Weekday
	ByMonthDay int        // 0 = unset
	ByMonth    int        // 0 = unset
	Count      int        // 0 = unbounded
	Until      dates.Date // zero = unbounded
	DTStart    dates.Date // zero = anchor supplied by the task's scheduled date
}

// ErrNoFrequency marks a recurrence string without a FREQ part. Callers treat
// it as "task is non-recurring".
var ErrNoFrequency = fmt.Errorf("recurrence rule has no FREQ")

// Parse reads a semicolon-delimited key=value recurrence string, e.g.
// "DTSTART:20240101;FREQ=DAILY;INTERVAL=1;BYDAY=MO,TU". Unknown keys are
// ignored and slightly malformed values (bad weekday codes, unparseable
// integers or dates) are dropped rather than failing the whole parse; only a
// missing or unrecognized FREQ is fatal.
func Parse(text string) (Rule, error) {
	rule := Rule{Interval: 1}

	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := splitPart(part)
		if !ok {
			continue
		}

		switch key {
		case "FREQ":
			switch Frequency(value) {
			case Daily, Weekly, Monthly, Yearly:
				rule.Freq = Frequency(value)
			}
		case "INTERVAL":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				rule.Interval = n
			}
		case "BYDAY":
			for _, code := range strings.Split(value, ",") {
				day := Weekday(strings.TrimSpace(code))
				if _, ok := weekdayCodes[day]; ok {
					rule.ByDay = append(rule.ByDay, day)
				}
			}
		case "BYMONTHDAY":
			if n, err := strconv.Atoi(value); err == nil {
				rule.ByMonthDay = n
			}
		case "BYMONTH":
			if n, err := strconv.Atoi(value); err == nil {
				rule.ByMonth = n
			}
		case "COUNT":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				rule.Count = n
			}
		case "UNTIL":
			if d, err := dates.ParseCompact(value); err == nil {
				rule.Until = d.DatePart()
			}
		case "DTSTART":
			if d, err := dates.ParseCompact(value); err == nil {
				rule.DTStart = d
			}
		}
	}

	if rule.Freq == "" {
		return Rule{}, fmt.Errorf("parse %q: %w", text, ErrNoFrequency)
	}
	return rule, nil
}

// splitPart handles both "KEY=VALUE" parts and the "DTSTART:20240101" colon
// form that recurrence strings carry over from iCalendar.
func splitPart(part string) (key, value string, ok bool) {
	eq := strings.Index(part, "=")
	colon := strings.Index(part, ":")
	switch {
	case eq >= 0 && (colon < 0 || eq < colon):
		return part[:eq], part[eq+1:], true
	case colon >= 0:
		return part[:colon], part[colon+1:], true
	default:
		return "", "", false
	}
}

// TimeOfDay returns the time of day occurrences notionally happen at: the
// DTSTART clock when one was given, DefaultHour otherwise.
func (r Rule) TimeOfDay() (hour, min int) {
	if r.DTStart.HasTime() {
		return r.DTStart.Clock()
	}
	return DefaultHour, 0
}

// valid reports whether the by-part constraints are inside their calendar
// ranges. Invalid rules expand to nothing rather than erroring, so one bad
// task never breaks rendering of the rest.
func (r Rule) valid() bool {
	if r.ByMonthDay < 0 || r.ByMonthDay > 31 {
		return false
	}
	if r.ByMonth < 0 || r.ByMonth > 12 {
		return false
	}
	return true
}

// ropts translates the rule into rrule-go options anchored at the given
// calendar date. withCount=false leaves COUNT off, which re-anchored
// (completion-based) arithmetic needs since its budget is tracked separately.
func (r Rule) ropts(anchor dates.Date, withCount bool) (rrule.ROption, error) {
	if !r.valid() {
		return rrule.ROption{}, fmt.Errorf("rule constraints out of range: BYMONTHDAY=%d BYMONTH=%d", r.ByMonthDay, r.ByMonth)
	}

	opt := rrule.ROption{
		Dtstart:  anchor.DatePart().Time(),
		Interval: r.Interval,
	}
	switch r.Freq {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
	case Monthly:
		opt.Freq = rrule.MONTHLY
	case Yearly:
		opt.Freq = rrule.YEARLY
	default:
		return rrule.ROption{}, fmt.Errorf("unsupported frequency %q", r.Freq)
	}
	for _, day := range r.ByDay {
		opt.Byweekday = append(opt.Byweekday, weekdayCodes[day])
	}
	if r.ByMonthDay != 0 {
		opt.Bymonthday = []int{r.ByMonthDay}
	}
	if r.ByMonth != 0 {
		opt.Bymonth = []int{r.ByMonth}
	}
	if withCount && r.Count > 0 {
		opt.Count = r.Count
	}
	if !r.Until.IsZero() {
		opt.Until = r.Until.DatePart().Time()
	}
	return opt, nil
}

// String re-serializes the rule. DTSTART keeps its iCalendar colon form so
// the output parses back with Parse.
func (r Rule) String() string {
	var parts []string
	if !r.DTStart.IsZero() {
		parts = append(parts, "DTSTART:"+r.DTStart.Compact())
	}
	parts = append(parts, "FREQ="+string(r.Freq))
	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}
	if len(r.ByDay) > 0 {
		codes := make([]string, len(r.ByDay))
		for i, day := range r.ByDay {
			codes[i] = string(day)
		}
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	}
	if r.ByMonthDay != 0 {
		parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", r.ByMonthDay))
	}
	if r.ByMonth != 0 {
		parts = append(parts, fmt.Sprintf("BYMONTH=%d", r.ByMonth))
	}
	if r.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", r.Count))
	}
	if !r.Until.IsZero() {
		parts = append(parts, "UNTIL="+r.Until.Compact())
	}
	return strings.Join(parts, ";")
}

// RuleBody is String without the DTSTART part, suitable for an iCalendar
// RRULE property value.
func (r Rule) RuleBody() string {
	body := r
	body.DTStart = dates.Date{}
	return body.String()
}
