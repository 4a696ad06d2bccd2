package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tasknotes/libtasknotes/dates"
	"github.com/tasknotes/libtasknotes/task"
)

const productID = "-//libtasknotes//Task Recurrence//EN"

// ExportCalendar renders a recurring task as a VCALENDAR feed: one master
// VTODO carrying the task's DTSTART/RRULE with skipped dates as date-only
// EXDATEs, plus one VTODO per occurrence resolved inside the window, related
// back to the master and carrying its ledger state as STATUS. Calendar
// collaborators consume this without re-implementing any recurrence math.
func (r *Resolver) ExportCalendar(t task.Task, windowStart, windowEnd dates.Date) (*ical.Calendar, error) {
	occurrences, err := r.OccurrencesInWindow(t, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	uid := t.ID
	if uid == "" {
		uid = uuid.NewString()
	}

	master := ical.NewComponent(ical.CompToDo)
	master.Props.SetText(ical.PropUID, uid)
	if t.Title != "" {
		master.Props.SetText(ical.PropSummary, t.Title)
	}
	master.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	if rule, ok := r.parseRule(t); ok {
		hour, min := rule.TimeOfDay()
		if anchor, ok := r.patternAnchor(rule, t); ok {
			master.Props.SetDateTime(ical.PropDateTimeStart, anchor.At(hour, min).Time())
		}
		rruleProp := ical.NewProp(ical.PropRecurrenceRule)
		rruleProp.SetValueType(ical.ValueRecurrence)
		rruleProp.Value = rule.RuleBody()
		master.Props.Add(rruleProp)
	}

	if exdates := skippedExdates(t); exdates != "" {
		prop := ical.NewProp(ical.PropExceptionDates)
		prop.Params.Set(ical.ParamValue, "DATE")
		prop.Value = exdates
		master.Props.Add(prop)
	}

	cal.Children = append(cal.Children, master)

	for _, occ := range occurrences {
		comp := ical.NewComponent(ical.CompToDo)
		comp.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s", uid, occ.Date.Key()))
		comp.Props.SetText("RELATED-TO", uid)
		if t.Title != "" {
			comp.Props.SetText(ical.PropSummary, t.Title)
		}
		comp.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

		start := ical.NewProp(ical.PropDateTimeStart)
		start.Params.Set(ical.ParamValue, "DATE")
		start.Value = occ.Date.Compact()
		comp.Props.Add(start)

		comp.Props.SetText(ical.PropStatus, occurrenceStatus(occ))
		cal.Children = append(cal.Children, comp)
	}

	return cal, nil
}

// EncodeICS serializes a calendar to its wire form.
func EncodeICS(cal *ical.Calendar) (string, error) {
	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}

func occurrenceStatus(occ Occurrence) string {
	switch {
	case occ.IsCompleted:
		return "COMPLETED"
	case occ.IsSkipped:
		return "CANCELLED"
	default:
		return "NEEDS-ACTION"
	}
}

// skippedExdates joins the task's skipped dates into one date-only EXDATE
// value, sorted, skipping entries that fail to parse.
func skippedExdates(t task.Task) string {
	ledger := t.Ledger()
	_, skipped := ledger.Snapshot()

	vals := make([]string, 0, len(skipped))
	for _, s := range skipped {
		if d, err := dates.Parse(s); err == nil {
			vals = append(vals, d.Compact())
		}
	}
	return strings.Join(vals, ",")
}
