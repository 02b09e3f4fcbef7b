package desiderata

import (
	"github.com/shopspring/decimal"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// QUOTA CALCULATOR - Date range to consumed units
// =============================================================================

var halfWeekendUnit = decimal.NewFromFloat(0.5)

// EventDays is the quota consumption of a single event.
type EventDays struct {
	// Weekends is the weekend-unit cost, already rounded up to a
	// whole number for the event.
	Weekends decimal.Decimal

	// WorkingDays is the working-day cost. Whole days, no rounding.
	WorkingDays int
}

// Add sums two consumptions. Used when aggregating per-event costs,
// which is why Weekends stays a decimal even though each addend is
// whole after the per-event ceil.
func (ed EventDays) Add(other EventDays) EventDays {
	return EventDays{
		Weekends:    ed.Weekends.Add(other.Weekends),
		WorkingDays: ed.WorkingDays + other.WorkingDays,
	}
}

// CalculateEventDays converts one inclusive date interval into quota
// units. Every Saturday or Sunday in the interval accumulates half a
// weekend unit; every other day accumulates one working day. The
// weekend total is rounded up per event, so a lone weekend day costs a
// full unit while a Sat+Sun pair costs exactly one.
func CalculateEventDays(start, end roster.Date) EventDays {
	weekends := decimal.Zero
	workingDays := 0

	for _, d := range (roster.DateRange{Start: start, End: end}).Days() {
		if d.IsWeekend() {
			weekends = weekends.Add(halfWeekendUnit)
		} else {
			workingDays++
		}
	}

	return EventDays{
		Weekends:    weekends.Ceil(),
		WorkingDays: workingDays,
	}
}

// eventDaysFor calculates the cost of a stored event.
func eventDaysFor(e *Event) EventDays {
	span := e.Span()
	return CalculateEventDays(span.Start, span.End)
}
