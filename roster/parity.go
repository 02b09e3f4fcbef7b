package roster

// =============================================================================
// WEEK NUMBERING - Saturday-start weeks
// =============================================================================

// WeekNumber returns an ISO-style week number with the week considered
// to start on Saturday. A Saturday and the following Friday report the
// same number; the next Saturday reports number+1.
//
// The Saturday start is load-bearing: duty rosters in this system roll
// over on Saturday, not Monday, so the alternating-week patterns must
// flip at the Saturday boundary.
func WeekNumber(d Date) int {
	// Shifting forward two days maps Saturday onto Monday, so the
	// standard ISO week calculation yields Saturday-start weeks.
	_, week := d.Time().AddDate(0, 0, 2).ISOWeek()
	return week
}

// WeekYear returns the year that owns the Saturday-start week of d.
// Needed at year boundaries where the week number wraps.
func WeekYear(d Date) int {
	year, _ := d.Time().AddDate(0, 0, 2).ISOWeek()
	return year
}

// =============================================================================
// PARITY STRATEGIES
// =============================================================================

// ParityFunc classifies a date as even (0) or odd (1) week for the
// given rule. The resolver uses the result to choose between a rule's
// primary and odd-week schedule.
//
// Two strategies exist because the system historically computed parity
// two different ways at different call sites. They diverge whenever a
// rule starts mid-week relative to the global Saturday boundary, so
// the strategy is pluggable and both are kept testable.
type ParityFunc func(rule *AvailabilityRule, d Date) int

// AbsoluteWeekParity derives parity from the Saturday-start week
// number of the date itself, independent of the rule. This is the
// default strategy.
func AbsoluteWeekParity(_ *AvailabilityRule, d Date) int {
	return WeekNumber(d) % 2
}

// RuleAnchoredParity derives parity from the number of whole weeks
// elapsed since the rule's own start date.
func RuleAnchoredParity(rule *AvailabilityRule, d Date) int {
	days := DaysBetween(rule.StartDate, d)
	if days < 0 {
		days = -days
	}
	return (days / 7) % 2
}
