package roster

// =============================================================================
// RESOLVER - Effective AM/PM availability for a date
// =============================================================================

// Resolver computes effective availability from an ordered rule
// sequence and a set of per-date exceptions.
//
// Resolution is total: absence of configuration degrades to
// unavailable, it never errors. Identical inputs always produce
// identical output.
type Resolver struct {
	// Parity selects the even/odd week strategy for rules with an
	// alternating pattern. Nil means AbsoluteWeekParity.
	Parity ParityFunc
}

// Resolve returns the effective AM/PM availability for a date.
//
// Rule precedence is sequence position: among all rules whose date
// range covers the date, the LAST one in the input order wins,
// regardless of range size or creation time. The sequence order is an
// explicit contract of UserSettings.Availability, not an accident of
// storage.
func (rv Resolver) Resolve(d Date, rules []AvailabilityRule, exceptions []AvailabilityException) HalfDay {
	parity := rv.Parity
	if parity == nil {
		parity = AbsoluteWeekParity
	}

	var selected *AvailabilityRule
	for i := range rules {
		if rules[i].Covers(d) {
			selected = &rules[i]
		}
	}

	slot := Unavailable
	if selected != nil {
		slot = selected.scheduleFor(d, parity).Slot(d.Weekday())
	}

	for i := range exceptions {
		if exceptions[i].Date.Equal(d) {
			slot = exceptions[i].Apply(slot)
			break
		}
	}
	return slot
}

// ResolveRange resolves every day in the range, in ascending order.
// Used by the calendar and general-availability reports.
func (rv Resolver) ResolveRange(r DateRange, rules []AvailabilityRule, exceptions []AvailabilityException) []DayAvailability {
	days := r.Days()
	out := make([]DayAvailability, 0, len(days))
	for _, d := range days {
		out = append(out, DayAvailability{
			Date:         d,
			Availability: rv.Resolve(d, rules, exceptions),
		})
	}
	return out
}

// DayAvailability pairs a date with its resolved availability.
type DayAvailability struct {
	Date         Date
	Availability HalfDay
}
