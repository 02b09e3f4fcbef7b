package roster

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// HALF DAY - AM/PM availability slot
// =============================================================================

type HalfDay struct {
	AM bool `json:"am"`
	PM bool `json:"pm"`
}

// Unavailable is the zero availability, returned whenever no
// configuration covers a date.
var Unavailable = HalfDay{}

// WeeklySchedule maps weekdays to availability slots. Weekdays with no
// entry default to unavailable, which is how Saturday/Sunday are
// normally left out.
type WeeklySchedule map[time.Weekday]HalfDay

// Slot returns the schedule entry for a weekday, defaulting to
// unavailable when the weekday has no entry.
func (ws WeeklySchedule) Slot(wd time.Weekday) HalfDay {
	return ws[wd]
}

// RepeatPattern selects how a rule's weekly schedule repeats.
type RepeatPattern string

const (
	// RepeatAll applies the primary schedule every week.
	RepeatAll RepeatPattern = "all"
	// RepeatEvenOdd alternates between the primary schedule (even
	// weeks) and the odd-week schedule.
	RepeatEvenOdd RepeatPattern = "evenodd"
)

// =============================================================================
// AVAILABILITY RULE - Time-bounded recurring weekly schedule
// =============================================================================

// AvailabilityRule is one entry in a user's ordered rule sequence.
// Rules may overlap in date range; when several cover the same date the
// last one in sequence order wins. An open-ended rule carries the
// OpenEnd sentinel as its end date.
type AvailabilityRule struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`

	WeeklySchedule WeeklySchedule `json:"weeklySchedule"`

	// OddWeekSchedule is consulted only when RepeatPattern is
	// RepeatEvenOdd. Historically this field also appeared under the
	// name alternateWeekSchedule; both spellings decode.
	OddWeekSchedule WeeklySchedule `json:"oddWeeklySchedule,omitempty"`

	RepeatPattern RepeatPattern `json:"repeatPattern"`
}

// Range returns the rule's inclusive date range.
func (r *AvailabilityRule) Range() DateRange {
	end := r.EndDate
	if end.IsZero() {
		end = OpenEnd()
	}
	return DateRange{Start: r.StartDate, End: end}
}

// Covers returns true if the rule's range contains d.
func (r *AvailabilityRule) Covers(d Date) bool {
	return r.Range().Contains(d)
}

// scheduleFor picks the pattern in effect for a date, applying the
// even/odd alternation when configured.
func (r *AvailabilityRule) scheduleFor(d Date, parity ParityFunc) WeeklySchedule {
	if r.RepeatPattern == RepeatEvenOdd && r.OddWeekSchedule != nil {
		if parity(r, d)%2 != 0 {
			return r.OddWeekSchedule
		}
	}
	return r.WeeklySchedule
}

// availabilityRuleJSON tolerates the legacy alternateWeekSchedule
// spelling on decode. Encoding always uses oddWeeklySchedule.
type availabilityRuleJSON struct {
	StartDate      Date          `json:"startDate"`
	EndDate        Date          `json:"endDate"`
	WeeklySchedule weeklyJSON    `json:"weeklySchedule"`
	OddWeek        weeklyJSON    `json:"oddWeeklySchedule"`
	AlternateWeek  weeklyJSON    `json:"alternateWeekSchedule"`
	RepeatPattern  RepeatPattern `json:"repeatPattern"`
}

func (r *AvailabilityRule) UnmarshalJSON(data []byte) error {
	var raw availabilityRuleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	odd := raw.OddWeek
	if odd == nil {
		odd = raw.AlternateWeek
	}
	*r = AvailabilityRule{
		StartDate:       raw.StartDate,
		EndDate:         raw.EndDate,
		WeeklySchedule:  WeeklySchedule(raw.WeeklySchedule),
		OddWeekSchedule: WeeklySchedule(odd),
		RepeatPattern:   raw.RepeatPattern,
	}
	return nil
}

// weeklyJSON is the wire form of WeeklySchedule: weekday names as keys.
type weeklyJSON map[time.Weekday]HalfDay

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

func (w weeklyJSON) MarshalJSON() ([]byte, error) {
	if w == nil {
		return []byte("null"), nil
	}
	out := make(map[string]HalfDay, len(w))
	for wd, slot := range w {
		out[weekdayKeys[wd]] = slot
	}
	return json.Marshal(out)
}

func (w *weeklyJSON) UnmarshalJSON(data []byte) error {
	var raw map[string]HalfDay
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*w = nil
		return nil
	}
	out := make(weeklyJSON, len(raw))
	for name, slot := range raw {
		// Case-insensitive for older blobs that capitalized day names.
		// Anything else is a corrupt schedule and must not silently
		// decode to "unavailable".
		wd, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown weekday %q in weekly schedule", name)
		}
		out[wd] = slot
	}
	*w = out
	return nil
}

func (ws WeeklySchedule) MarshalJSON() ([]byte, error) {
	return weeklyJSON(ws).MarshalJSON()
}

func (ws *WeeklySchedule) UnmarshalJSON(data []byte) error {
	var raw weeklyJSON
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	*ws = WeeklySchedule(raw)
	return nil
}

// =============================================================================
// AVAILABILITY EXCEPTION - Per-date manual override
// =============================================================================

// AvailabilityException overrides rule-derived availability for one
// date. Each half-day field applies only when set; a nil field falls
// through to the rule result. A user holds at most one exception per
// date (upsert-by-date, enforced by the settings write path).
type AvailabilityException struct {
	Date Date  `json:"date"`
	AM   *bool `json:"am,omitempty"`
	PM   *bool `json:"pm,omitempty"`
}

// Apply overlays the exception onto a rule-derived slot.
func (e *AvailabilityException) Apply(slot HalfDay) HalfDay {
	if e.AM != nil {
		slot.AM = *e.AM
	}
	if e.PM != nil {
		slot.PM = *e.PM
	}
	return slot
}

// UpsertException replaces any existing exception for the same date,
// otherwise appends. Returns the updated slice.
func UpsertException(exceptions []AvailabilityException, ex AvailabilityException) []AvailabilityException {
	for i := range exceptions {
		if exceptions[i].Date.Equal(ex.Date) {
			exceptions[i] = ex
			return exceptions
		}
	}
	return append(exceptions, ex)
}

// =============================================================================
// USER SETTINGS - Persisted availability configuration
// =============================================================================

// UserSettings is the availability subset of a user's settings blob.
// The rule slice order is significant: later rules take precedence.
type UserSettings struct {
	Availability           []AvailabilityRule      `json:"availability"`
	AvailabilityExceptions []AvailabilityException `json:"availabilityExceptions"`
}
