/*
Package periods manages a site's named scheduling windows.

PURPOSE:
  A period is an admin-defined, non-overlapping date window within a
  year. Each period controls what kind of editing is open (closed,
  holidays, desiderata) and optionally carries the desiderata quota
  for that window. The quota engine and review grid both key off
  periods.

KEY CONCEPTS:
  - Period: One named window with editing status and optional quotas
  - PeriodFile: The per-site/per-year persisted set of periods
  - ValidatePeriods: The all-or-nothing save validation
  - DefaultPeriods: The four canonical windows seeded on reset

NON-OVERLAP INVARIANT:
  After sorting by start date, each period's end date must be strictly
  before the next period's start date. Touching boundaries
  (end == next start) count as overlap. Numerically adjacent periods
  therefore need at least a one-day gap.

SEE ALSO:
  - registry.go: Storage-backed save/reset operations
  - desiderata: Consumes period bounds and quotas
*/
package periods

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// PERIOD - Named window with editing status and optional quotas
// =============================================================================

// EditingStatus controls which request types a period accepts.
type EditingStatus string

const (
	EditingClosed     EditingStatus = "closed"
	EditingHoliday    EditingStatus = "open-holiday"
	EditingDesiderata EditingStatus = "open-desiderata"
)

// Quotas is the desiderata allowance for one period.
type Quotas struct {
	AllowedWeekendDesiderata    float64 `json:"allowedWeekendDesiderata"`
	AllowedWorkingDayDesiderata float64 `json:"allowedWorkingDayDesiderata"`
}

type Period struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	StartDate     roster.Date   `json:"startDate"`
	EndDate       roster.Date   `json:"endDate"`
	EditingStatus EditingStatus `json:"editingStatus"`
	Quotas        *Quotas       `json:"quotas,omitempty"`
}

// Range returns the period's inclusive date range.
func (p *Period) Range() roster.DateRange {
	return roster.DateRange{Start: p.StartDate, End: p.EndDate}
}

// Contains returns true if d falls within the period.
func (p *Period) Contains(d roster.Date) bool {
	return p.Range().Contains(d)
}

// PeriodFile is the persisted per-site/per-year period set.
type PeriodFile struct {
	Year        int       `json:"year"`
	Site        string    `json:"site"`
	Periods     []Period  `json:"periods"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// FindByID returns the period with the given id, or nil.
func (f *PeriodFile) FindByID(id string) *Period {
	for i := range f.Periods {
		if f.Periods[i].ID == id {
			return &f.Periods[i]
		}
	}
	return nil
}

// =============================================================================
// VALIDATION - All-or-nothing save checks
// =============================================================================

// OverlapError names the two periods whose windows collide.
type OverlapError struct {
	First  string
	Second string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("periods %q and %q overlap", e.First, e.Second)
}

// ValidatePeriods checks a candidate period set before a save. Any
// single violation aborts the whole save; there are no partial writes.
//
// Checks run in order:
//  1. Required fields: name, start date, end date, editing status.
//  2. End date strictly after start date.
//  3. After sorting by start date, no adjacent pair may satisfy
//     current.end >= next.start. Touching boundaries are overlap.
func ValidatePeriods(ps []Period) error {
	for i := range ps {
		p := &ps[i]
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("period #%d", i+1)
		}
		switch {
		case strings.TrimSpace(p.Name) == "":
			return &roster.FieldError{Field: label, Message: "name is required"}
		case p.StartDate.IsZero():
			return &roster.FieldError{Field: label, Message: "startDate is required"}
		case p.EndDate.IsZero():
			return &roster.FieldError{Field: label, Message: "endDate is required"}
		case p.EditingStatus == "":
			return &roster.FieldError{Field: label, Message: "editingStatus is required"}
		}
		if !p.EndDate.After(p.StartDate) {
			return fmt.Errorf("period %q: %w", p.Name, roster.ErrInvalidDateRange)
		}
	}

	sorted := make([]Period, len(ps))
	copy(sorted, ps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	for i := 0; i+1 < len(sorted); i++ {
		cur, next := &sorted[i], &sorted[i+1]
		if cur.EndDate.AfterOrEqual(next.StartDate) {
			return &OverlapError{First: cur.Name, Second: next.Name}
		}
	}
	return nil
}

// =============================================================================
// DEFAULTS - Canonical period set seeded on reset
// =============================================================================

// DefaultPeriods returns the four canonical periods for a year:
// winter spills in from December 23rd of the previous year and the
// last period runs into January 7th of the next.
func DefaultPeriods(year int) []Period {
	return []Period{
		{
			ID:            uuid.NewString(),
			Name:          "Winter",
			StartDate:     roster.NewDate(year-1, time.December, 23),
			EndDate:       roster.NewDate(year, time.April, 15),
			EditingStatus: EditingClosed,
		},
		{
			ID:            uuid.NewString(),
			Name:          "Spring",
			StartDate:     roster.NewDate(year, time.April, 16),
			EndDate:       roster.NewDate(year, time.June, 30),
			EditingStatus: EditingClosed,
		},
		{
			ID:            uuid.NewString(),
			Name:          "Summer",
			StartDate:     roster.NewDate(year, time.July, 1),
			EndDate:       roster.NewDate(year, time.August, 31),
			EditingStatus: EditingClosed,
		},
		{
			ID:            uuid.NewString(),
			Name:          "Autumn",
			StartDate:     roster.NewDate(year, time.September, 1),
			EndDate:       roster.NewDate(year+1, time.January, 7),
			EditingStatus: EditingClosed,
		},
	}
}
