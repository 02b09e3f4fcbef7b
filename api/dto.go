/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Field names on
  the quota and validation shapes are a compatibility contract with
  existing clients and must not change.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/roster-engine/periods"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// QUOTA / DESIDERATA TYPES
// =============================================================================

// UsageDTO is the usage block of the quota lookup response.
type UsageDTO struct {
	WeekendsUsed         float64 `json:"weekendsUsed"`
	WorkingDaysUsed      int     `json:"workingDaysUsed"`
	WeekendsRemaining    float64 `json:"weekendsRemaining"`
	WorkingDaysRemaining float64 `json:"workingDaysRemaining"`
}

// QuotaLookupDTO is the quota summary for one user in one period.
type QuotaLookupDTO struct {
	PeriodID    string          `json:"periodId"`
	PeriodName  string          `json:"periodName"`
	Quotas      *periods.Quotas `json:"quotas"`
	Usage       UsageDTO        `json:"usage"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// ValidateRequest asks whether a candidate desiderata fits the quota.
type ValidateRequest struct {
	PeriodID       string `json:"periodId"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	ExcludeEventID string `json:"excludeEventId,omitempty"`
}

// =============================================================================
// CALENDAR REPORT TYPES
// =============================================================================

// CalendarDayDTO is one annotated day of the calendar report.
type CalendarDayDTO struct {
	Date         string         `json:"date"`
	Day          int            `json:"day"`
	Month        int            `json:"month"`
	Year         int            `json:"year"`
	DayOfWeek    string         `json:"dayOfWeek"`
	Availability roster.HalfDay `json:"availability"`
}

// CalendarWeekDTO groups the report's days by week-of-year. WeekYear
// disambiguates the numbering around New Year, where late-December
// days already count into week 1 of the following year.
type CalendarWeekDTO struct {
	Week     int              `json:"week"`
	WeekYear int              `json:"weekYear"`
	Days     []CalendarDayDTO `json:"days"`
}

// AvailabilityDTO is the single-date availability lookup response.
type AvailabilityDTO struct {
	Date         string         `json:"date"`
	Availability roster.HalfDay `json:"availability"`
}

// =============================================================================
// PERIOD ADMIN TYPES
// =============================================================================

// SavePeriodsRequest carries a full replacement period set.
type SavePeriodsRequest struct {
	Periods []periods.Period `json:"periods"`
}

// =============================================================================
// SETTINGS TYPES
// =============================================================================

// SaveRulesRequest replaces a user's availability rule sequence. The
// order of the slice is the precedence order.
type SaveRulesRequest struct {
	Availability []roster.AvailabilityRule `json:"availability"`
}

// UpsertExceptionRequest upserts one per-date exception.
type UpsertExceptionRequest struct {
	Date string `json:"date"`
	AM   *bool  `json:"am,omitempty"`
	PM   *bool  `json:"pm,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
