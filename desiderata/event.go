/*
Package desiderata implements the desiderata quota engine.

PURPOSE:
  A desiderata is a user-submitted scheduling preference ("I want to
  be off these days"), consumed against a per-period quota. This
  package converts date ranges into quota units, validates candidate
  requests against the remaining allowance, rebuilds the cached usage
  figures, and projects events onto the review grid.

UNIT ACCOUNTING:
  - Weekend unit: 0.5 per Saturday/Sunday in an event, rounded UP to a
    whole number per event when totaled. A lone Saturday costs 1, a
    full Sat+Sun weekend costs exactly 1.
  - Working-day unit: 1 per non-weekend day. Never fractional.

  The half-unit bookkeeping uses decimal arithmetic so that 0.5+0.5
  is exactly 1 and the per-event ceil never rounds a clean weekend up
  to 2.

SEE ALSO:
  - quota.go: Unit calculation
  - validator.go: Quota validation and usage recalculation
  - grid.go: Review grid projection
*/
package desiderata

import (
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// EVENT - Desiderata-relevant subset of the event record
// =============================================================================

// Event types that consume desiderata quota.
const (
	TypeDesiderata          = "desiderata"
	TypeRequestedDesiderata = "requestedDesiderata"
)

// Event is one entry in a user's event file. Only the
// desiderata-relevant fields are modeled; other event kinds ride
// through unmodified via the same JSON shape.
type Event struct {
	ID      string       `json:"id"`
	UserID  string       `json:"userId"`
	Type    string       `json:"type"`
	Date    roster.Date  `json:"date"`
	EndDate *roster.Date `json:"endDate,omitempty"`
	Status  string       `json:"status,omitempty"`
}

// Span returns the inclusive date range the event covers. A missing
// end date means a single-day event.
func (e *Event) Span() roster.DateRange {
	end := e.Date
	if e.EndDate != nil {
		end = *e.EndDate
	}
	return roster.DateRange{Start: e.Date, End: end}
}

// ConsumesQuota returns true for event types counted against the
// desiderata quota.
func (e *Event) ConsumesQuota() bool {
	return e.Type == TypeDesiderata || e.Type == TypeRequestedDesiderata
}

// Covers returns true if the event's span contains d.
func (e *Event) Covers(d roster.Date) bool {
	return e.Span().Contains(d)
}
