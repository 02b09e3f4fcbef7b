package desiderata_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/desiderata"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// QUOTA CALCULATOR TESTS
// =============================================================================

func TestCalculateEventDays_SingleSaturday_RoundsUpToOneWeekend(t *testing.T) {
	// GIVEN: A single-day event on a Saturday
	saturday := roster.MustDate("2025-01-04")
	require.Equal(t, time.Saturday, saturday.Weekday())

	// WHEN: Calculating its cost
	got := desiderata.CalculateEventDays(saturday, saturday)

	// THEN: The half weekend unit rounds up to a whole one
	assert.True(t, got.Weekends.Equal(decimal.NewFromInt(1)), "weekends = %s", got.Weekends)
	assert.Equal(t, 0, got.WorkingDays)
}

func TestCalculateEventDays_FullWeekend_CostsExactlyOne(t *testing.T) {
	// GIVEN: A Sat+Sun event
	saturday := roster.MustDate("2025-01-04")
	sunday := saturday.AddDays(1)

	got := desiderata.CalculateEventDays(saturday, sunday)

	// THEN: 0.5 + 0.5 = 1.0 with no rounding distortion
	assert.True(t, got.Weekends.Equal(decimal.NewFromInt(1)), "weekends = %s", got.Weekends)
	assert.Equal(t, 0, got.WorkingDays)
}

func TestCalculateEventDays_WorkWeek_NoWeekendUnits(t *testing.T) {
	// GIVEN: A Monday-Friday event
	monday := roster.MustDate("2025-01-06")
	friday := monday.AddDays(4)

	got := desiderata.CalculateEventDays(monday, friday)

	assert.True(t, got.Weekends.IsZero())
	assert.Equal(t, 5, got.WorkingDays)
}

func TestCalculateEventDays_FullWeek_MixesBothUnits(t *testing.T) {
	// GIVEN: A Saturday-through-Friday event (one full weekend + 5
	// working days)
	saturday := roster.MustDate("2025-01-04")
	friday := saturday.AddDays(6)

	got := desiderata.CalculateEventDays(saturday, friday)

	assert.True(t, got.Weekends.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 5, got.WorkingDays)
}

func TestCalculateEventDays_ThreeWeekendDays_RoundsUpToTwo(t *testing.T) {
	// GIVEN: Sat+Sun+Sat = 1.5 weekend units
	saturday := roster.MustDate("2025-01-04")
	got := desiderata.CalculateEventDays(saturday, saturday.AddDays(7))

	// THEN: 1.5 ceils to 2; the five weekdays in between count whole
	assert.True(t, got.Weekends.Equal(decimal.NewFromInt(2)), "weekends = %s", got.Weekends)
	assert.Equal(t, 5, got.WorkingDays)
}

func TestEventSpan_DefaultsToSingleDay(t *testing.T) {
	d := roster.MustDate("2025-01-06")
	e := desiderata.Event{ID: "e1", Type: desiderata.TypeDesiderata, Date: d}

	span := e.Span()
	assert.True(t, span.Start.Equal(d))
	assert.True(t, span.End.Equal(d))

	end := d.AddDays(2)
	e.EndDate = &end
	assert.True(t, e.Span().End.Equal(end))
}

func TestEventConsumesQuota(t *testing.T) {
	assert.True(t, (&desiderata.Event{Type: desiderata.TypeDesiderata}).ConsumesQuota())
	assert.True(t, (&desiderata.Event{Type: desiderata.TypeRequestedDesiderata}).ConsumesQuota())
	assert.False(t, (&desiderata.Event{Type: "holiday"}).ConsumesQuota())
}
