package desiderata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/desiderata"
	"github.com/warp/roster-engine/periods"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// GRID BUILDER TESTS
// =============================================================================

func gridPeriod(start, end string) *periods.Period {
	return &periods.Period{
		ID:        "p1",
		Name:      "Review",
		StartDate: roster.MustDate(start),
		EndDate:   roster.MustDate(end),
	}
}

func TestBuildGrid_FullPeriodEvent_MarksEveryRow(t *testing.T) {
	// GIVEN: A 7-day period, 3 users, and one event covering the
	// entire period for one user
	period := gridPeriod("2025-07-01", "2025-07-07")
	end := roster.MustDate("2025-07-07")
	events := []desiderata.Event{
		{ID: "e1", UserID: "u2", Type: desiderata.TypeDesiderata,
			Date: roster.MustDate("2025-07-01"), EndDate: &end},
	}

	rows := desiderata.BuildGrid(period, events, []string{"u1", "u2", "u3"})

	// THEN: Every row totals 1 and u2's column is marked on all rows
	require.Len(t, rows, 7)
	for _, row := range rows {
		assert.Equal(t, 1, row.Total)
		require.Len(t, row.Cells, 3)
		assert.Equal(t, "u1", row.Cells[0].UserID)
		assert.Equal(t, "", row.Cells[0].Mark)
		assert.Equal(t, "u2", row.Cells[1].UserID)
		assert.Equal(t, "X", row.Cells[1].Mark)
		assert.Equal(t, "", row.Cells[2].Mark)
	}
}

func TestBuildGrid_RowsOrderedByDate(t *testing.T) {
	period := gridPeriod("2025-07-01", "2025-07-05")
	rows := desiderata.BuildGrid(period, nil, []string{"u1"})

	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.True(t, row.Date.Equal(roster.MustDate("2025-07-01").AddDays(i)))
		assert.Equal(t, 0, row.Total)
	}
}

func TestBuildGrid_PartialSpans(t *testing.T) {
	// GIVEN: Two users with events covering different slices of the
	// period
	period := gridPeriod("2025-07-01", "2025-07-04")
	e1End := roster.MustDate("2025-07-02")
	events := []desiderata.Event{
		{ID: "e1", UserID: "u1", Type: desiderata.TypeDesiderata,
			Date: roster.MustDate("2025-07-01"), EndDate: &e1End},
		{ID: "e2", UserID: "u2", Type: desiderata.TypeDesiderata,
			Date: roster.MustDate("2025-07-02")},
	}

	rows := desiderata.BuildGrid(period, events, []string{"u1", "u2"})

	require.Len(t, rows, 4)
	assert.Equal(t, 1, rows[0].Total) // u1 only
	assert.Equal(t, 2, rows[1].Total) // both (inclusive span + single day)
	assert.Equal(t, 0, rows[2].Total)
	assert.Equal(t, 0, rows[3].Total)
}

func TestBuildGrid_IgnoresUsersNotListed(t *testing.T) {
	// Events from users outside the column list don't create cells.
	period := gridPeriod("2025-07-01", "2025-07-02")
	events := []desiderata.Event{
		{ID: "e1", UserID: "ghost", Type: desiderata.TypeDesiderata,
			Date: roster.MustDate("2025-07-01")},
	}

	rows := desiderata.BuildGrid(period, events, []string{"u1"})
	for _, row := range rows {
		assert.Equal(t, 0, row.Total)
		assert.Len(t, row.Cells, 1)
	}
}
