package desiderata

import (
	"github.com/warp/roster-engine/periods"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// GRID BUILDER - Per-day/per-user presence matrix
// =============================================================================

// GridCell marks one user's presence on one day: "X" when any of the
// user's events span the day, empty otherwise.
type GridCell struct {
	UserID string `json:"userId"`
	Mark   string `json:"mark"`
}

// GridRow is one calendar day of the review grid.
type GridRow struct {
	Date  roster.Date `json:"date"`
	Cells []GridCell  `json:"cells"`
	Total int         `json:"total"`
}

// BuildGrid projects a set of users' events onto a per-day/per-user
// presence matrix for the review dashboard. One row per day in the
// period, cells in the given userIDs order, row total = number of
// marked users. Deterministic and order-stable by date.
func BuildGrid(period *periods.Period, events []Event, userIDs []string) []GridRow {
	byUser := make(map[string][]*Event, len(userIDs))
	for i := range events {
		e := &events[i]
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	days := period.Range().Days()
	rows := make([]GridRow, 0, len(days))
	for _, day := range days {
		row := GridRow{Date: day, Cells: make([]GridCell, 0, len(userIDs))}
		for _, userID := range userIDs {
			mark := ""
			for _, e := range byUser[userID] {
				if e.Covers(day) {
					mark = "X"
					break
				}
			}
			if mark != "" {
				row.Total++
			}
			row.Cells = append(row.Cells, GridCell{UserID: userID, Mark: mark})
		}
		rows = append(rows, row)
	}
	return rows
}
