package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/desiderata"
	"github.com/warp/roster-engine/periods"
	"github.com/warp/roster-engine/roster"
	"github.com/warp/roster-engine/store"
)

// =============================================================================
// CATALOG TESTS
// =============================================================================

func newCatalog() *store.Catalog {
	return store.NewCatalog(store.NewMemory())
}

func TestCatalog_LoadSite_MissingIsNotFound(t *testing.T) {
	c := newCatalog()

	_, err := c.LoadSite(context.Background(), "nowhere")
	require.Error(t, err)
	assert.True(t, roster.IsNotFound(err))
}

func TestCatalog_SiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	site := &store.Site{Users: []store.User{{ID: "u1", Name: "Ada"}}}
	require.NoError(t, c.SaveSite(ctx, "hospital-a", site))

	got, err := c.LoadSite(ctx, "hospital-a")
	require.NoError(t, err)
	require.NotNil(t, got.FindUser("u1"))
	assert.Equal(t, "Ada", got.FindUser("u1").Name)
	assert.Nil(t, got.FindUser("u2"))
}

func TestCatalog_MissingEventsFileIsEmptyCollection(t *testing.T) {
	c := newCatalog()

	events, err := c.LoadUserEvents(context.Background(), "hospital-a", "u1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCatalog_UpsertUserEvent(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	e := desiderata.Event{ID: "e1", UserID: "u1", Type: desiderata.TypeDesiderata,
		Date: roster.MustDate("2025-07-07")}
	require.NoError(t, c.UpsertUserEvent(ctx, "hospital-a", "u1", e))

	// Upserting the same id replaces, not appends
	e.Date = roster.MustDate("2025-07-08")
	require.NoError(t, c.UpsertUserEvent(ctx, "hospital-a", "u1", e))

	events, err := c.LoadUserEvents(ctx, "hospital-a", "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Date.Equal(roster.MustDate("2025-07-08")))
}

func TestCatalog_MissingSettingsFileIsEmptySettings(t *testing.T) {
	c := newCatalog()

	settings, err := c.LoadUserSettings(context.Background(), "hospital-a", "u1")
	require.NoError(t, err)
	assert.Empty(t, settings.Availability)
	assert.Empty(t, settings.AvailabilityExceptions)
}

func TestCatalog_SaveRulesPreservesExceptions(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	ex := roster.AvailabilityException{Date: roster.MustDate("2025-07-07")}
	require.NoError(t, c.UpsertAvailabilityException(ctx, "hospital-a", "u1", ex))

	rules := []roster.AvailabilityRule{{
		StartDate:      roster.MustDate("2025-01-01"),
		EndDate:        roster.OpenEnd(),
		WeeklySchedule: roster.WeeklySchedule{time.Monday: {AM: true}},
		RepeatPattern:  roster.RepeatAll,
	}}
	require.NoError(t, c.SaveAvailabilityRules(ctx, "hospital-a", "u1", rules))

	settings, err := c.LoadUserSettings(ctx, "hospital-a", "u1")
	require.NoError(t, err)
	assert.Len(t, settings.Availability, 1)
	assert.Len(t, settings.AvailabilityExceptions, 1)
}

func TestCatalog_UpsertExceptionByDate(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	am := true

	d := roster.MustDate("2025-07-07")
	require.NoError(t, c.UpsertAvailabilityException(ctx, "hospital-a", "u1",
		roster.AvailabilityException{Date: d}))
	require.NoError(t, c.UpsertAvailabilityException(ctx, "hospital-a", "u1",
		roster.AvailabilityException{Date: d, AM: &am}))

	settings, err := c.LoadUserSettings(ctx, "hospital-a", "u1")
	require.NoError(t, err)
	require.Len(t, settings.AvailabilityExceptions, 1)
	require.NotNil(t, settings.AvailabilityExceptions[0].AM)
}

func TestCatalog_FindPeriod_ScansAdjacentYears(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	// GIVEN: The winter period stored in the 2026 file, starting in
	// December 2025
	file := &periods.PeriodFile{
		Site: "hospital-a",
		Year: 2026,
		Periods: []periods.Period{{
			ID:            "winter-2026",
			Name:          "Winter",
			StartDate:     roster.MustDate("2025-12-23"),
			EndDate:       roster.MustDate("2026-04-15"),
			EditingStatus: periods.EditingClosed,
		}},
	}
	require.NoError(t, c.SavePeriodFile(ctx, file))

	// WHEN: Looking it up with a 2025 year hint (a December date)
	p, err := c.FindPeriod(ctx, "hospital-a", "winter-2026", 2025)
	require.NoError(t, err)
	assert.Equal(t, "Winter", p.Name)

	// AND: An unknown id is an explicit not-found
	_, err = c.FindPeriod(ctx, "hospital-a", "ghost", 2025)
	require.Error(t, err)
	assert.True(t, roster.IsNotFound(err))
}

func TestCatalog_UsageCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	// Missing cache reads as nil, not an error
	u, err := c.LoadUsage(ctx, "hospital-a", "u1", "p1")
	require.NoError(t, err)
	assert.Nil(t, u)

	stored := &desiderata.Usage{WeekendsUsed: 1, WorkingDaysUsed: 5,
		LastUpdated: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, c.SaveUsage(ctx, "hospital-a", "u1", "p1", stored))

	u, err = c.LoadUsage(ctx, "hospital-a", "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, stored, u)
}

func TestCatalog_ConcurrentEventUpserts_NoneLost(t *testing.T) {
	// GIVEN: Many goroutines upserting distinct events into the same
	// user's event file
	ctx := context.Background()
	c := newCatalog()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := desiderata.Event{
				ID:     string(rune('a' + i)),
				UserID: "u1",
				Type:   desiderata.TypeDesiderata,
				Date:   roster.MustDate("2025-07-01").AddDays(i),
			}
			assert.NoError(t, c.UpsertUserEvent(ctx, "hospital-a", "u1", e))
		}(i)
	}
	wg.Wait()

	// THEN: The per-key lock kept every write
	events, err := c.LoadUserEvents(ctx, "hospital-a", "u1")
	require.NoError(t, err)
	assert.Len(t, events, n)
}

// End-to-end: the catalog satisfies the validator's storage interface.
func TestCatalog_BacksValidator(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	quotas := &periods.Quotas{AllowedWeekendDesiderata: 2, AllowedWorkingDayDesiderata: 10}
	require.NoError(t, c.SavePeriodFile(ctx, &periods.PeriodFile{
		Site: "hospital-a",
		Year: 2025,
		Periods: []periods.Period{{
			ID: "p1", Name: "Summer",
			StartDate: roster.MustDate("2025-07-01"),
			EndDate:   roster.MustDate("2025-08-31"),
			Quotas:    quotas,
		}},
	}))
	require.NoError(t, c.UpsertUserEvent(ctx, "hospital-a", "u1", desiderata.Event{
		ID: "e1", UserID: "u1", Type: desiderata.TypeDesiderata,
		Date: roster.MustDate("2025-07-07"),
	}))

	v := desiderata.NewValidator(c)
	res := v.Validate(ctx, "hospital-a", "u1", "p1",
		roster.MustDate("2025-07-08"), roster.MustDate("2025-07-08"), "")

	assert.True(t, res.Valid)
	assert.Equal(t, 2, res.WorkingDaysUsed)
	assert.Equal(t, 8.0, res.WorkingDaysRemaining)
}
