/*
handlers.go - HTTP API handlers for the scheduling engine

PURPOSE:
  Exposes availability resolution, desiderata quota checks, period
  administration and the review grid via REST. Handles HTTP
  request/response and JSON serialization, delegating all scheduling
  logic to the roster, periods and desiderata packages.

ENDPOINTS:
  Desiderata:
    GET  /api/sites/{site}/users/{userId}/desiderata/{periodId}
    POST /api/sites/{site}/users/{userId}/desiderata/validate
    POST /api/sites/{site}/users/{userId}/desiderata/{periodId}/recalculate

  Availability:
    GET  /api/sites/{site}/users/{userId}/availability?date=YYYY-MM-DD
    GET  /api/sites/{site}/users/{userId}/calendar?year=&month=
    PUT  /api/sites/{site}/users/{userId}/availability/rules
    PUT  /api/sites/{site}/users/{userId}/availability/exceptions

  Periods:
    GET  /api/sites/{site}/periods/{year}
    PUT  /api/sites/{site}/periods/{year}
    POST /api/sites/{site}/periods/{year}/reset
    GET  /api/sites/{site}/periods/{year}/{periodId}/grid

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Site/user/period not found
  - 500: Storage and internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/roster-engine/desiderata"
	"github.com/warp/roster-engine/periods"
	"github.com/warp/roster-engine/roster"
	"github.com/warp/roster-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog   *store.Catalog
	Registry  *periods.Registry
	Validator *desiderata.Validator
	Resolver  roster.Resolver
}

// NewHandler wires a handler over the given catalog.
func NewHandler(catalog *store.Catalog) *Handler {
	return &Handler{
		Catalog:   catalog,
		Registry:  periods.NewRegistry(catalog),
		Validator: desiderata.NewValidator(catalog),
	}
}

// requireUser verifies the site and user exist. Writes the error
// response itself and reports whether the request may proceed.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request, site, userID string) bool {
	s, err := h.Catalog.LoadSite(r.Context(), site)
	if err != nil {
		writeDomainError(w, err)
		return false
	}
	if s.FindUser(userID) == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return false
	}
	return true
}

// =============================================================================
// DESIDERATA HANDLERS
// =============================================================================

// GetDesiderata returns the quota summary for a user/period.
// GET /api/sites/{site}/users/{userId}/desiderata/{periodId}
func (h *Handler) GetDesiderata(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	userID := chi.URLParam(r, "userId")
	periodID := chi.URLParam(r, "periodId")

	if !h.requireUser(w, r, site, userID) {
		return
	}

	period, usage, err := h.Validator.Lookup(r.Context(), site, userID, periodID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	weekendsLeft, workingLeft := desiderata.Remaining(period.Quotas, usage)
	writeJSON(w, http.StatusOK, QuotaLookupDTO{
		PeriodID:   period.ID,
		PeriodName: period.Name,
		Quotas:     period.Quotas,
		Usage: UsageDTO{
			WeekendsUsed:         usage.WeekendsUsed,
			WorkingDaysUsed:      usage.WorkingDaysUsed,
			WeekendsRemaining:    weekendsLeft,
			WorkingDaysRemaining: workingLeft,
		},
		LastUpdated: usage.LastUpdated,
	})
}

// ValidateDesiderata checks a candidate request against the quota.
// POST /api/sites/{site}/users/{userId}/desiderata/validate
func (h *Handler) ValidateDesiderata(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	userID := chi.URLParam(r, "userId")

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := roster.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate format (use YYYY-MM-DD)", err)
		return
	}
	end, err := roster.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate format (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "endDate before startDate", roster.ErrInvalidDateRange)
		return
	}

	if !h.requireUser(w, r, site, userID) {
		return
	}

	result := h.Validator.Validate(r.Context(), site, userID, req.PeriodID, start, end, req.ExcludeEventID)
	writeJSON(w, http.StatusOK, result)
}

// RecalculateDesiderata rebuilds the usage cache for a user/period.
// POST /api/sites/{site}/users/{userId}/desiderata/{periodId}/recalculate
func (h *Handler) RecalculateDesiderata(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	userID := chi.URLParam(r, "userId")
	periodID := chi.URLParam(r, "periodId")

	if !h.requireUser(w, r, site, userID) {
		return
	}

	usage, err := h.Validator.Recalculate(r.Context(), site, userID, periodID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// =============================================================================
// AVAILABILITY HANDLERS
// =============================================================================

// GetAvailability resolves a single date.
// GET /api/sites/{site}/users/{userId}/availability?date=YYYY-MM-DD
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	userID := chi.URLParam(r, "userId")

	date, err := roster.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if !h.requireUser(w, r, site, userID) {
		return
	}

	settings, err := h.Catalog.LoadUserSettings(r.Context(), site, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slot := h.Resolver.Resolve(date, settings.Availability, settings.AvailabilityExceptions)
	writeJSON(w, http.StatusOK, AvailabilityDTO{Date: date.String(), Availability: slot})
}

// GetCalendar returns the month's resolved days grouped by
// week-of-year.
// GET /api/sites/{site}/users/{userId}/calendar?year=&month=
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	userID := chi.URLParam(r, "userId")

	// Default to the current month when no year/month is asked for.
	today := roster.Today()
	year := today.Year()
	month := int(today.Month())
	if q := r.URL.Query().Get("year"); q != "" {
		var err error
		year, err = strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}
	if q := r.URL.Query().Get("month"); q != "" {
		var err error
		month, err = strconv.Atoi(q)
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
	}

	if !h.requireUser(w, r, site, userID) {
		return
	}

	settings, err := h.Catalog.LoadUserSettings(r.Context(), site, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	start := roster.NewDate(year, time.Month(month), 1)
	end := start.AddDays(32)
	end = roster.NewDate(end.Year(), end.Month(), 1).AddDays(-1)

	days := h.Resolver.ResolveRange(roster.DateRange{Start: start, End: end},
		settings.Availability, settings.AvailabilityExceptions)
	writeJSON(w, http.StatusOK, groupByWeek(days))
}

// groupByWeek buckets resolved days by their Saturday-start week,
// preserving date order within and across weeks. Weeks are keyed by
// (week year, week number): around New Year the number alone repeats,
// since late-December days already belong to week 1 of the next year.
func groupByWeek(days []roster.DayAvailability) []CalendarWeekDTO {
	type weekKey struct{ year, week int }
	var weeks []CalendarWeekDTO
	index := map[weekKey]int{}

	for _, da := range days {
		key := weekKey{roster.WeekYear(da.Date), roster.WeekNumber(da.Date)}
		i, ok := index[key]
		if !ok {
			i = len(weeks)
			index[key] = i
			weeks = append(weeks, CalendarWeekDTO{Week: key.week, WeekYear: key.year})
		}
		weeks[i].Days = append(weeks[i].Days, CalendarDayDTO{
			Date:         da.Date.String(),
			Day:          da.Date.Day(),
			Month:        int(da.Date.Month()),
			Year:         da.Date.Year(),
			DayOfWeek:    da.Date.Weekday().String(),
			Availability: da.Availability,
		})
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].Days[0].Date < weeks[j].Days[0].Date
	})
	return weeks
}

// SaveRules replaces a user's availability rule sequence.
// PUT /api/sites/{site}/users/{userId}/availability/rules
func (h *Handler) SaveRules(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	userID := chi.URLParam(r, "userId")

	var req SaveRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	for i := range req.Availability {
		rule := &req.Availability[i]
		if rule.StartDate.IsZero() {
			writeError(w, http.StatusBadRequest, "Rule startDate is required", nil)
			return
		}
		if rule.EndDate.IsZero() {
			rule.EndDate = roster.OpenEnd()
		}
	}

	if !h.requireUser(w, r, site, userID) {
		return
	}

	if err := h.Catalog.SaveAvailabilityRules(r.Context(), site, userID, req.Availability); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveRulesRequest{Availability: req.Availability})
}

// UpsertException upserts one per-date availability exception.
// PUT /api/sites/{site}/users/{userId}/availability/exceptions
func (h *Handler) UpsertException(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	userID := chi.URLParam(r, "userId")

	var req UpsertExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := roster.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if !h.requireUser(w, r, site, userID) {
		return
	}

	ex := roster.AvailabilityException{Date: date, AM: req.AM, PM: req.PM}
	if err := h.Catalog.UpsertAvailabilityException(r.Context(), site, userID, ex); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// GetPeriods lists the period set for a site/year.
// GET /api/sites/{site}/periods/{year}
func (h *Handler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	file, err := h.Catalog.LoadPeriodFile(r.Context(), site, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// SavePeriods validates and replaces the period set for a site/year.
// PUT /api/sites/{site}/periods/{year}
func (h *Handler) SavePeriods(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	var req SavePeriodsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	file, err := h.Registry.SavePeriods(r.Context(), site, year, req.Periods)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// ResetPeriods seeds the canonical default periods for a site/year.
// POST /api/sites/{site}/periods/{year}/reset
func (h *Handler) ResetPeriods(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	file, err := h.Registry.ResetPeriods(r.Context(), site, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// GetGrid returns the per-day/per-user presence matrix for a period.
// GET /api/sites/{site}/periods/{year}/{periodId}/grid
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	periodID := chi.URLParam(r, "periodId")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	ctx := r.Context()
	siteDoc, err := h.Catalog.LoadSite(ctx, site)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	period, err := h.Catalog.FindPeriod(ctx, site, periodID, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	userIDs := make([]string, 0, len(siteDoc.Users))
	var events []desiderata.Event
	for _, u := range siteDoc.Users {
		userIDs = append(userIDs, u.ID)
		userEvents, err := h.Catalog.LoadUserEvents(ctx, site, u.ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		events = append(events, userEvents...)
	}

	writeJSON(w, http.StatusOK, desiderata.BuildGrid(period, events, userIDs))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var overlap *periods.OverlapError
	switch {
	case errors.As(err, &overlap):
		writeError(w, http.StatusBadRequest, "Periods overlap", err)
	case roster.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case roster.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
