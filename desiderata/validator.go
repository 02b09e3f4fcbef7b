package desiderata

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/roster-engine/periods"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// USAGE - Cached per-user/per-period consumption
// =============================================================================

// Usage is the cached desiderata consumption for one user in one
// period. It is never authoritative: the validator always recomputes
// from stored events, and Recalculate rebuilds this cache by replaying
// them.
type Usage struct {
	WeekendsUsed    float64   `json:"weekendsUsed"`
	WorkingDaysUsed int       `json:"workingDaysUsed"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// =============================================================================
// VALIDATOR - Candidate request vs remaining quota
// =============================================================================

// Storage is the persistence surface the validator needs. The store
// package's Catalog implements it.
type Storage interface {
	// LoadUserEvents returns all stored events for a user. A user with
	// no event file yields an empty slice.
	LoadUserEvents(ctx context.Context, site, userID string) ([]Event, error)

	// FindPeriod locates a period by id. yearHint names the year file
	// to consult first; adjacent years are scanned for periods that
	// spill across the boundary. Returns roster.ErrPeriodNotFound when
	// no file contains the id.
	FindPeriod(ctx context.Context, site, periodID string, yearHint int) (*periods.Period, error)

	// LoadUsage returns the cached usage, or nil when none is stored.
	LoadUsage(ctx context.Context, site, userID, periodID string) (*Usage, error)

	// SaveUsage overwrites the cached usage.
	SaveUsage(ctx context.Context, site, userID, periodID string, u *Usage) error
}

// ValidationResult is the structured outcome of a quota check. It is
// always populated: the validator is a predicate used inline in
// request validation and never panics or propagates past this shape.
//
// Remaining figures are clamped to zero even when invalid, so a client
// can render "how much is left" separately from "how far over".
type ValidationResult struct {
	Valid                bool    `json:"valid"`
	WeekendsUsed         float64 `json:"weekendsUsed"`
	WorkingDaysUsed      int     `json:"workingDaysUsed"`
	WeekendsAllowed      float64 `json:"weekendsAllowed"`
	WorkingDaysAllowed   float64 `json:"workingDaysAllowed"`
	WeekendsRemaining    float64 `json:"weekendsRemaining"`
	WorkingDaysRemaining float64 `json:"workingDaysRemaining"`
	Error                string  `json:"error,omitempty"`
}

// Validator checks candidate desiderata requests against period
// quotas and rebuilds the usage cache.
type Validator struct {
	Storage Storage

	// Now is injectable for deterministic lastUpdated stamps in tests.
	Now func() time.Time
}

func NewValidator(storage Storage) *Validator {
	return &Validator{Storage: storage, Now: time.Now}
}

// Validate determines whether a candidate request [start, end] fits
// within the user's remaining quota for the period.
//
// The candidate may be an in-place edit of an existing event; passing
// that event's id as excludeEventID keeps it out of the actual-usage
// sum so it is not double-counted.
//
// Storage failures and configuration gaps surface as invalid results
// with a descriptive error, never as a panic or a silent pass.
func (v *Validator) Validate(ctx context.Context, site, userID, periodID string, start, end roster.Date, excludeEventID string) ValidationResult {
	period, err := v.Storage.FindPeriod(ctx, site, periodID, start.Year())
	if err != nil {
		return invalidResult(err)
	}
	if period.Quotas == nil {
		return invalidResult(fmt.Errorf("period %q: %w", period.Name, roster.ErrQuotaNotConfigured))
	}

	actual, err := v.actualUsage(ctx, site, userID, period, excludeEventID)
	if err != nil {
		return invalidResult(err)
	}

	candidate := CalculateEventDays(start, end)
	total := actual.Add(candidate)

	allowedWeekends := decimal.NewFromFloat(period.Quotas.AllowedWeekendDesiderata)
	allowedWorking := decimal.NewFromFloat(period.Quotas.AllowedWorkingDayDesiderata)

	remainingWeekends := allowedWeekends.Sub(total.Weekends)
	remainingWorking := allowedWorking.Sub(decimal.NewFromInt(int64(total.WorkingDays)))

	valid := !remainingWeekends.IsNegative() && !remainingWorking.IsNegative()

	res := ValidationResult{
		Valid:                valid,
		WeekendsUsed:         mustFloat(total.Weekends),
		WorkingDaysUsed:      total.WorkingDays,
		WeekendsAllowed:      period.Quotas.AllowedWeekendDesiderata,
		WorkingDaysAllowed:   period.Quotas.AllowedWorkingDayDesiderata,
		WeekendsRemaining:    mustFloat(clampZero(remainingWeekends)),
		WorkingDaysRemaining: mustFloat(clampZero(remainingWorking)),
	}
	if !valid {
		res.Error = "desiderata quota exceeded"
	}
	return res
}

// actualUsage sums the quota cost of the user's stored desiderata
// events whose start date falls inside the period, skipping the
// excluded event.
func (v *Validator) actualUsage(ctx context.Context, site, userID string, period *periods.Period, excludeEventID string) (EventDays, error) {
	events, err := v.Storage.LoadUserEvents(ctx, site, userID)
	if err != nil {
		return EventDays{}, err
	}

	total := EventDays{Weekends: decimal.Zero}
	for i := range events {
		e := &events[i]
		if !e.ConsumesQuota() {
			continue
		}
		if excludeEventID != "" && e.ID == excludeEventID {
			continue
		}
		if !period.Contains(e.Date) {
			continue
		}
		total = total.Add(eventDaysFor(e))
	}
	return total, nil
}

// Recalculate rebuilds the usage cache for a user/period from their
// stored events and persists it via simple overwrite.
//
// Idempotency: when the recomputed figures match the stored cache, the
// stored record is left untouched (including its lastUpdated stamp),
// so back-to-back runs with no event changes store identical bytes.
func (v *Validator) Recalculate(ctx context.Context, site, userID, periodID string) (*Usage, error) {
	period, err := v.Storage.FindPeriod(ctx, site, periodID, v.Now().Year())
	if err != nil {
		return nil, err
	}

	actual, err := v.actualUsage(ctx, site, userID, period, "")
	if err != nil {
		return nil, err
	}

	usage := &Usage{
		WeekendsUsed:    mustFloat(actual.Weekends),
		WorkingDaysUsed: actual.WorkingDays,
		LastUpdated:     v.Now().UTC(),
	}

	existing, err := v.Storage.LoadUsage(ctx, site, userID, periodID)
	if err != nil {
		return nil, err
	}
	if existing != nil &&
		existing.WeekendsUsed == usage.WeekendsUsed &&
		existing.WorkingDaysUsed == usage.WorkingDaysUsed {
		return existing, nil
	}

	if err := v.Storage.SaveUsage(ctx, site, userID, periodID, usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// Lookup returns the quota summary for a user/period: the configured
// quotas plus cached usage and clamped remaining figures. A missing
// cache is rebuilt on the spot.
func (v *Validator) Lookup(ctx context.Context, site, userID, periodID string) (*periods.Period, *Usage, error) {
	period, err := v.Storage.FindPeriod(ctx, site, periodID, v.Now().Year())
	if err != nil {
		return nil, nil, err
	}
	if period.Quotas == nil {
		return nil, nil, fmt.Errorf("period %q: %w", period.Name, roster.ErrQuotaNotConfigured)
	}

	usage, err := v.Storage.LoadUsage(ctx, site, userID, periodID)
	if err != nil {
		return nil, nil, err
	}
	if usage == nil {
		usage, err = v.Recalculate(ctx, site, userID, periodID)
		if err != nil {
			return nil, nil, err
		}
	}
	return period, usage, nil
}

// Remaining computes the clamped remaining allowance for a usage
// record against a period's quotas.
func Remaining(q *periods.Quotas, u *Usage) (weekends, workingDays float64) {
	w := decimal.NewFromFloat(q.AllowedWeekendDesiderata).Sub(decimal.NewFromFloat(u.WeekendsUsed))
	d := decimal.NewFromFloat(q.AllowedWorkingDayDesiderata).Sub(decimal.NewFromInt(int64(u.WorkingDaysUsed)))
	return mustFloat(clampZero(w)), mustFloat(clampZero(d))
}

func invalidResult(err error) ValidationResult {
	return ValidationResult{Valid: false, Error: err.Error()}
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
