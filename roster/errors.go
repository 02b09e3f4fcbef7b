/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Other packages wrap these with additional context.

ERROR CATEGORIES:
  1. Not-found errors - missing site/user/period resources
  2. Configuration errors - quotas or periods not set up
  3. Validation errors - rejected period or request input

USAGE:
  Callers branch with errors.Is():

    if errors.Is(err, roster.ErrPeriodNotFound) {
        // 404
    }

SEE ALSO:
  - api/handlers.go: Maps these to HTTP status codes
  - desiderata/validator.go: Folds them into structured results
*/
package roster

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSiteNotFound is returned when a referenced site doesn't exist.
	ErrSiteNotFound = errors.New("site not found")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPeriodNotFound is returned when a period id cannot be located
	// in any period file consulted.
	ErrPeriodNotFound = errors.New("period not found")

	// ErrQuotaNotConfigured is returned when a period exists but
	// carries no desiderata quota configuration. Validation against
	// such a period is always invalid, never silently passing.
	ErrQuotaNotConfigured = errors.New("period has no desiderata quotas configured")

	// ErrInvalidDateRange is returned when an end date precedes its
	// start date.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError identifies a single malformed or missing input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSiteNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrPeriodNotFound)
}

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	var fieldErr *FieldError
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrQuotaNotConfigured) ||
		errors.As(err, &fieldErr)
}
