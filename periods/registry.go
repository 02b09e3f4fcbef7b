package periods

import (
	"context"
	"time"
)

// =============================================================================
// REGISTRY - Storage-backed period administration
// =============================================================================

// Store is the persistence surface the registry needs. The store
// package's Catalog implements it.
type Store interface {
	// LoadPeriodFile returns the period set for a site/year, or an
	// empty file if none has been saved yet.
	LoadPeriodFile(ctx context.Context, site string, year int) (*PeriodFile, error)

	// SavePeriodFile overwrites the period set for file.Site/file.Year.
	SavePeriodFile(ctx context.Context, file *PeriodFile) error
}

// Registry administers a site's period sets.
type Registry struct {
	Store Store

	// Now is injectable for deterministic lastUpdated stamps in tests.
	Now func() time.Time
}

func NewRegistry(store Store) *Registry {
	return &Registry{Store: store, Now: time.Now}
}

// SavePeriods validates and persists a full period set for a
// site/year. Validation failure aborts the save with no partial write.
func (r *Registry) SavePeriods(ctx context.Context, site string, year int, ps []Period) (*PeriodFile, error) {
	if err := ValidatePeriods(ps); err != nil {
		return nil, err
	}
	file := &PeriodFile{
		Year:        year,
		Site:        site,
		Periods:     ps,
		LastUpdated: r.Now().UTC(),
	}
	if err := r.Store.SavePeriodFile(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// ResetPeriods regenerates the canonical default periods for a
// site/year, unconditionally overwriting whatever is stored.
func (r *Registry) ResetPeriods(ctx context.Context, site string, year int) (*PeriodFile, error) {
	return r.SavePeriods(ctx, site, year, DefaultPeriods(year))
}
