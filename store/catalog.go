package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/warp/roster-engine/desiderata"
	"github.com/warp/roster-engine/periods"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// SITE DOCUMENTS
// =============================================================================

// User is one member of a site roster.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Site is the per-site root document: the user roster plus site-wide
// events (holidays and the like).
type Site struct {
	Users  []User             `json:"users"`
	Events []desiderata.Event `json:"events"`
}

// FindUser returns the user with the given id, or nil.
func (s *Site) FindUser(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// =============================================================================
// CATALOG - Typed accessors over the blob paths
// =============================================================================

// Catalog wraps a BlobStore with the JSON documents the engine works
// with. It also serializes read-modify-write cycles per blob key so
// two concurrent edits of the same user or period resource cannot
// silently lose the earlier write.
type Catalog struct {
	blobs BlobStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCatalog(blobs BlobStore) *Catalog {
	return &Catalog{
		blobs: blobs,
		locks: make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex guarding one blob key.
func (c *Catalog) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

func siteKey(site string) string { return fmt.Sprintf("sites/%s.json", site) }
func periodsKey(site string, year int) string {
	return fmt.Sprintf("sites/%s/periods/%d.json", site, year)
}
func eventsKey(site, userID string) string {
	return fmt.Sprintf("sites/%s/events/%s.json", site, userID)
}
func settingsKey(site, userID string) string {
	return fmt.Sprintf("sites/%s/settings/%s.json", site, userID)
}
func usageKey(site, userID, periodID string) string {
	return fmt.Sprintf("sites/%s/desiderata/%s/%s.json", site, userID, periodID)
}

// getJSON decodes the blob at key into v. Returns ErrBlobNotFound
// untranslated so callers choose the missing-blob policy.
func (c *Catalog) getJSON(ctx context.Context, key string, v any) error {
	data, err := c.blobs.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

func (c *Catalog) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return c.blobs.Put(ctx, key, data)
}

// --- Site ---

// LoadSite returns the site root document. A missing site file means
// the site does not exist.
func (c *Catalog) LoadSite(ctx context.Context, site string) (*Site, error) {
	var s Site
	err := c.getJSON(ctx, siteKey(site), &s)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, fmt.Errorf("site %q: %w", site, roster.ErrSiteNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSite overwrites the site root document.
func (c *Catalog) SaveSite(ctx context.Context, site string, s *Site) error {
	lock := c.keyLock(siteKey(site))
	lock.Lock()
	defer lock.Unlock()
	return c.putJSON(ctx, siteKey(site), s)
}

// --- Events ---

// LoadUserEvents returns a user's events. No event file yet means no
// events.
func (c *Catalog) LoadUserEvents(ctx context.Context, site, userID string) ([]desiderata.Event, error) {
	var events []desiderata.Event
	err := c.getJSON(ctx, eventsKey(site, userID), &events)
	if errors.Is(err, ErrBlobNotFound) {
		return []desiderata.Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	return events, nil
}

// SaveUserEvents overwrites a user's event file.
func (c *Catalog) SaveUserEvents(ctx context.Context, site, userID string, events []desiderata.Event) error {
	lock := c.keyLock(eventsKey(site, userID))
	lock.Lock()
	defer lock.Unlock()
	return c.putJSON(ctx, eventsKey(site, userID), events)
}

// UpsertUserEvent inserts or replaces one event by id under the event
// file's key lock, so concurrent edits cannot drop each other.
func (c *Catalog) UpsertUserEvent(ctx context.Context, site, userID string, event desiderata.Event) error {
	lock := c.keyLock(eventsKey(site, userID))
	lock.Lock()
	defer lock.Unlock()

	events, err := c.LoadUserEvents(ctx, site, userID)
	if err != nil {
		return err
	}
	replaced := false
	for i := range events {
		if events[i].ID == event.ID {
			events[i] = event
			replaced = true
			break
		}
	}
	if !replaced {
		events = append(events, event)
	}
	return c.putJSON(ctx, eventsKey(site, userID), events)
}

// --- Settings ---

// LoadUserSettings returns a user's availability settings. No settings
// file yet means no rules and no exceptions.
func (c *Catalog) LoadUserSettings(ctx context.Context, site, userID string) (*roster.UserSettings, error) {
	var s roster.UserSettings
	err := c.getJSON(ctx, settingsKey(site, userID), &s)
	if errors.Is(err, ErrBlobNotFound) {
		return &roster.UserSettings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveUserSettings overwrites a user's settings file.
func (c *Catalog) SaveUserSettings(ctx context.Context, site, userID string, s *roster.UserSettings) error {
	lock := c.keyLock(settingsKey(site, userID))
	lock.Lock()
	defer lock.Unlock()
	return c.putJSON(ctx, settingsKey(site, userID), s)
}

// SaveAvailabilityRules replaces the rule sequence, preserving
// whatever exceptions are stored. Rule order is the precedence
// contract, so the sequence is written exactly as given.
func (c *Catalog) SaveAvailabilityRules(ctx context.Context, site, userID string, rules []roster.AvailabilityRule) error {
	lock := c.keyLock(settingsKey(site, userID))
	lock.Lock()
	defer lock.Unlock()

	settings, err := c.LoadUserSettings(ctx, site, userID)
	if err != nil {
		return err
	}
	settings.Availability = rules
	return c.putJSON(ctx, settingsKey(site, userID), settings)
}

// UpsertAvailabilityException applies upsert-by-date semantics to a
// user's exception set under the settings key lock.
func (c *Catalog) UpsertAvailabilityException(ctx context.Context, site, userID string, ex roster.AvailabilityException) error {
	lock := c.keyLock(settingsKey(site, userID))
	lock.Lock()
	defer lock.Unlock()

	settings, err := c.LoadUserSettings(ctx, site, userID)
	if err != nil {
		return err
	}
	settings.AvailabilityExceptions = roster.UpsertException(settings.AvailabilityExceptions, ex)
	return c.putJSON(ctx, settingsKey(site, userID), settings)
}

// --- Periods ---

// LoadPeriodFile returns the period set for a site/year. No file yet
// means an empty period set for that year.
func (c *Catalog) LoadPeriodFile(ctx context.Context, site string, year int) (*periods.PeriodFile, error) {
	var f periods.PeriodFile
	err := c.getJSON(ctx, periodsKey(site, year), &f)
	if errors.Is(err, ErrBlobNotFound) {
		return &periods.PeriodFile{Year: year, Site: site}, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// SavePeriodFile overwrites the period set for file.Site/file.Year.
func (c *Catalog) SavePeriodFile(ctx context.Context, file *periods.PeriodFile) error {
	key := periodsKey(file.Site, file.Year)
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	return c.putJSON(ctx, key, file)
}

// FindPeriod locates a period by id. Periods spill across year
// boundaries (the winter window starts in December of the previous
// year), so the year files around yearHint are consulted in order.
func (c *Catalog) FindPeriod(ctx context.Context, site, periodID string, yearHint int) (*periods.Period, error) {
	for _, year := range []int{yearHint, yearHint + 1, yearHint - 1} {
		f, err := c.LoadPeriodFile(ctx, site, year)
		if err != nil {
			return nil, err
		}
		if p := f.FindByID(periodID); p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("period %q: %w", periodID, roster.ErrPeriodNotFound)
}

// --- Usage cache ---

// LoadUsage returns the cached usage for a user/period, or nil when
// none has been stored.
func (c *Catalog) LoadUsage(ctx context.Context, site, userID, periodID string) (*desiderata.Usage, error) {
	var u desiderata.Usage
	err := c.getJSON(ctx, usageKey(site, userID, periodID), &u)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUsage overwrites the cached usage for a user/period.
func (c *Catalog) SaveUsage(ctx context.Context, site, userID, periodID string, u *desiderata.Usage) error {
	key := usageKey(site, userID, periodID)
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	return c.putJSON(ctx, key, u)
}
