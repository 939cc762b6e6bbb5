// Package atlas keeps the persistent directory of observing sites: every
// place ever resolved, keyed by the normalised query that first found it.
// Entries are refreshed against the geocoder on later lookups and never
// expire.
package atlas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/astropenguin/pazel/geocode"
	"github.com/astropenguin/pazel/internal/logging"
	"github.com/astropenguin/pazel/model"
)

// ErrResolutionUnavailable reports a query that is neither cached nor
// resolvable right now.
var ErrResolutionUnavailable = errors.New("location resolution unavailable")

// Geocoder is the slice of the geocoding client the directory needs.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geocode.Place, error)
	Timezone(ctx context.Context, lat, lng float64, at time.Time) (geocode.Zone, error)
}

// Directory is the persistent store of observing sites.
type Directory struct {
	mu      sync.RWMutex
	path    string
	entries map[string]*model.Location
	dirty   bool

	geocoder Geocoder
	log      logging.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Directory) { d.log = l }
}

// Open loads the directory file. A missing file yields an empty directory,
// not an error.
func Open(path string, gc Geocoder, opts ...Option) (*Directory, error) {
	d := &Directory{
		path:     path,
		entries:  make(map[string]*model.Location),
		geocoder: gc,
		log:      logging.Noop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d, nil
		}
		return nil, fmt.Errorf("open location directory: %w", err)
	}

	var raw map[string]locationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("open location directory: unmarshal: %w", err)
	}
	for key, lj := range raw {
		loc := lj.toModel()
		d.entries[key] = &loc
	}
	return d, nil
}

// Key normalises a query: words lower-cased and joined with '+', so
// "Mitaka Tokyo" and "mitaka TOKYO" address the same entry.
func Key(words []string) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, "+")
}

// Resolve returns the location for a query. A cached entry is re-resolved
// through its stored address so coordinates and daylight-saving offsets stay
// fresh; when the geocoder is unreachable the stale entry is returned
// instead. An uncached query that cannot be resolved is a hard failure.
// forDate fixes the instant timezone offsets are evaluated at.
func (d *Directory) Resolve(ctx context.Context, words []string, forDate time.Time) (model.Location, error) {
	key := Key(words)
	if key == "" {
		return model.Location{}, fmt.Errorf("resolve location: empty query")
	}

	d.mu.RLock()
	cached, hit := d.entries[key]
	var stale model.Location
	if hit {
		stale = *cached
	}
	d.mu.RUnlock()

	query := strings.Join(words, " ")
	if hit {
		query = stale.Address
	}

	place, err := d.geocoder.Geocode(ctx, query)
	if err != nil {
		if hit {
			d.log.Warn(ctx, "geocoder unavailable, using cached location",
				logging.String("key", key), logging.Err(err))
			return stale, nil
		}
		return model.Location{}, fmt.Errorf("resolve location %q: %w: %w", query, ErrResolutionUnavailable, err)
	}

	zone, err := d.geocoder.Timezone(ctx, place.Latitude, place.Longitude, forDate)
	if err != nil {
		if hit {
			d.log.Warn(ctx, "timezone lookup unavailable, using cached location",
				logging.String("key", key), logging.Err(err))
			return stale, nil
		}
		return model.Location{}, fmt.Errorf("resolve location %q: %w: %w", query, ErrResolutionUnavailable, err)
	}

	loc := model.Location{
		Name:           place.Name,
		Address:        place.Address,
		PlaceID:        place.PlaceID,
		Latitude:       place.Latitude,
		Longitude:      place.Longitude,
		Timezone:       zone.ID,
		UTCOffsetHours: zone.OffsetHours,
		RefreshedAt:    time.Now().UTC(),
	}

	d.mu.Lock()
	d.warnDuplicateLocked(ctx, key, loc.PlaceID)
	d.entries[key] = &loc
	d.dirty = true
	d.mu.Unlock()

	return loc, nil
}

// ResolveTimezone interprets a timezone argument: the literals "UTC" and
// "LST", or a place query whose zone becomes the sampling origin. Literals
// never touch the directory.
func (d *Directory) ResolveTimezone(ctx context.Context, arg string, forDate time.Time) (model.TimezoneSpec, error) {
	switch strings.ToUpper(strings.TrimSpace(arg)) {
	case "":
		return model.TimezoneSpec{}, fmt.Errorf("resolve timezone: empty argument")
	case "UTC":
		return model.TimezoneSpec{Name: "UTC"}, nil
	case "LST":
		return model.TimezoneSpec{Name: "LST", LST: true}, nil
	}

	loc, err := d.Resolve(ctx, strings.Fields(arg), forDate)
	if err != nil {
		return model.TimezoneSpec{}, err
	}
	return loc.Zone(), nil
}

// Lookup returns the cached entry for a key without touching the network.
func (d *Directory) Lookup(key string) (model.Location, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	loc, ok := d.entries[key]
	if !ok {
		return model.Location{}, false
	}
	return *loc, true
}

// Len reports how many sites the directory holds.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Persist writes the directory back to disk when anything changed, via a
// temp file and rename so a crash cannot truncate the store. Callers run it
// once on the way out, not per lookup.
func (d *Directory) Persist() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return nil
	}

	raw := make(map[string]locationJSON, len(d.entries))
	for key, loc := range d.entries {
		raw[key] = toJSON(*loc)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("persist location directory: marshal: %w", err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist location directory: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".locations-tmp-*")
	if err != nil {
		return fmt.Errorf("persist location directory: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist location directory: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist location directory: close: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist location directory: rename: %w", err)
	}

	d.dirty = false
	return nil
}

// warnDuplicateLocked reports when another key already maps to the same
// place, which usually means two spellings of one site. Both entries are
// kept; the lookup key is what the user types, not ours to merge.
func (d *Directory) warnDuplicateLocked(ctx context.Context, key, placeID string) {
	if placeID == "" {
		return
	}
	for other, loc := range d.entries {
		if other != key && loc.PlaceID == placeID {
			d.log.Warn(ctx, "queries resolve to the same place",
				logging.String("key", key),
				logging.String("existing_key", other),
				logging.String("place_id", placeID))
		}
	}
}

// locationJSON is the persisted shape of one entry, kept separate from the
// domain struct so the file format can evolve on its own.
type locationJSON struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	PlaceID     string  `json:"place_id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	UTCOffset   float64 `json:"utc_offset_hours"`
	RefreshedAt string  `json:"refreshed_at,omitempty"`
}

func toJSON(loc model.Location) locationJSON {
	lj := locationJSON{
		Name:      loc.Name,
		Address:   loc.Address,
		PlaceID:   loc.PlaceID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timezone:  loc.Timezone,
		UTCOffset: loc.UTCOffsetHours,
	}
	if !loc.RefreshedAt.IsZero() {
		lj.RefreshedAt = loc.RefreshedAt.UTC().Format(time.RFC3339)
	}
	return lj
}

func (lj locationJSON) toModel() model.Location {
	loc := model.Location{
		Name:           lj.Name,
		Address:        lj.Address,
		PlaceID:        lj.PlaceID,
		Latitude:       lj.Latitude,
		Longitude:      lj.Longitude,
		Timezone:       lj.Timezone,
		UTCOffsetHours: lj.UTCOffset,
	}
	if lj.RefreshedAt != "" {
		if ts, err := time.Parse(time.RFC3339, lj.RefreshedAt); err == nil {
			loc.RefreshedAt = ts
		}
	}
	return loc
}
