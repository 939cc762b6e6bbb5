package atlas

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astropenguin/pazel/geocode"
	"github.com/astropenguin/pazel/model"
)

type fakeGeocoder struct {
	place       geocode.Place
	zone        geocode.Zone
	geocodeErr  error
	timezoneErr error

	queries []string
	tzCalls int
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (geocode.Place, error) {
	f.queries = append(f.queries, query)
	if f.geocodeErr != nil {
		return geocode.Place{}, f.geocodeErr
	}
	return f.place, nil
}

func (f *fakeGeocoder) Timezone(_ context.Context, _, _ float64, _ time.Time) (geocode.Zone, error) {
	f.tzCalls++
	if f.timezoneErr != nil {
		return geocode.Zone{}, f.timezoneErr
	}
	return f.zone, nil
}

var testDate = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

func mitakaGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		place: geocode.Place{
			Name:      "Mitaka",
			Address:   "Mitaka, Tokyo, Japan",
			PlaceID:   "ChIJxTwXnJPvGGARSR9qrLqCBkY",
			Latitude:  35.683513,
			Longitude: 139.559721,
		},
		zone: geocode.Zone{ID: "Asia/Tokyo", OffsetHours: 9},
	}
}

func TestKey_NormalisesWords(t *testing.T) {
	cases := []struct {
		words []string
		want  string
	}{
		{[]string{"Mitaka", "Tokyo"}, "mitaka+tokyo"},
		{[]string{"  Mitaka ", "TOKYO"}, "mitaka+tokyo"},
		{[]string{"mitaka"}, "mitaka"},
		{[]string{"", "  "}, ""},
	}
	for _, c := range cases {
		if got := Key(c.words); got != c.want {
			t.Errorf("Key(%v) = %q, want %q", c.words, got, c.want)
		}
	}
}

func TestOpen_MissingFileYieldsEmptyDirectory(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), mitakaGeocoder())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", d.Len())
	}
}

func TestResolve_CachesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	gc := mitakaGeocoder()
	d, err := Open(path, gc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	loc, err := d.Resolve(context.Background(), []string{"Mitaka", "Tokyo"}, testDate)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if loc.PlaceID != gc.place.PlaceID {
		t.Errorf("PlaceID = %q, want %q", loc.PlaceID, gc.place.PlaceID)
	}
	if loc.Timezone != "Asia/Tokyo" || loc.UTCOffsetHours != 9 {
		t.Errorf("zone = %q offset %v, want Asia/Tokyo offset 9", loc.Timezone, loc.UTCOffsetHours)
	}
	if len(gc.queries) != 1 || gc.queries[0] != "Mitaka Tokyo" {
		t.Errorf("geocoder queries = %v, want the words joined with spaces", gc.queries)
	}
	if loc.RefreshedAt.IsZero() {
		t.Error("RefreshedAt not stamped")
	}

	if err := d.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reopened, err := Open(path, mitakaGeocoder())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Lookup("mitaka+tokyo")
	if !ok {
		t.Fatal("entry lost across persist/reopen")
	}
	if got.PlaceID != loc.PlaceID || got.Latitude != loc.Latitude || got.Timezone != loc.Timezone {
		t.Errorf("reloaded entry %+v does not match stored %+v", got, loc)
	}
}

func TestResolve_RefreshesThroughStoredAddress(t *testing.T) {
	gc := mitakaGeocoder()
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), gc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d.entries["mitaka+tokyo"] = &model.Location{
		Name:    "Mitaka",
		Address: "Mitaka, Tokyo, Japan",
		PlaceID: "ChIJxTwXnJPvGGARSR9qrLqCBkY",
	}

	if _, err := d.Resolve(context.Background(), []string{"MITAKA", "tokyo"}, testDate); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(gc.queries) != 1 || gc.queries[0] != "Mitaka, Tokyo, Japan" {
		t.Errorf("refresh queried %v, want the stored formatted address", gc.queries)
	}
	if gc.tzCalls != 1 {
		t.Errorf("timezone calls = %d, want 1", gc.tzCalls)
	}
}

func TestResolve_FallsBackToStaleOnGeocodeFailure(t *testing.T) {
	gc := mitakaGeocoder()
	gc.geocodeErr = errors.New("dial tcp: connection refused")
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), gc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	stale := model.Location{
		Name:           "Mitaka",
		Address:        "Mitaka, Tokyo, Japan",
		PlaceID:        "ChIJxTwXnJPvGGARSR9qrLqCBkY",
		Latitude:       35.683513,
		Longitude:      139.559721,
		Timezone:       "Asia/Tokyo",
		UTCOffsetHours: 9,
	}
	d.entries["mitaka+tokyo"] = &stale

	loc, err := d.Resolve(context.Background(), []string{"mitaka", "tokyo"}, testDate)
	if err != nil {
		t.Fatalf("Resolve with cached entry should not fail: %v", err)
	}
	if loc.Latitude != stale.Latitude || loc.Timezone != stale.Timezone {
		t.Errorf("got %+v, want the stale cached entry", loc)
	}
}

func TestResolve_FallsBackToStaleOnTimezoneFailure(t *testing.T) {
	gc := mitakaGeocoder()
	gc.timezoneErr = errors.New("dial tcp: connection refused")
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), gc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d.entries["mitaka+tokyo"] = &model.Location{
		Address:        "Mitaka, Tokyo, Japan",
		Timezone:       "Asia/Tokyo",
		UTCOffsetHours: 9,
	}

	loc, err := d.Resolve(context.Background(), []string{"mitaka", "tokyo"}, testDate)
	if err != nil {
		t.Fatalf("Resolve with cached entry should not fail: %v", err)
	}
	if loc.UTCOffsetHours != 9 {
		t.Errorf("offset = %v, want the stale cached 9", loc.UTCOffsetHours)
	}
}

func TestResolve_UncachedFailureIsFatal(t *testing.T) {
	gc := mitakaGeocoder()
	gc.geocodeErr = errors.New("dial tcp: connection refused")
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), gc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = d.Resolve(context.Background(), []string{"nowhere"}, testDate)
	if !errors.Is(err, ErrResolutionUnavailable) {
		t.Fatalf("err = %v, want ErrResolutionUnavailable", err)
	}
}

func TestResolve_DuplicatePlaceKeepsBothEntries(t *testing.T) {
	gc := mitakaGeocoder()
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), gc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d.entries["nao"] = &model.Location{
		Address: "Mitaka, Tokyo, Japan",
		PlaceID: gc.place.PlaceID,
	}

	if _, err := d.Resolve(context.Background(), []string{"national", "astronomical", "observatory"}, testDate); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want both spellings kept", d.Len())
	}
}

func TestResolveTimezone_Literals(t *testing.T) {
	gc := mitakaGeocoder()
	gc.geocodeErr = errors.New("must not be called")
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), gc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	utc, err := d.ResolveTimezone(context.Background(), "UTC", testDate)
	if err != nil {
		t.Fatalf("ResolveTimezone(UTC): %v", err)
	}
	if utc.OffsetHours != 0 || utc.LST {
		t.Errorf("UTC spec = %+v, want zero offset, not sidereal", utc)
	}

	lst, err := d.ResolveTimezone(context.Background(), "lst", testDate)
	if err != nil {
		t.Fatalf("ResolveTimezone(lst): %v", err)
	}
	if !lst.LST {
		t.Errorf("LST spec = %+v, want LST set", lst)
	}
	if len(gc.queries) != 0 {
		t.Errorf("literals must not hit the geocoder, queries = %v", gc.queries)
	}
}

func TestResolveTimezone_PlaceQuery(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "locations.json"), mitakaGeocoder())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	spec, err := d.ResolveTimezone(context.Background(), "Mitaka Tokyo", testDate)
	if err != nil {
		t.Fatalf("ResolveTimezone: %v", err)
	}
	if spec.Name != "Asia/Tokyo" || spec.OffsetHours != 9 || spec.LST {
		t.Errorf("spec = %+v, want Asia/Tokyo at +9", spec)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want the place cached by the lookup", d.Len())
	}
}

func TestPersist_SkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	d, err := Open(path, mitakaGeocoder())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("clean directory wrote %s", path)
	}
}
