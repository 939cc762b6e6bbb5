package model

import "time"

// Location is a geocoded observing site.
type Location struct {
	// Name is the short place name reported by the geocoder.
	Name string
	// Address is the full formatted address. Later lookups re-resolve this
	// string rather than the query the user originally typed.
	Address string
	// PlaceID is the geocoder's stable identifier for the place.
	PlaceID string

	// Latitude and Longitude are geodetic degrees, north and east positive.
	Latitude  float64
	Longitude float64

	// Timezone is the IANA zone name, e.g. "Asia/Tokyo".
	Timezone string
	// UTCOffsetHours is the zone's offset from UTC in hours, daylight
	// saving included, at the instant the entry was last refreshed.
	UTCOffsetHours float64

	// RefreshedAt records when the coordinates and timezone were last
	// confirmed against the geocoder.
	RefreshedAt time.Time
}

// Zone is the site's own timezone as a sampling origin.
func (l Location) Zone() TimezoneSpec {
	return TimezoneSpec{Name: l.Timezone, OffsetHours: l.UTCOffsetHours}
}

// TimezoneSpec selects the time origin used to walk a sampled day.
type TimezoneSpec struct {
	// Name is the label trajectories and screens show,
	// e.g. "Asia/Tokyo", "UTC" or "LST".
	Name string
	// OffsetHours shifts the day's origin east of UTC. Ignored when LST is set.
	OffsetHours float64
	// LST aligns the origin with local sidereal time instead of a fixed offset.
	LST bool
}
