package model

// BodyKind indicates how an object's position is determined.
type BodyKind int

const (
	BodyKindUnknown   BodyKind = iota
	BodyKindCatalog            // solar-system body computed from its name
	BodyKindFixed              // catalogued equatorial direction (star, radio source)
	BodyKindSatellite          // TLE-based orbit propagation
)

// Epoch is a reference equinox expressed as a Julian date.
type Epoch float64

const (
	EpochJ2000 Epoch = 2451545.0
	EpochB1950 Epoch = 2433282.4235
	EpochB1900 Epoch = 2415020.3135
)

// Body carries the definition a position engine needs to locate an object.
// Exactly the fields selected by Kind are meaningful.
type Body struct {
	Kind BodyKind

	// Catalog is the engine's well-known body name, e.g. "Sun" or "Jupiter".
	Catalog string

	// RAHours and DecDegrees give a fixed direction at Epoch.
	RAHours    float64
	DecDegrees float64
	Epoch      Epoch

	// TLE1 and TLE2 are the two lines of a NORAD element set.
	TLE1 string
	TLE2 string
}

// Object pairs a display name with the body definition used to locate it.
type Object struct {
	// Name is the catalog key as written, including the leading '!' when
	// the entry was marked for alerting.
	Name string
	// Alert marks the object for threshold alerts in the live monitor.
	Alert bool

	Body Body
}
