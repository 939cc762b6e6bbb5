package model

// Sample is one point of a day's trajectory.
type Sample struct {
	// Hours is the offset from the local midnight origin, 0 through 24.
	Hours float64
	// Azimuth is degrees clockwise from north, in [0, 360).
	Azimuth float64
	// Elevation is degrees above the horizon, in (-90, 90].
	Elevation float64
	// Valid is false where the object is below the horizon or where the
	// azimuth wrapped through north between neighbouring samples. Invalid
	// samples keep their Hours so gaps stay visible.
	Valid bool
}

// Trajectory is a full sampled day for one object.
type Trajectory struct {
	Object  Object
	Samples []Sample
}
