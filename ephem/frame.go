package ephem

import (
	"math"
	"time"
)

// Observer is the ground site positions are computed for.
type Observer struct {
	// LatitudeDeg and LongitudeDeg are geodetic degrees, north and east
	// positive.
	LatitudeDeg  float64
	LongitudeDeg float64
}

// Topocentric is an apparent sky position as seen from an observer.
type Topocentric struct {
	// AzimuthDeg is degrees clockwise from north, in [0, 360).
	AzimuthDeg float64
	// ElevationDeg is degrees above the geometric horizon.
	ElevationDeg float64
	// RAHours is the right ascension of date in hours, [0, 24).
	RAHours float64
	// DecDeg is the declination of date in degrees.
	DecDeg float64
}

// horizontal converts an equatorial direction of date into azimuth and
// elevation for the observer at t. The rotation puts x towards the south
// horizon, y west and z up, so atan2 plus a half turn measures azimuth
// clockwise from north.
func horizontal(raHours, decDeg float64, obs Observer, t time.Time) (azDeg, elDeg float64) {
	ha := rad(15 * (LocalSiderealHours(t, obs.LongitudeDeg) - raHours))
	dec := rad(decDeg)
	lat := rad(obs.LatitudeDeg)

	x := math.Cos(ha) * math.Cos(dec)
	y := math.Sin(ha) * math.Cos(dec)
	z := math.Sin(dec)

	xhor := x*math.Sin(lat) - z*math.Cos(lat)
	yhor := y
	zhor := x*math.Cos(lat) + z*math.Sin(lat)

	azDeg = wrapDegrees(deg(math.Atan2(yhor, xhor)) + 180)
	elDeg = deg(math.Asin(clamp(zhor, -1, 1)))
	return azDeg, elDeg
}
