package ephem

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// unixEpochJD is the Julian date of the Unix epoch, 1970 January 1.0 UT.
const unixEpochJD = 2440587.5

// JulianDay converts t to a Julian date on the UT timescale.
func JulianDay(t time.Time) float64 {
	return unixEpochJD + float64(t.UnixNano())/float64(24*time.Hour)
}

// dayNumber is the timescale the orbital element polynomials use:
// days since 2000 January 0.0 UT (JD 2451543.5).
func dayNumber(t time.Time) float64 {
	return JulianDay(t) - 2451543.5
}

// GreenwichSiderealHours returns Greenwich mean sidereal time at t in hours.
func GreenwichSiderealHours(t time.Time) float64 {
	theta := satellite.ThetaG_JD(JulianDay(t))
	return wrapHours(deg(theta) / 15)
}

// LocalSiderealHours returns mean sidereal time in hours at t for a site
// longitude in degrees, east positive.
func LocalSiderealHours(t time.Time, longitudeDeg float64) float64 {
	return wrapHours(GreenwichSiderealHours(t) + longitudeDeg/15)
}
