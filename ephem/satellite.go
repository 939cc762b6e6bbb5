package ephem

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// WGS72 ellipsoid, matching the gravity model the propagator runs with.
const (
	earthRadiusKm   = 6378.135
	earthFlattening = 1 / 298.26
)

// satellitePosition propagates an element set with SGP4 and derives look
// angles for the observer. go-satellite works in kilometres and radians.
func satellitePosition(sat satellite.Satellite, obs Observer, t time.Time) (Topocentric, error) {
	tu := t.UTC()
	year, month, day := tu.Date()
	hour, min, sec := tu.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	if !propagated(posECI) {
		return Topocentric{}, fmt.Errorf("propagate satellite: no solution at %s", tu.Format(time.RFC3339))
	}
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	lat := rad(obs.LatitudeDeg)
	lon := rad(obs.LongitudeDeg)

	// geodetic observer position on the ellipsoid, kilometres
	e2 := earthFlattening * (2 - earthFlattening)
	nu := earthRadiusKm / math.Sqrt(1-e2*math.Sin(lat)*math.Sin(lat))
	obsECEF := satellite.Vector3{
		X: nu * math.Cos(lat) * math.Cos(lon),
		Y: nu * math.Cos(lat) * math.Sin(lon),
		Z: nu * (1 - e2) * math.Sin(lat),
	}

	rx := posECEF.X - obsECEF.X
	ry := posECEF.Y - obsECEF.Y
	rz := posECEF.Z - obsECEF.Z
	rng := math.Sqrt(rx*rx + ry*ry + rz*rz)
	if rng == 0 {
		return Topocentric{}, fmt.Errorf("propagate satellite: degenerate range")
	}

	// east/north/up components of the range vector at the observer
	east := -math.Sin(lon)*rx + math.Cos(lon)*ry
	north := -math.Sin(lat)*math.Cos(lon)*rx - math.Sin(lat)*math.Sin(lon)*ry + math.Cos(lat)*rz
	up := math.Cos(lat)*math.Cos(lon)*rx + math.Cos(lat)*math.Sin(lon)*ry + math.Sin(lat)*rz

	az := wrapDegrees(deg(math.Atan2(east, north)))
	el := deg(math.Asin(clamp(up/rng, -1, 1)))

	// topocentric right ascension and declination from the same range
	// vector rotated back into the inertial frame
	xi := rx*math.Cos(gmst) - ry*math.Sin(gmst)
	yi := rx*math.Sin(gmst) + ry*math.Cos(gmst)
	ra := wrapHours(deg(math.Atan2(yi, xi)) / 15)
	dec := deg(math.Asin(clamp(rz/rng, -1, 1)))

	return Topocentric{AzimuthDeg: az, ElevationDeg: el, RAHours: ra, DecDeg: dec}, nil
}

// propagated reports whether SGP4 produced a usable position. Decayed or
// unconverged orbits come back as zeros or NaNs.
func propagated(v satellite.Vector3) bool {
	if v.X == 0 && v.Y == 0 && v.Z == 0 {
		return false
	}
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z)
}
