package ephem

import "math"

// geocentric is an equatorial position of date. distanceER is the geocentric
// distance in Earth radii and is set only for the Moon, where the diurnal
// parallax correction matters.
type geocentric struct {
	raHours    float64
	decDeg     float64
	distanceER float64
}

// elements are mean orbital elements at a day number: ascending node,
// inclination and argument of perihelion in degrees, semi-major axis in AU
// (Earth radii for the Moon), eccentricity, and mean anomaly in degrees.
type elements struct {
	n float64
	i float64
	w float64
	a float64
	e float64
	m float64
}

// position solves the orbit and returns rectangular ecliptic coordinates in
// the units of the semi-major axis.
func (el elements) position() (x, y, z float64) {
	ecc := solveKepler(rad(wrapDegrees(el.m)), el.e)
	xv := el.a * (math.Cos(ecc) - el.e)
	yv := el.a * math.Sqrt(1-el.e*el.e) * math.Sin(ecc)
	v := math.Atan2(yv, xv)
	r := math.Hypot(xv, yv)

	n := rad(el.n)
	i := rad(el.i)
	vw := v + rad(el.w)

	x = r * (math.Cos(n)*math.Cos(vw) - math.Sin(n)*math.Sin(vw)*math.Cos(i))
	y = r * (math.Sin(n)*math.Cos(vw) + math.Cos(n)*math.Sin(vw)*math.Cos(i))
	z = r * math.Sin(vw) * math.Sin(i)
	return x, y, z
}

// solveKepler returns the eccentric anomaly for mean anomaly m (radians) and
// eccentricity e by Newton iteration on Kepler's equation.
func solveKepler(m, e float64) float64 {
	ecc := m + e*math.Sin(m)*(1+e*math.Cos(m))
	for iter := 0; iter < 20; iter++ {
		delta := (ecc - e*math.Sin(ecc) - m) / (1 - e*math.Cos(ecc))
		ecc -= delta
		if math.Abs(delta) < 1e-9 {
			break
		}
	}
	return ecc
}

// catalogPosition computes the geocentric equatorial position of date for a
// named solar-system body at day number d. The bool reports whether the name
// is known. Names are expected in lower case.
func catalogPosition(name string, d float64) (geocentric, bool) {
	switch name {
	case "sun":
		lon, _ := sunPosition(d)
		ra, dec := eclipticToEquatorial(lon, 0, d)
		return geocentric{raHours: ra, decDeg: dec}, true
	case "moon":
		return moonPosition(d), true
	case "mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune":
		return planetPosition(name, d), true
	case "pluto":
		return plutoPosition(d), true
	}
	return geocentric{}, false
}

// sunPosition returns the Sun's geocentric ecliptic longitude in degrees and
// its distance in AU. The "orbit" here is Earth's, reflected.
func sunPosition(d float64) (lonDeg, r float64) {
	w := 282.9404 + 4.70935e-5*d
	e := 0.016709 - 1.151e-9*d
	m := rad(wrapDegrees(356.0470 + 0.9856002585*d))

	// eccentricity is small enough for the first-order solution
	ecc := m + e*math.Sin(m)*(1+e*math.Cos(m))
	xv := math.Cos(ecc) - e
	yv := math.Sqrt(1-e*e) * math.Sin(ecc)
	v := math.Atan2(yv, xv)
	return wrapDegrees(deg(v) + w), math.Hypot(xv, yv)
}

// moonPosition returns the Moon's geocentric equatorial position of date,
// including the major perturbation terms: evection, variation, the yearly
// equation and the smaller series below keep the longitude within a couple
// of arcminutes.
func moonPosition(d float64) geocentric {
	el := elements{
		n: 125.1228 - 0.0529538083*d,
		i: 5.1454,
		w: 318.0634 + 0.1643573223*d,
		a: 60.2666, // Earth radii
		e: 0.054900,
		m: 115.3654 + 13.0649929509*d,
	}
	x, y, z := el.position()

	lon := deg(math.Atan2(y, x))
	lat := deg(math.Atan2(z, math.Hypot(x, y)))
	r := math.Sqrt(x*x + y*y + z*z)

	// fundamental arguments, degrees
	ms := 356.0470 + 0.9856002585*d // Sun mean anomaly
	ws := 282.9404 + 4.70935e-5*d   // Sun argument of perihelion
	mm := el.m                      // Moon mean anomaly
	ls := ms + ws                   // Sun mean longitude
	lm := mm + el.w + el.n          // Moon mean longitude
	dm := lm - ls                   // mean elongation
	f := lm - el.n                  // argument of latitude

	lon += -1.274*sind(mm-2*dm) +
		0.658*sind(2*dm) -
		0.186*sind(ms) -
		0.059*sind(2*mm-2*dm) -
		0.057*sind(mm-2*dm+ms) +
		0.053*sind(mm+2*dm) +
		0.046*sind(2*dm-ms) +
		0.041*sind(mm-ms) -
		0.035*sind(dm) -
		0.031*sind(mm+ms) -
		0.015*sind(2*f-2*dm) +
		0.011*sind(mm-4*dm)

	lat += -0.173*sind(f-2*dm) -
		0.055*sind(mm-f-2*dm) -
		0.046*sind(mm+f-2*dm) +
		0.033*sind(f+2*dm) +
		0.017*sind(2*mm+f)

	r += -0.58*cosd(mm-2*dm) - 0.46*cosd(2*dm)

	ra, dec := eclipticToEquatorial(lon, lat, d)
	return geocentric{raHours: ra, decDeg: dec, distanceER: r}
}

// planetPosition returns a major planet's geocentric equatorial position of
// date. Heliocentric coordinates from the mean elements are corrected for
// the Jupiter/Saturn/Uranus mutual perturbations, then translated to the
// geocentre by adding the Sun's position.
func planetPosition(name string, d float64) geocentric {
	x, y, z := planetElements(name, d).position()

	lon := deg(math.Atan2(y, x))
	lat := deg(math.Atan2(z, math.Hypot(x, y)))
	r := math.Sqrt(x*x + y*y + z*z)

	lon, lat = perturb(name, d, lon, lat)
	return helioToGeo(lon, lat, r, d)
}

func planetElements(name string, d float64) elements {
	switch name {
	case "mercury":
		return elements{
			n: 48.3313 + 3.24587e-5*d,
			i: 7.0047 + 5.00e-8*d,
			w: 29.1241 + 1.01444e-5*d,
			a: 0.387098,
			e: 0.205635 + 5.59e-10*d,
			m: 168.6562 + 4.0923344368*d,
		}
	case "venus":
		return elements{
			n: 76.6799 + 2.46590e-5*d,
			i: 3.3946 + 2.75e-8*d,
			w: 54.8910 + 1.38374e-5*d,
			a: 0.723330,
			e: 0.006773 - 1.302e-9*d,
			m: 48.0052 + 1.6021302244*d,
		}
	case "mars":
		return elements{
			n: 49.5574 + 2.11081e-5*d,
			i: 1.8497 - 1.78e-8*d,
			w: 286.5016 + 2.92961e-5*d,
			a: 1.523688,
			e: 0.093405 + 2.516e-9*d,
			m: 18.6021 + 0.5240207766*d,
		}
	case "jupiter":
		return elements{
			n: 100.4542 + 2.76854e-5*d,
			i: 1.3030 - 1.557e-7*d,
			w: 273.8777 + 1.64505e-5*d,
			a: 5.20256,
			e: 0.048498 + 4.469e-9*d,
			m: 19.8950 + 0.0830853001*d,
		}
	case "saturn":
		return elements{
			n: 113.6634 + 2.38980e-5*d,
			i: 2.4886 - 1.081e-7*d,
			w: 339.3939 + 2.97661e-5*d,
			a: 9.55475,
			e: 0.055546 - 9.499e-9*d,
			m: 316.9670 + 0.0334442282*d,
		}
	case "uranus":
		return elements{
			n: 74.0005 + 1.3978e-5*d,
			i: 0.7733 + 1.9e-8*d,
			w: 96.6612 + 3.0565e-5*d,
			a: 19.18171 - 1.55e-8*d,
			e: 0.047318 + 7.45e-9*d,
			m: 142.5905 + 0.011725806*d,
		}
	case "neptune":
		return elements{
			n: 131.7806 + 3.0173e-5*d,
			i: 1.7700 - 2.55e-7*d,
			w: 272.8461 - 6.027e-6*d,
			a: 30.05826 + 3.313e-8*d,
			e: 0.008606 + 2.15e-9*d,
			m: 260.2471 + 0.005995147*d,
		}
	}
	return elements{}
}

// perturb applies the mutual perturbations of Jupiter, Saturn and Uranus to
// an ecliptic longitude and latitude in degrees. Other bodies pass through.
func perturb(name string, d, lonDeg, latDeg float64) (float64, float64) {
	switch name {
	case "jupiter", "saturn", "uranus":
	default:
		return lonDeg, latDeg
	}

	mj := 19.8950 + 0.0830853001*d  // Jupiter mean anomaly
	ms := 316.9670 + 0.0334442282*d // Saturn mean anomaly
	mu := 142.5905 + 0.011725806*d  // Uranus mean anomaly

	switch name {
	case "jupiter":
		lonDeg += -0.332*sind(2*mj-5*ms-67.6) -
			0.056*sind(2*mj-2*ms+21) +
			0.042*sind(3*mj-5*ms+21) -
			0.036*sind(mj-2*ms) +
			0.022*cosd(mj-ms) +
			0.023*sind(2*mj-3*ms+52) -
			0.016*sind(mj-5*ms-69)
	case "saturn":
		lonDeg += 0.812*sind(2*mj-5*ms-67.6) -
			0.229*cosd(2*mj-4*ms-2) +
			0.119*sind(mj-2*ms-3) +
			0.046*sind(2*mj-6*ms-69) +
			0.014*sind(mj-3*ms+32)
		latDeg += -0.020*cosd(2*mj-4*ms-2) +
			0.018*sind(2*mj-6*ms-49)
	case "uranus":
		lonDeg += 0.040*sind(ms-2*mu+6) +
			0.035*sind(ms-3*mu+33) -
			0.015*sind(mj-mu+20)
	}
	return lonDeg, latDeg
}

// plutoPosition evaluates the curve-fit series for Pluto, valid roughly
// 1900 to 2100, and translates it to the geocentre.
func plutoPosition(d float64) geocentric {
	s := 50.03 + 0.033459652*d
	p := 238.95 + 0.003968789*d

	lon := 238.9508 + 0.00400703*d -
		19.799*sind(p) + 19.848*cosd(p) +
		0.897*sind(2*p) - 4.956*cosd(2*p) +
		0.610*sind(3*p) + 1.211*cosd(3*p) -
		0.341*sind(4*p) - 0.190*cosd(4*p) +
		0.128*sind(5*p) - 0.034*cosd(5*p) -
		0.038*sind(6*p) + 0.031*cosd(6*p) +
		0.020*sind(s-p) - 0.010*cosd(s-p)

	lat := -3.9082 -
		5.453*sind(p) - 14.975*cosd(p) +
		0.695*sind(2*p) + 0.845*cosd(2*p) +
		0.256*sind(3*p) + 0.190*cosd(3*p) +
		0.046*sind(4*p) + 0.001*cosd(4*p) +
		0.005*sind(5*p) - 0.013*cosd(5*p) -
		0.009*sind(6*p) + 0.003*cosd(6*p) -
		0.002*sind(s-p) + 0.001*cosd(s-p)

	r := 40.72 +
		6.68*sind(p) + 6.90*cosd(p) -
		1.18*sind(2*p) - 0.03*cosd(2*p) +
		0.15*sind(3*p) - 0.14*cosd(3*p)

	return helioToGeo(lon, lat, r, d)
}

// helioToGeo translates a heliocentric ecliptic position (degrees, AU) to
// the geocentre and returns equatorial coordinates of date.
func helioToGeo(lonDeg, latDeg, r, d float64) geocentric {
	slon, sr := sunPosition(d)

	xg := r*cosd(lonDeg)*cosd(latDeg) + sr*cosd(slon)
	yg := r*sind(lonDeg)*cosd(latDeg) + sr*sind(slon)
	zg := r * sind(latDeg)

	glon := deg(math.Atan2(yg, xg))
	glat := deg(math.Atan2(zg, math.Hypot(xg, yg)))
	ra, dec := eclipticToEquatorial(glon, glat, d)
	return geocentric{raHours: ra, decDeg: dec}
}

// eclipticToEquatorial rotates ecliptic spherical coordinates of date into
// right ascension in hours and declination in degrees.
func eclipticToEquatorial(lonDeg, latDeg, d float64) (raHours, decDeg float64) {
	ecl := rad(23.4393 - 3.563e-7*d)
	lon := rad(lonDeg)
	lat := rad(latDeg)

	x := math.Cos(lon) * math.Cos(lat)
	y := math.Sin(lon) * math.Cos(lat)
	z := math.Sin(lat)

	ye := y*math.Cos(ecl) - z*math.Sin(ecl)
	ze := y*math.Sin(ecl) + z*math.Cos(ecl)

	ra := wrapDegrees(deg(math.Atan2(ye, x)))
	dec := deg(math.Asin(clamp(ze, -1, 1)))
	return ra / 15, dec
}
