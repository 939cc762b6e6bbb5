package ephem

import "math"

// precessToDate rotates a catalogued direction from its reference equinox to
// the equinox of date with the IAU 1976 precession angles. Input and output
// right ascension is in hours, declination in degrees.
func precessToDate(raHours, decDeg, epochJD, dateJD float64) (float64, float64) {
	bigT := (epochJD - 2451545.0) / 36525
	t := (dateJD - epochJD) / 36525

	// zeta, z and theta in arcseconds
	zeta := (2306.2181+1.39656*bigT-0.000139*bigT*bigT)*t +
		(0.30188-0.000344*bigT)*t*t + 0.017998*t*t*t
	z := (2306.2181+1.39656*bigT-0.000139*bigT*bigT)*t +
		(1.09468+0.000066*bigT)*t*t + 0.018203*t*t*t
	theta := (2004.3109-0.85330*bigT-0.000217*bigT*bigT)*t -
		(0.42665+0.000217*bigT)*t*t - 0.041833*t*t*t

	zetaR := rad(zeta / 3600)
	zR := rad(z / 3600)
	thetaR := rad(theta / 3600)

	ra := rad(raHours * 15)
	dec := rad(decDeg)

	a := math.Cos(dec) * math.Sin(ra+zetaR)
	b := math.Cos(thetaR)*math.Cos(dec)*math.Cos(ra+zetaR) - math.Sin(thetaR)*math.Sin(dec)
	c := math.Sin(thetaR)*math.Cos(dec)*math.Cos(ra+zetaR) + math.Cos(thetaR)*math.Sin(dec)

	raOut := math.Atan2(a, b) + zR
	decOut := math.Asin(clamp(c, -1, 1))
	return wrapHours(deg(raOut) / 15), deg(decOut)
}
