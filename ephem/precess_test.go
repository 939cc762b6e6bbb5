package ephem

import (
	"math"
	"testing"
)

func TestPrecessToDate_IdentityAtOwnEpoch(t *testing.T) {
	ra, dec := precessToDate(5.5, -12.25, 2451545.0, 2451545.0)
	if math.Abs(ra-5.5) > 1e-9 || math.Abs(dec+12.25) > 1e-9 {
		t.Fatalf("identity precession moved the point: ra %v, dec %v", ra, dec)
	}
}

func TestPrecessToDate_EquatorPointDrift(t *testing.T) {
	// Fifty Julian years of general precession move a point at the J2000
	// origin by about +2m34s in RA and +0.278 deg in declination.
	date := 2451545.0 + 50*365.25
	ra, dec := precessToDate(0, 0, 2451545.0, date)
	if math.Abs(ra-0.042714) > 0.001 {
		t.Errorf("RA after 50 years = %v h, want about 0.0427 h", ra)
	}
	if math.Abs(dec-0.278345) > 0.005 {
		t.Errorf("declination after 50 years = %v deg, want about 0.2783 deg", dec)
	}
}

func TestPrecessToDate_RoundTrip(t *testing.T) {
	b1950 := 2433282.4235
	ra0, dec0 := 2.530301, 89.264167 // Polaris, J2000

	ra1, dec1 := precessToDate(ra0, dec0, 2451545.0, b1950)
	ra2, dec2 := precessToDate(ra1, dec1, b1950, 2451545.0)

	if math.Abs(ra2-ra0) > 1e-4 {
		t.Errorf("round-trip RA = %v h, want %v h", ra2, ra0)
	}
	if math.Abs(dec2-dec0) > 1e-4 {
		t.Errorf("round-trip declination = %v deg, want %v deg", dec2, dec0)
	}
}
