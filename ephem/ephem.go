// Package ephem computes apparent sky positions: where on the local sky a
// solar-system body, a catalogued fixed direction or an Earth satellite
// stands for a ground observer at a given instant.
package ephem

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/astropenguin/pazel/model"
)

// ErrUnknownBody reports a catalog name the engine has no theory for.
var ErrUnknownBody = errors.New("unknown body")

// Engine computes apparent positions for an observer.
type Engine interface {
	// Position returns the topocentric position of body at t.
	Position(body model.Body, obs Observer, t time.Time) (Topocentric, error)
	// Sidereal returns local mean sidereal time at t in hours.
	Sidereal(obs Observer, t time.Time) float64
}

// NewEngine returns the built-in engine: low-precision planetary theory for
// named solar-system bodies, IAU 1976 precession for fixed directions and
// SGP4 propagation for satellites.
func NewEngine() Engine {
	return &engine{sats: make(map[string]satellite.Satellite)}
}

type engine struct {
	mu   sync.Mutex
	sats map[string]satellite.Satellite
}

func (e *engine) Sidereal(obs Observer, t time.Time) float64 {
	return LocalSiderealHours(t, obs.LongitudeDeg)
}

func (e *engine) Position(body model.Body, obs Observer, t time.Time) (Topocentric, error) {
	switch body.Kind {
	case model.BodyKindCatalog:
		return e.catalog(body.Catalog, obs, t)
	case model.BodyKindFixed:
		return e.fixed(body, obs, t), nil
	case model.BodyKindSatellite:
		return e.satellite(body, obs, t)
	}
	return Topocentric{}, fmt.Errorf("body kind %d: %w", body.Kind, ErrUnknownBody)
}

func (e *engine) catalog(name string, obs Observer, t time.Time) (Topocentric, error) {
	geo, ok := catalogPosition(strings.ToLower(strings.TrimSpace(name)), dayNumber(t))
	if !ok {
		return Topocentric{}, fmt.Errorf("%q: %w", name, ErrUnknownBody)
	}

	az, el := horizontal(geo.raHours, geo.decDeg, obs, t)
	if geo.distanceER > 0 {
		// diurnal parallax pushes a nearby body down towards the horizon
		par := deg(math.Asin(clamp(1/geo.distanceER, -1, 1)))
		el -= par * cosd(el)
	}
	return Topocentric{AzimuthDeg: az, ElevationDeg: el, RAHours: geo.raHours, DecDeg: geo.decDeg}, nil
}

func (e *engine) fixed(body model.Body, obs Observer, t time.Time) Topocentric {
	epoch := body.Epoch
	if epoch == 0 {
		epoch = model.EpochJ2000
	}
	ra, dec := precessToDate(body.RAHours, body.DecDegrees, float64(epoch), JulianDay(t))
	az, el := horizontal(ra, dec, obs, t)
	return Topocentric{AzimuthDeg: az, ElevationDeg: el, RAHours: ra, DecDeg: dec}
}

func (e *engine) satellite(body model.Body, obs Observer, t time.Time) (Topocentric, error) {
	sat, err := e.satFor(body)
	if err != nil {
		return Topocentric{}, err
	}
	return satellitePosition(sat, obs, t)
}

// satFor caches parsed element sets: SGP4 initialisation costs far more than
// a propagation step and a sampled day asks thousands of times.
func (e *engine) satFor(body model.Body) (satellite.Satellite, error) {
	line1 := strings.TrimSpace(body.TLE1)
	line2 := strings.TrimSpace(body.TLE2)
	if line1 == "" || line2 == "" {
		return satellite.Satellite{}, fmt.Errorf("satellite body: missing TLE lines")
	}

	key := line1 + "\n" + line2
	e.mu.Lock()
	defer e.mu.Unlock()
	if sat, ok := e.sats[key]; ok {
		return sat, nil
	}
	sat, err := parseTLE(line1, line2)
	if err != nil {
		return satellite.Satellite{}, err
	}
	e.sats[key] = sat
	return sat, nil
}

// parseTLE wraps TLEToSat, which panics on malformed element lines, into an
// error return so one bad entry cannot take down a whole run.
func parseTLE(line1, line2 string) (sat satellite.Satellite, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse TLE: %v", r)
		}
	}()
	sat = satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return sat, nil
}
