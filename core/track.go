// Package core samples celestial trajectories across one local day and masks
// the discontinuities that would otherwise corrupt a rendered track.
package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/astropenguin/pazel/ephem"
	"github.com/astropenguin/pazel/internal/logging"
	"github.com/astropenguin/pazel/model"
)

// StepHours is the sampling cadence inside one local day.
const StepHours = 0.01

// samplesPerDay covers offsets 0h through 24h inclusive at StepHours cadence.
const samplesPerDay = 2401

// stepInterval is StepHours as a duration, exact at 36 s.
const stepInterval = 36 * time.Second

// Sampler walks one local day at fixed cadence and produces masked
// azimuth/elevation trajectories.
type Sampler struct {
	engine ephem.Engine
	log    logging.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Sampler) { s.log = l }
}

// NewSampler returns a Sampler backed by engine.
func NewSampler(engine ephem.Engine, opts ...Option) *Sampler {
	s := &Sampler{engine: engine, log: logging.Noop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample computes obj's trajectory across the local day given by date.
//
// The day's origin is civil midnight UTC of date shifted backward by the
// timezone offset, or, in sidereal mode, by the local sidereal time at that
// midnight so hour-angle zero lands on sample index zero. From the origin the
// observer clock steps forward in StepHours increments through a full day,
// endpoints included.
//
// Two masks run before the trajectory is returned: any sample whose azimuth
// moved more than 180 degrees from its raw predecessor is invalidated (the
// track crossed north and a renderer would draw a spurious vertical line),
// and any sample below the horizon is invalidated. Masked samples keep their
// Hours so the time axis survives for multi-object overlays.
func (s *Sampler) Sample(obj model.Object, loc model.Location, date time.Time, tz model.TimezoneSpec) (model.Trajectory, error) {
	obs := ephem.Observer{LatitudeDeg: loc.Latitude, LongitudeDeg: loc.Longitude}
	origin := s.origin(obs, date, tz)

	samples := make([]model.Sample, samplesPerDay)
	for i := range samples {
		t := origin.Add(time.Duration(i) * stepInterval)
		pos, err := s.engine.Position(obj.Body, obs, t)
		if err != nil {
			return model.Trajectory{}, fmt.Errorf("sample %s: %w", obj.Name, err)
		}
		samples[i] = model.Sample{
			Hours:     float64(i) * StepHours,
			Azimuth:   pos.AzimuthDeg,
			Elevation: pos.ElevationDeg,
			Valid:     true,
		}
	}

	maskWraparound(samples)
	maskHorizon(samples)

	return model.Trajectory{Object: obj, Samples: samples}, nil
}

// SampleAll computes one trajectory per object. A failing object is logged
// and skipped so it cannot spoil the rest of the plot.
func (s *Sampler) SampleAll(ctx context.Context, objects []model.Object, loc model.Location, date time.Time, tz model.TimezoneSpec) []model.Trajectory {
	trajectories := make([]model.Trajectory, 0, len(objects))
	for _, obj := range objects {
		tr, err := s.Sample(obj, loc, date, tz)
		if err != nil {
			s.log.Warn(ctx, "object skipped", logging.String("object", obj.Name), logging.Err(err))
			continue
		}
		trajectories = append(trajectories, tr)
	}
	return trajectories
}

// origin returns the instant of local hour zero for the sampled day.
func (s *Sampler) origin(obs ephem.Observer, date time.Time, tz model.TimezoneSpec) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	shift := tz.OffsetHours
	if tz.LST {
		shift = s.engine.Sidereal(obs, midnight)
	}
	return midnight.Add(-time.Duration(shift * float64(time.Hour)))
}

// maskWraparound invalidates every sample whose azimuth moved more than 180
// degrees from the raw previous sample. The comparison runs over raw
// neighbours, independent of any other mask.
func maskWraparound(samples []model.Sample) {
	for i := 1; i < len(samples); i++ {
		if math.Abs(samples[i].Azimuth-samples[i-1].Azimuth) > 180 {
			samples[i].Valid = false
		}
	}
}

// maskHorizon invalidates every sample below the horizon.
func maskHorizon(samples []model.Sample) {
	for i := range samples {
		if samples[i].Elevation < 0 {
			samples[i].Valid = false
		}
	}
}
