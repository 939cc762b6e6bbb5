// Package monitor drives the live view: a fresh sky solution every second,
// rendered as a full-screen table, with threshold alerts on flagged objects.
package monitor

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/astropenguin/pazel/ephem"
	"github.com/astropenguin/pazel/internal/logging"
	"github.com/astropenguin/pazel/internal/observability"
	"github.com/astropenguin/pazel/model"
)

// Window is the closed-below, open-above elevation band an alert-flagged
// object is expected to stay inside.
type Window struct {
	Lower float64
	Upper float64
}

// DefaultWindow spans the whole sky above the horizon, so no object in view
// ever alerts.
var DefaultWindow = Window{Lower: 0, Upper: 90}

// Outside reports whether el falls outside the window.
func (w Window) Outside(el float64) bool {
	return el < w.Lower || el >= w.Upper
}

// ParseWindow reads the "lower:upper" flag form. An empty string means the
// default window.
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWindow, nil
	}
	lower, upper, ok := strings.Cut(s, ":")
	if !ok {
		return Window{}, fmt.Errorf("parse tolerance %q: want lower:upper", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lower), 64)
	if err != nil {
		return Window{}, fmt.Errorf("parse tolerance %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(upper), 64)
	if err != nil {
		return Window{}, fmt.Errorf("parse tolerance %q: %w", s, err)
	}
	if lo > hi {
		return Window{}, fmt.Errorf("parse tolerance %q: lower exceeds upper", s)
	}
	return Window{Lower: lo, Upper: hi}, nil
}

// Row is one object's state at a tick.
type Row struct {
	Name      string
	Azimuth   float64
	Elevation float64
	RAHours   float64
	DecDeg    float64
	// Alert marks the object as threshold-monitored.
	Alert bool
	// Active is true while the alert condition holds. It is recomputed from
	// scratch every tick; there is no hysteresis, so a hovering object blinks
	// and rings on and off as it crosses the boundary.
	Active bool
	// Err carries this object's computation failure for the tick. The other
	// rows are unaffected.
	Err error
}

// Frame is everything one tick paints.
type Frame struct {
	Location model.Location
	Timezone model.TimezoneSpec
	// Local is the wall clock in the requested timezone. When the timezone is
	// sidereal the renderer shows Sidereal instead.
	Local time.Time
	UTC   time.Time
	// Sidereal is the local sidereal time in hours.
	Sidereal float64
	Rows     []Row
	// Bell asks the renderer to ring once for this frame.
	Bell bool
}

// Renderer paints frames. Implemented by Screen and by test fakes.
type Renderer interface {
	Enter() error
	Render(Frame) error
	Restore() error
}

// Config carries the fixed inputs of a monitoring session. The object set is
// read-only for the session's lifetime.
type Config struct {
	Location model.Location
	Timezone model.TimezoneSpec
	Objects  []model.Object
	Window   Window
	// Bell enables the audible alert.
	Bell bool
	// Interval defaults to one second.
	Interval time.Duration
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// WithMetrics attaches the Prometheus collector.
func WithMetrics(c *observability.MonitorCollector) Option {
	return func(m *Monitor) { m.metrics = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// Monitor recomputes and repaints the sky at a fixed cadence.
type Monitor struct {
	cfg      Config
	engine   ephem.Engine
	renderer Renderer
	log      logging.Logger
	metrics  *observability.MonitorCollector
	now      func() time.Time
}

// New returns a Monitor over engine that paints to renderer.
func New(cfg Config, engine ephem.Engine, renderer Renderer, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:      cfg,
		engine:   engine,
		renderer: renderer,
		log:      logging.Noop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run paints frames at the configured cadence until ctx is cancelled.
// Cancellation is the only non-error exit, and the screen is restored on
// every path out.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.renderer.Enter(); err != nil {
		return fmt.Errorf("monitor: enter screen: %w", err)
	}
	defer m.renderer.Restore()

	m.metrics.SetTrackedObjects(len(m.cfg.Objects))

	interval := m.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := m.tick(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (m *Monitor) tick(ctx context.Context) error {
	started := m.now()
	frame := m.Snapshot(ctx, started)
	if err := m.renderer.Render(frame); err != nil {
		return fmt.Errorf("monitor: render: %w", err)
	}
	m.metrics.ObserveTick(m.now().Sub(started).Seconds(), countActive(frame.Rows))
	return nil
}

// Snapshot computes one frame at the given instant without rendering it.
// A failing object fills only its own row.
func (m *Monitor) Snapshot(ctx context.Context, now time.Time) Frame {
	obs := ephem.Observer{
		LatitudeDeg:  m.cfg.Location.Latitude,
		LongitudeDeg: m.cfg.Location.Longitude,
	}
	frame := Frame{
		Location: m.cfg.Location,
		Timezone: m.cfg.Timezone,
		Local:    localClock(now, m.cfg.Timezone),
		UTC:      now.UTC(),
		Sidereal: m.engine.Sidereal(obs, now),
	}

	for _, obj := range m.cfg.Objects {
		row := Row{Name: obj.Name, Alert: obj.Alert}
		pos, err := m.engine.Position(obj.Body, obs, now)
		if err != nil {
			row.Err = err
			m.log.Warn(ctx, "object computation failed",
				logging.String("object", obj.Name), logging.Err(err))
			m.metrics.ObserveComputeError(obj.Name)
		} else {
			row.Azimuth = pos.AzimuthDeg
			row.Elevation = pos.ElevationDeg
			row.RAHours = pos.RAHours
			row.DecDeg = pos.DecDeg
			row.Active = obj.Alert && m.cfg.Window.Outside(pos.ElevationDeg)
		}
		frame.Rows = append(frame.Rows, row)
	}

	frame.Bell = m.cfg.Bell && countActive(frame.Rows) > 0
	return frame
}

func countActive(rows []Row) int {
	n := 0
	for _, row := range rows {
		if row.Active {
			n++
		}
	}
	return n
}

func localClock(now time.Time, tz model.TimezoneSpec) time.Time {
	if tz.LST {
		return now.UTC()
	}
	offset := int(math.Round(tz.OffsetHours * 3600))
	return now.In(time.FixedZone(tz.Name, offset))
}
