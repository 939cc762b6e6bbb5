// Package plot renders sampled trajectories as a stacked two-panel chart:
// elevation above azimuth, sharing the local-day hour axis.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/astropenguin/pazel/model"
)

const (
	chartWidth  = 18 * vg.Centimeter
	chartHeight = 14 * vg.Centimeter
)

// DefaultFormat is used when a target path carries no extension.
const DefaultFormat = "pdf"

// Chart describes one rendered figure.
type Chart struct {
	Location     model.Location
	Date         time.Time
	Timezone     model.TimezoneSpec
	Trajectories []model.Trajectory
}

// Render draws the chart and writes it to w in the given format ("png",
// "pdf", "svg", ...; anything the vg canvas writer takes).
func (c Chart) Render(w io.Writer, format string) error {
	elPanel := newPanel("Elevation [deg]", 0, 90)
	azPanel := newPanel("Azimuth [deg]", 0, 360)
	elPanel.Title.Text = fmt.Sprintf("%s on %s", c.Location.Name, c.Date.Format("2006-01-02"))
	elPanel.Legend.Top = true
	azPanel.X.Label.Text = fmt.Sprintf("%s [hour]", c.Timezone.Name)

	for i, tr := range c.Trajectories {
		col := plotutil.Color(i)

		var thumb *plotter.Line
		for _, run := range visibleRuns(tr.Samples, func(s model.Sample) float64 { return s.Elevation }) {
			line, err := newLine(run, col)
			if err != nil {
				return fmt.Errorf("render chart: %s: %w", tr.Object.Name, err)
			}
			elPanel.Add(line)
			if thumb == nil {
				thumb = line
			}
		}
		for _, run := range visibleRuns(tr.Samples, func(s model.Sample) float64 { return s.Azimuth }) {
			line, err := newLine(run, col)
			if err != nil {
				return fmt.Errorf("render chart: %s: %w", tr.Object.Name, err)
			}
			azPanel.Add(line)
		}

		// A never-rising object still earns its legend entry, just with no
		// line to point at.
		if thumb != nil {
			elPanel.Legend.Add(tr.Object.Name, thumb)
		} else {
			elPanel.Legend.Add(tr.Object.Name)
		}
	}

	canvas, err := draw.NewFormattedCanvas(chartWidth, chartHeight, format)
	if err != nil {
		return fmt.Errorf("render chart: format %q: %w", format, err)
	}
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 3}
	panels := gplot.Align([][]*gplot.Plot{{elPanel}, {azPanel}}, tiles, draw.New(canvas))
	elPanel.Draw(panels[0][0])
	azPanel.Draw(panels[1][0])

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("render chart: write: %w", err)
	}
	return nil
}

// Save renders to path, the format chosen by the file extension.
func (c Chart) Save(path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = DefaultFormat
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	if err := c.Render(f, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

func newPanel(yLabel string, yMin, yMax float64) *gplot.Plot {
	p := gplot.New()
	p.X.Min, p.X.Max = 0, 24
	p.X.Tick.Marker = hourTicks{}
	p.Y.Min, p.Y.Max = yMin, yMax
	p.Y.Label.Text = yLabel
	return p
}

func newLine(run plotter.XYs, col color.Color) (*plotter.Line, error) {
	line, err := plotter.NewLine(run)
	if err != nil {
		return nil, err
	}
	line.Color = col
	line.Width = vg.Points(1.5)
	return line, nil
}

// visibleRuns splits a trajectory into its contiguous visible stretches so a
// masked gap breaks the line instead of bridging it.
func visibleRuns(samples []model.Sample, value func(model.Sample) float64) []plotter.XYs {
	var runs []plotter.XYs
	var run plotter.XYs
	for _, smp := range samples {
		if !smp.Valid {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		run = append(run, plotter.XY{X: smp.Hours, Y: value(smp)})
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

// hourTicks marks every third hour across the shared day axis.
type hourTicks struct{}

func (hourTicks) Ticks(min, max float64) []gplot.Tick {
	var ticks []gplot.Tick
	for h := 0; h <= 24; h += 3 {
		ticks = append(ticks, gplot.Tick{Value: float64(h), Label: strconv.Itoa(h)})
	}
	return ticks
}
