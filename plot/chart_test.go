package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astropenguin/pazel/model"
)

func chartFixture() Chart {
	samples := []model.Sample{
		{Hours: 0.00, Azimuth: 100, Elevation: 10, Valid: true},
		{Hours: 0.01, Azimuth: 101, Elevation: 12, Valid: true},
		{Hours: 0.02, Azimuth: 102, Elevation: -1, Valid: false},
		{Hours: 0.03, Azimuth: 103, Elevation: 15, Valid: true},
	}
	return Chart{
		Location: model.Location{Name: "Mitaka"},
		Date:     time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		Timezone: model.TimezoneSpec{Name: "Asia/Tokyo", OffsetHours: 9},
		Trajectories: []model.Trajectory{
			{Object: model.Object{Name: "Sun"}, Samples: samples},
		},
	}
}

func TestVisibleRuns_SplitsAtGaps(t *testing.T) {
	samples := []model.Sample{
		{Hours: 0, Elevation: 5, Valid: true},
		{Hours: 1, Elevation: 6, Valid: true},
		{Hours: 2, Elevation: -3, Valid: false},
		{Hours: 3, Elevation: 4, Valid: true},
	}
	runs := visibleRuns(samples, func(s model.Sample) float64 { return s.Elevation })
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if len(runs[0]) != 2 || len(runs[1]) != 1 {
		t.Fatalf("run lengths = %d, %d, want 2, 1", len(runs[0]), len(runs[1]))
	}
	if runs[0][1].X != 1 || runs[0][1].Y != 6 {
		t.Errorf("runs[0][1] = %+v, want {1 6}", runs[0][1])
	}
	if runs[1][0].X != 3 || runs[1][0].Y != 4 {
		t.Errorf("runs[1][0] = %+v, want {3 4}", runs[1][0])
	}
}

func TestVisibleRuns_AllMasked(t *testing.T) {
	samples := []model.Sample{
		{Hours: 0, Valid: false},
		{Hours: 1, Valid: false},
	}
	if runs := visibleRuns(samples, func(s model.Sample) float64 { return s.Elevation }); len(runs) != 0 {
		t.Fatalf("len(runs) = %d, want 0 for a fully masked trajectory", len(runs))
	}
}

func TestChartRender_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := chartFixture().Render(&buf, "png"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output does not start with the PNG signature (%d bytes)", buf.Len())
	}
}

func TestChartRender_RejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := chartFixture().Render(&buf, "hpgl"); err == nil {
		t.Fatal("Render accepted an unknown format")
	}
}

func TestChartRender_FullyMaskedObject(t *testing.T) {
	chart := chartFixture()
	chart.Trajectories = append(chart.Trajectories, model.Trajectory{
		Object: model.Object{Name: "Canopus"},
		Samples: []model.Sample{
			{Hours: 0, Azimuth: 10, Elevation: -40, Valid: false},
			{Hours: 0.01, Azimuth: 11, Elevation: -41, Valid: false},
		},
	})

	var buf bytes.Buffer
	if err := chart.Render(&buf, "png"); err != nil {
		t.Fatalf("Render with a never-rising object: %v", err)
	}
}

func TestChartSave_DerivesFormatFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "azel_mitaka_2026-08-25.svg")
	if err := chartFixture().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("saved file does not look like SVG (%d bytes)", len(data))
	}
}

func TestHourTicks_EveryThreeHours(t *testing.T) {
	ticks := hourTicks{}.Ticks(0, 24)
	if len(ticks) != 9 {
		t.Fatalf("len(ticks) = %d, want 9", len(ticks))
	}
	if ticks[0].Value != 0 || ticks[8].Value != 24 {
		t.Errorf("tick range %v..%v, want 0..24", ticks[0].Value, ticks[8].Value)
	}
	if ticks[1].Label != "3" {
		t.Errorf("ticks[1].Label = %q, want %q", ticks[1].Label, "3")
	}
}
