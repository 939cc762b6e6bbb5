package catalog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astropenguin/pazel/model"
)

func within(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestParse_CatalogBodiesKeepFileOrder(t *testing.T) {
	src := `
Moon = "moon"
Sun  = "sun"

[Deneb]
ra  = "20:41:26"
dec = "45:16:49"
`
	objects, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(objects) != 3 {
		t.Fatalf("len(objects) = %d, want 3", len(objects))
	}

	wantNames := []string{"Moon", "Sun", "Deneb"}
	for i, want := range wantNames {
		if objects[i].Name != want {
			t.Errorf("objects[%d].Name = %q, want %q (file order)", i, objects[i].Name, want)
		}
	}
	if objects[0].Body.Kind != model.BodyKindCatalog || objects[0].Body.Catalog != "moon" {
		t.Errorf("Moon parsed as %+v, want a catalog reference", objects[0].Body)
	}
	if objects[2].Body.Kind != model.BodyKindFixed {
		t.Errorf("Deneb parsed as %+v, want a fixed body", objects[2].Body)
	}
}

func TestParse_FixedBodySexagesimal(t *testing.T) {
	src := `
[M42]
ra  = "5:35:17"
dec = "-5:23:28"
`
	objects, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := objects[0].Body
	if !within(body.RAHours, 5.5880556, 1e-6) {
		t.Errorf("RAHours = %v, want 5.5880556", body.RAHours)
	}
	if !within(body.DecDegrees, -5.3911111, 1e-6) {
		t.Errorf("DecDegrees = %v, want -5.3911111", body.DecDegrees)
	}
	if body.Epoch != model.EpochJ2000 {
		t.Errorf("Epoch = %v, want the J2000 default", body.Epoch)
	}
}

func TestParse_AlertMarkerAndEpoch(t *testing.T) {
	src := `
["!Polaris"]
ra    = 2.530301
dec   = 89.264167
epoch = "B1950"
`
	objects, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	obj := objects[0]
	if obj.Name != "!Polaris" {
		t.Errorf("Name = %q, want the marker retained", obj.Name)
	}
	if !obj.Alert {
		t.Error("Alert = false, want true for a '!' key")
	}
	if obj.Body.Epoch != model.EpochB1950 {
		t.Errorf("Epoch = %v, want B1950", obj.Body.Epoch)
	}
}

func TestParse_UnknownEpochSilentlyDefaultsJ2000(t *testing.T) {
	src := `
[Vega]
ra    = 18.61565
dec   = 38.78369
epoch = "J1991.25"
`
	objects, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if objects[0].Body.Epoch != model.EpochJ2000 {
		t.Errorf("Epoch = %v, want the silent J2000 fallback", objects[0].Body.Epoch)
	}
}

func TestParse_SkipsCommentedEntries(t *testing.T) {
	src := `
"#Vega" = "vega"
Sun     = "sun"
`
	objects, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(objects) != 1 || objects[0].Name != "Sun" {
		t.Fatalf("objects = %+v, want only Sun", objects)
	}
}

func TestParse_Satellite(t *testing.T) {
	src := `
[ISS]
tle1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
tle2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
`
	objects, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := objects[0].Body
	if body.Kind != model.BodyKindSatellite {
		t.Fatalf("Kind = %v, want satellite", body.Kind)
	}
	if !strings.HasPrefix(body.TLE1, "1 25544U") || !strings.HasPrefix(body.TLE2, "2 25544") {
		t.Errorf("element lines not carried through: %q / %q", body.TLE1, body.TLE2)
	}
}

func TestParse_SatelliteNeedsBothLines(t *testing.T) {
	src := `
[ISS]
tle1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
`
	if _, err := Parse(src); err == nil {
		t.Fatal("Parse accepted a satellite with one element line")
	}
}

func TestParse_FixedBodyNeedsRAAndDec(t *testing.T) {
	src := `
[M42]
ra = "5:35:17"
`
	if _, err := Parse(src); err == nil {
		t.Fatal("Parse accepted a fixed body without dec")
	}
}

func TestParse_RejectsDecOutOfRange(t *testing.T) {
	src := `
[Bad]
ra  = 1.0
dec = 95.0
`
	if _, err := Parse(src); err == nil {
		t.Fatal("Parse accepted dec outside [-90, 90]")
	}
}

func TestParse_RejectsNonBodyValues(t *testing.T) {
	src := `Sun = 42`
	if _, err := Parse(src); err == nil {
		t.Fatal("Parse accepted an integer entry")
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objects.toml")
	if err := os.WriteFile(path, []byte(`Sun = "sun"`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	objects, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(objects) != 1 || objects[0].Body.Catalog != "sun" {
		t.Fatalf("objects = %+v", objects)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("Load of a missing file should fail")
	}
}
