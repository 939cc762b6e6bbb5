// Package catalog loads the observing list: a TOML file mapping display
// names to body definitions. A string value names a solar-system body the
// position engine computes itself; a table value defines either a fixed
// equatorial direction or an Earth satellite:
//
//	Sun  = "sun"
//	Mars = "mars"
//
//	[M42]
//	ra  = "5:35:17"
//	dec = "-5:23:28"
//
//	["!Polaris"]
//	ra    = 2.530301
//	dec   = 89.264167
//	epoch = "J2000"
//
//	[ISS]
//	tle1 = "1 25544U ..."
//	tle2 = "2 25544 ..."
//
// Keys starting with '#' are skipped. Keys starting with '!' mark the object
// for live-monitor alerts; the marker stays in the display name.
package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/astropenguin/pazel/ephem"
	"github.com/astropenguin/pazel/internal/logging"
	"github.com/astropenguin/pazel/model"
)

// Option configures catalog loading.
type Option func(*loader)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(ld *loader) { ld.log = l }
}

type loader struct {
	log logging.Logger
}

// Load reads and parses the catalog file at path.
func Load(path string, opts ...Option) ([]model.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	objects, err := Parse(string(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return objects, nil
}

// Parse parses TOML catalog source. Objects come back in file order so plots
// and monitor tables are stable across runs.
func Parse(src string, opts ...Option) ([]model.Object, error) {
	ld := loader{log: logging.Noop()}
	for _, opt := range opts {
		opt(&ld)
	}

	var raw map[string]toml.Primitive
	md, err := toml.Decode(src, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var objects []model.Object
	for _, key := range md.Keys() {
		// Keys() also lists the fields inside each table; only the
		// top-level entries are objects.
		if len(key) != 1 {
			continue
		}
		name := key[0]
		if strings.HasPrefix(name, "#") {
			continue
		}

		obj := model.Object{
			Name:  name,
			Alert: strings.HasPrefix(name, "!"),
		}

		switch typ := md.Type(name); typ {
		case "String":
			var catalogName string
			if err := md.PrimitiveDecode(raw[name], &catalogName); err != nil {
				return nil, fmt.Errorf("parse catalog: entry %q: %w", name, err)
			}
			obj.Body = model.Body{Kind: model.BodyKindCatalog, Catalog: catalogName}
		case "Hash":
			body, err := ld.decodeBody(md, raw[name], name)
			if err != nil {
				return nil, fmt.Errorf("parse catalog: entry %q: %w", name, err)
			}
			obj.Body = body
		default:
			return nil, fmt.Errorf("parse catalog: entry %q must be a body name or a table, not %s", name, typ)
		}

		objects = append(objects, obj)
	}
	return objects, nil
}

// bodyTOML is the raw shape of a table entry. ra and dec stay untyped here
// because both floats and sexagesimal strings are accepted.
type bodyTOML struct {
	RA    any    `toml:"ra"`
	Dec   any    `toml:"dec"`
	Epoch string `toml:"epoch"`
	TLE1  string `toml:"tle1"`
	TLE2  string `toml:"tle2"`
}

func (ld loader) decodeBody(md toml.MetaData, prim toml.Primitive, name string) (model.Body, error) {
	var bt bodyTOML
	if err := md.PrimitiveDecode(prim, &bt); err != nil {
		return model.Body{}, err
	}

	if bt.TLE1 != "" || bt.TLE2 != "" {
		if bt.TLE1 == "" || bt.TLE2 == "" {
			return model.Body{}, fmt.Errorf("a satellite needs both tle1 and tle2")
		}
		return model.Body{
			Kind: model.BodyKindSatellite,
			TLE1: strings.TrimSpace(bt.TLE1),
			TLE2: strings.TrimSpace(bt.TLE2),
		}, nil
	}

	if bt.RA == nil || bt.Dec == nil {
		return model.Body{}, fmt.Errorf("a fixed object needs both ra and dec")
	}
	ra, err := angleValue(bt.RA, ephem.ParseHours)
	if err != nil {
		return model.Body{}, fmt.Errorf("ra: %w", err)
	}
	dec, err := angleValue(bt.Dec, ephem.ParseDegrees)
	if err != nil {
		return model.Body{}, fmt.Errorf("dec: %w", err)
	}
	if dec < -90 || dec > 90 {
		return model.Body{}, fmt.Errorf("dec %v outside [-90, 90]", dec)
	}

	return model.Body{
		Kind:       model.BodyKindFixed,
		RAHours:    ra,
		DecDegrees: dec,
		Epoch:      ld.epochFromString(bt.Epoch, name),
	}, nil
}

// angleValue accepts the natural TOML types an angle may arrive as.
func angleValue(v any, parse func(string) (float64, error)) (float64, error) {
	switch t := v.(type) {
	case string:
		return parse(t)
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

// epochFromString maps the catalog's epoch label to a reference equinox.
//
// Tolerant: empty or unrecognised labels mean J2000, which is what nearly
// every modern catalog quotes anyway.
func (ld loader) epochFromString(s, name string) model.Epoch {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "J2000", "J2000.0":
		return model.EpochJ2000
	case "B1950", "B1950.0":
		return model.EpochB1950
	case "B1900", "B1900.0":
		return model.EpochB1900
	default:
		ld.log.Debug(context.Background(), "unrecognised epoch, assuming J2000",
			logging.String("object", name), logging.String("epoch", s))
		return model.EpochJ2000
	}
}
