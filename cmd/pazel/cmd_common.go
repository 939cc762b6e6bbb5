package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/astropenguin/pazel/atlas"
	"github.com/astropenguin/pazel/catalog"
	"github.com/astropenguin/pazel/ephem"
	"github.com/astropenguin/pazel/geocode"
	"github.com/astropenguin/pazel/internal/logging"
	"github.com/astropenguin/pazel/model"
)

// session is everything a subcommand resolves before its real work: logger,
// location, timezone, object catalog and the position engine.
type session struct {
	log     logging.Logger
	dir     *atlas.Directory
	key     string
	loc     model.Location
	tz      model.TimezoneSpec
	objects []model.Object
	engine  ephem.Engine
	date    time.Time
}

// newSession resolves the shared command inputs. An empty dateArg means
// today; an empty tzArg means the site's own timezone.
func newSession(ctx context.Context, args []string, dateArg, tzArg string) (*session, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("a location query is required, e.g.: pazel show mitaka tokyo")
	}

	log := newLogger()

	date, err := parseDate(dateArg)
	if err != nil {
		return nil, err
	}

	locPath, err := resolvePath(flagLocations, "locations.json")
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv(geocode.APIKeyEnv)
	if apiKey == "" {
		log.Warn(ctx, "GOOGLE_MAPS_API_KEY is not set; only cached locations can resolve")
	}
	gc := geocode.NewClient(apiKey, geocode.WithLogger(log))

	dir, err := atlas.Open(locPath, gc, atlas.WithLogger(log))
	if err != nil {
		return nil, err
	}

	loc, err := dir.Resolve(ctx, args, date)
	if err != nil {
		return nil, err
	}

	tz := loc.Zone()
	if tzArg != "" {
		if tz, err = dir.ResolveTimezone(ctx, tzArg, date); err != nil {
			return nil, err
		}
	}

	objPath, err := resolvePath(flagObjects, "objects.toml")
	if err != nil {
		return nil, err
	}
	objects, err := catalog.Load(objPath, catalog.WithLogger(log))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no object catalog at %s; create one or pass --objects", objPath)
		}
		return nil, err
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("catalog %s defines no objects", objPath)
	}

	return &session{
		log:     log,
		dir:     dir,
		key:     atlas.Key(args),
		loc:     loc,
		tz:      tz,
		objects: objects,
		engine:  ephem.NewEngine(),
		date:    date,
	}, nil
}

// persist flushes the location directory, once, on the way out.
func (s *session) persist(ctx context.Context) {
	if err := s.dir.Persist(); err != nil {
		s.log.Error(ctx, "persist location directory failed", logging.Err(err))
	}
}

func newLogger() logging.Logger {
	level := flagLogLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	format := flagLogFormat
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	return logging.New(logging.Config{Level: level, Format: format})
}

// parseDate reads a YYYY-MM-DD argument; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q (want YYYY-MM-DD): %w", s, err)
	}
	return date, nil
}

// resolvePath prefers the flag value and falls back to the pazel config
// directory, creating the directory on first use.
func resolvePath(flagValue, name string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	dir := filepath.Join(base, "pazel")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// chartName builds the canonical chart file name for a resolved query.
func chartName(key string, date time.Time, ext string) string {
	return fmt.Sprintf("azel_%s_%s.%s", key, date.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}
