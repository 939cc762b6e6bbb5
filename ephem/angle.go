package ephem

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseHours parses a right-ascension style angle: plain decimal hours
// ("5.5755") or a sexagesimal "H:M:S" string ("5:34:32"). Minutes and seconds
// may be fractional and trailing components may be omitted.
func ParseHours(s string) (float64, error) {
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("parse hours %q: %w", s, err)
		}
		return v, nil
	}
	v, err := parseSexagesimal(s)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", s, err)
	}
	return v, nil
}

// ParseDegrees parses a declination style angle: plain decimal degrees
// ("-5.391") or a sexagesimal "D:M:S" string ("-5:23:28"). A leading sign
// applies to the whole angle.
func ParseDegrees(s string) (float64, error) {
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("parse degrees %q: %w", s, err)
		}
		return v, nil
	}
	v, err := parseSexagesimal(s)
	if err != nil {
		return 0, fmt.Errorf("parse degrees %q: %w", s, err)
	}
	return v, nil
}

func parseSexagesimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty angle")
	}
	sign := 1.0
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many components")
	}
	total := 0.0
	scale := 1.0
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			return 0, fmt.Errorf("sign allowed only on the first component")
		}
		total += v / scale
		scale *= 60
	}
	return sign * total, nil
}

// FormatHMS renders decimal hours as "H:MM:SS", wrapped to [0, 24).
func FormatHMS(hours float64) string {
	total := int(math.Round(wrapHours(hours) * 3600))
	total %= 24 * 3600
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// FormatDMS renders decimal degrees as "D:MM:SS" with an explicit sign for
// negative angles.
func FormatDMS(degrees float64) string {
	sign := ""
	if degrees < 0 {
		sign = "-"
		degrees = -degrees
	}
	total := int(math.Round(degrees * 3600))
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, total%3600/60, total%60)
}

// wrapDegrees normalises an angle to [0, 360).
func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// wrapHours normalises an hour angle to [0, 24).
func wrapHours(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}

func rad(degrees float64) float64 { return degrees * math.Pi / 180 }
func deg(radians float64) float64 { return radians * 180 / math.Pi }

// sind and cosd evaluate trigonometry in degrees; the perturbation series
// below are all written that way.
func sind(degrees float64) float64 { return math.Sin(rad(degrees)) }
func cosd(degrees float64) float64 { return math.Cos(rad(degrees)) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
