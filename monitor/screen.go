package monitor

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/astropenguin/pazel/ephem"
)

// ANSI control sequences. The screen runs on the terminal's alternate buffer
// so the shell scrollback survives a monitoring session.
const (
	enterAltScreen = "\x1b[?1049h"
	leaveAltScreen = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
	clearScreen    = "\x1b[H\x1b[2J"
	blinkOn        = "\x1b[5m"
	styleReset     = "\x1b[0m"
	bell           = "\a"
)

const clockLayout = "2006-01-02 15:04:05"

// Screen is a full-redraw ANSI terminal renderer. Every frame repaints the
// whole table; at one frame per second there is nothing to gain from
// diffing.
type Screen struct {
	w io.Writer
}

// NewScreen returns a Screen writing to w, or to stdout when w is nil.
func NewScreen(w io.Writer) *Screen {
	if w == nil {
		w = os.Stdout
	}
	return &Screen{w: w}
}

// Enter switches to the alternate screen and hides the cursor.
func (s *Screen) Enter() error {
	_, err := io.WriteString(s.w, enterAltScreen+hideCursor+clearScreen)
	return err
}

// Restore brings the normal terminal state back. Safe to call after a failed
// Enter.
func (s *Screen) Restore() error {
	_, err := io.WriteString(s.w, styleReset+showCursor+leaveAltScreen)
	return err
}

// Render repaints the frame. The frame is assembled off-screen and written in
// one call to keep tearing down.
func (s *Screen) Render(f Frame) error {
	var buf bytes.Buffer
	buf.WriteString(clearScreen)

	fmt.Fprintf(&buf, " %s  (%s)\n", f.Location.Name, coordLabel(f.Location.Latitude, f.Location.Longitude))
	buf.WriteByte('\n')
	writeClocks(&buf, f)
	buf.WriteByte('\n')

	fmt.Fprintf(&buf, " %-16s  %9s  %9s  %-11s  %-11s\n", "Object", "Azimuth", "Elevation", "RA", "Dec")
	for _, row := range f.Rows {
		writeRow(&buf, row)
	}

	if f.Bell {
		buf.WriteString(bell)
	}

	_, err := s.w.Write(buf.Bytes())
	return err
}

func writeClocks(buf *bytes.Buffer, f Frame) {
	if f.Timezone.LST {
		fmt.Fprintf(buf, " %-6s %s\n", "Local", ephem.FormatHMS(f.Sidereal)+"  (sidereal)")
	} else {
		fmt.Fprintf(buf, " %-6s %s  %s\n", "Local", f.Local.Format(clockLayout), f.Timezone.Name)
	}
	fmt.Fprintf(buf, " %-6s %s\n", "UTC", f.UTC.Format(clockLayout))
	fmt.Fprintf(buf, " %-6s %s\n", "LST", ephem.FormatHMS(f.Sidereal))
}

func writeRow(buf *bytes.Buffer, row Row) {
	if row.Err != nil {
		fmt.Fprintf(buf, " %-16s  unavailable: %v\n", row.Name, row.Err)
		return
	}

	line := fmt.Sprintf(" %-16s  %9.3f  %9.3f  %-11s  %-11s",
		row.Name, row.Azimuth, row.Elevation,
		ephem.FormatHMS(row.RAHours), ephem.FormatDMS(row.DecDeg))
	if row.Active {
		line = blinkOn + line + "  ALERT" + styleReset
	}
	buf.WriteString(line + "\n")
}

func coordLabel(lat, lng float64) string {
	ns := "N"
	if lat < 0 {
		ns, lat = "S", -lat
	}
	ew := "E"
	if lng < 0 {
		ew, lng = "W", -lng
	}
	return fmt.Sprintf("%.4f%s, %.4f%s", lat, ns, lng, ew)
}
