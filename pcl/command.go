package pcl

import (
	"fmt"
	"strconv"
)

// Esc is the escape character that starts every PCL command.
const Esc = 0x1b

// Point is a position in device units. Coordinates are not checked against
// the page size.
type Point struct {
	X uint32 `toml:"x"`
	Y uint32 `toml:"y"`
}

// escape builds ESC<prefix><value><cmd>, the parameterized PCL form.
func escape(prefix string, value uint64, cmd byte) []byte {
	buf := make([]byte, 0, len(prefix)+22)
	buf = append(buf, Esc)
	buf = append(buf, prefix...)
	buf = strconv.AppendUint(buf, value, 10)

	return append(buf, cmd)
}

func literal(s string) []byte {
	return []byte(s)
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

// JobName starts a PJL job named title.
func JobName(title string) []byte {
	return fmt.Appendf(nil, "\x1b%%-12345X@PJL JOB NAME=%s\r\n", title)
}

// EnterPCL resets the printer and switches the job language to PCL.
func EnterPCL() []byte { return literal("\x1bE@PJL ENTER LANGUAGE=PCL\r\n") }

// AutoFocus turns the autofocus on or off.
func AutoFocus(enabled bool) []byte { return escape("&y", boolValue(enabled), 'A') }

// LongEdgeOffset sets the left (long-edge) offset registration.
func LongEdgeOffset(offset uint32) []byte { return escape("&l", uint64(offset), 'U') }

// ShortEdgeOffset sets the top (short-edge) offset registration.
func ShortEdgeOffset(offset uint32) []byte { return escape("&l", uint64(offset), 'Z') }

// Resolution sets the device resolution in dots per inch.
func Resolution(dpi uint32) []byte { return escape("&u", uint64(dpi), 'D') }

// RasterResolution sets the PCL raster resolution in dots per inch.
func RasterResolution(dpi uint32) []byte { return escape("*t", uint64(dpi), 'R') }

// PositionX moves the cursor to the horizontal position x.
func PositionX(x uint32) []byte { return escape("*p", uint64(x), 'X') }

// PositionY moves the cursor to the vertical position y.
func PositionY(y uint32) []byte { return escape("*p", uint64(y), 'Y') }

// PresentationMode sets the raster presentation mode; 0 is landscape rotation.
func PresentationMode(mode uint32) []byte { return escape("*r", uint64(mode), 'F') }

// RasterHeight declares the page height in device units.
func RasterHeight(height uint32) []byte { return escape("*r", uint64(height), 'T') }

// RasterWidth declares the page width in device units.
func RasterWidth(width uint32) []byte { return escape("*r", uint64(width), 'S') }

// StartRaster sets the raster unit of measure (left margin at the current position).
func StartRaster(mode uint32) []byte { return escape("*r", uint64(mode), 'A') }

// EndRaster closes the raster settings block, resetting compression.
func EndRaster() []byte { return literal("\x1b*rC") }

// EnterHPGL switches from PCL to HPGL mode.
func EnterHPGL() []byte { return literal("\x1b%1B") }

// Initialize is the HPGL IN instruction.
func Initialize() []byte { return literal("IN;") }

// ExitHPGL switches from HPGL back to PCL mode.
func ExitHPGL() []byte { return literal("\x1b%0B") }

// VectorParam sets vector frequency, power and speed.
//
// The fields are zero padded to 4, 3 and 3 digits. Values are not validated;
// a value wider than its field is written in full.
func VectorParam(frequency, power, speed int) []byte {
	return fmt.Appendf(nil, "XR%04d;YP%03d;ZS%03d;", frequency, power, speed)
}

// Move builds a pen-up or pen-down instruction through pts.
func Move(penDown bool, pts ...Point) []byte {
	return AppendMove(make([]byte, 0, 3+len(pts)*12), penDown, pts...)
}

// AppendMove appends a pen-up (PU) or pen-down (PD) instruction with the
// coordinate pairs pts to dst. All pairs share one pen state:
//
//	PD1200,0,1200,1200;
func AppendMove(dst []byte, penDown bool, pts ...Point) []byte {
	if penDown {
		dst = append(dst, "PD"...)
	} else {
		dst = append(dst, "PU"...)
	}

	for i, p := range pts {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendUint(dst, uint64(p.X), 10)
		dst = append(dst, ',')
		dst = strconv.AppendUint(dst, uint64(p.Y), 10)
	}

	return append(dst, ';')
}

// Reset is the PCL printer reset.
func Reset() []byte { return literal("\x1bE") }

// ExitLanguage is the universal exit language command.
func ExitLanguage() []byte { return literal("\x1b%-12345X") }

// EndOfJob ends the PJL job.
func EndOfJob() []byte { return literal("@PJL EOJ \r\n") }
