package pcl

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-laser/lpr"
)

// Device receives the encoded job. *lpr.Session implements it.
type Device interface {
	// Job returns the job geometry and title.
	Job() lpr.Job
	// WriteRaw writes one command.
	WriteRaw(p []byte) error
	// Close pads and terminates the job stream.
	Close() error
}

var _ Device = (*lpr.Session)(nil)

// Encoder writes a job to a Device, one command per write.
//
// A failed write is returned immediately: the device has received an
// unterminated stream and the job cannot be resumed. The caller must still
// close the device, which Footer does on every path.
type Encoder struct {
	dev Device
	job lpr.Job
}

// NewEncoder returns an Encoder for dev.
func NewEncoder(dev Device) *Encoder {
	return &Encoder{dev: dev, job: dev.Job()}
}

// Header writes the PJL job header and the PCL page setup.
func (e *Encoder) Header() error {
	return e.send("header",
		JobName(e.job.Title),
		EnterPCL(),
		AutoFocus(e.job.AutoFocus),
		LongEdgeOffset(0),
		ShortEdgeOffset(0),
		Resolution(e.job.Resolution),
		PositionX(0),
		PositionY(0),
		RasterResolution(e.job.Resolution),
	)
}

// VectorInit declares the page geometry and enters HPGL mode.
func (e *Encoder) VectorInit() error {
	return e.send("vector init",
		EnterPCL(),
		PresentationMode(0),
		RasterHeight(e.job.Height),
		RasterWidth(e.job.Width),
		StartRaster(1),
		EndRaster(),
		EnterHPGL(),
		Initialize(),
	)
}

// VectorParam sets vector frequency, power and speed. The values are written
// unchecked; see VectorParams.Validate.
func (e *Encoder) VectorParam(frequency, power, speed int) error {
	return e.send("vector param", VectorParam(frequency, power, speed))
}

// SetParams is VectorParam for a VectorParams value.
func (e *Encoder) SetParams(p VectorParams) error {
	return e.VectorParam(p.Frequency, p.Power, p.Speed)
}

// MoveTo moves to (x, y) with the pen down (cutting) or up.
func (e *Encoder) MoveTo(penDown bool, x, y uint32) error {
	return e.send("move", Move(penDown, Point{X: x, Y: y}))
}

// Path moves through pts in a single instruction with one pen state.
// An empty path is not sent.
func (e *Encoder) Path(penDown bool, pts ...Point) error {
	if len(pts) == 0 {
		return nil
	}

	return e.send("path", Move(penDown, pts...))
}

// VectorEnd leaves HPGL mode.
func (e *Encoder) VectorEnd() error {
	return e.send("vector end", ExitHPGL())
}

// Footer ends the job and closes the device.
//
// The device is closed even when writing the footer fails.
func (e *Encoder) Footer() error {
	err := e.send("footer",
		Reset(),
		ExitLanguage(),
		EndOfJob(),
	)

	return errors.Join(err, e.dev.Close())
}

func (e *Encoder) send(op string, cmds ...[]byte) error {
	for _, cmd := range cmds {
		if err := e.dev.WriteRaw(cmd); err != nil {
			return fmt.Errorf("pcl: %s: %w", op, err)
		}
	}

	return nil
}
