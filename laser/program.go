package laser

import (
	"fmt"

	"github.com/arloliu/go-laser/pcl"
)

// Stroke is a run of points sharing one pen state.
type Stroke struct {
	PenDown bool        `toml:"pen_down"`
	Points  []pcl.Point `toml:"points"`
}

// Program is a vector job: laser settings followed by strokes.
type Program struct {
	Params  pcl.VectorParams `toml:"params"`
	Strokes []Stroke         `toml:"strokes"`
}

// Square returns a closed square of side size with its corner at the origin.
func Square(size uint32) []pcl.Point {
	return []pcl.Point{
		{X: 0, Y: 0},
		{X: size, Y: 0},
		{X: size, Y: size},
		{X: 0, Y: size},
	}
}

// Validate checks the laser settings. Points are not checked against the page.
func (p Program) Validate() error {
	if err := p.Params.Validate(); err != nil {
		return err
	}

	return nil
}

// PointCount returns the number of points of all strokes.
func (p Program) PointCount() int {
	n := 0
	for _, s := range p.Strokes {
		n += len(s.Points)
	}

	return n
}

// Encode writes prog to enc, footer included.
//
// Each stroke is sent as one HPGL instruction. On error the remaining commands
// are skipped; Footer is only reached on success, so the caller must close the
// device itself on failure.
func Encode(enc *pcl.Encoder, prog Program) error {
	if err := enc.Header(); err != nil {
		return err
	}
	if err := enc.VectorInit(); err != nil {
		return err
	}
	if err := enc.SetParams(prog.Params); err != nil {
		return err
	}

	for i, s := range prog.Strokes {
		if err := enc.Path(s.PenDown, s.Points...); err != nil {
			return fmt.Errorf("stroke %d: %w", i, err)
		}
	}

	if err := enc.VectorEnd(); err != nil {
		return err
	}

	return enc.Footer()
}
