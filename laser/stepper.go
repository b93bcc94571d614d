package laser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/go-laser/lpr"
	"github.com/arloliu/go-laser/pcl"
)

// Stepper sends a cyclic list of points one at a time.
type Stepper struct {
	enc     *pcl.Encoder
	points  []pcl.Point
	penDown bool
	next    int
	sent    int
}

// NewStepper returns a Stepper over points. points must not be empty.
func NewStepper(enc *pcl.Encoder, penDown bool, points []pcl.Point) (*Stepper, error) {
	if len(points) == 0 {
		return nil, errors.New("laser: stepper needs at least one point")
	}

	return &Stepper{
		enc:     enc,
		points:  append([]pcl.Point(nil), points...),
		penDown: penDown,
	}, nil
}

// Step sends the next point and returns it. After the last point it starts
// over with the first.
func (s *Stepper) Step() (pcl.Point, error) {
	p := s.points[s.next]
	if err := s.enc.MoveTo(s.penDown, p.X, p.Y); err != nil {
		return p, err
	}

	s.next = (s.next + 1) % len(s.points)
	s.sent++

	return p, nil
}

// Sent returns the number of points sent.
func (s *Stepper) Sent() int { return s.sent }

// RunInteractive opens a job on the device and sends one pen-down point per
// line read from input, cycling through points. When input is exhausted or ctx
// is done the job is ended normally; a read error from input aborts it.
// progress, if not nil, is called after each point was sent.
func RunInteractive(
	ctx context.Context,
	cfg *lpr.SessionConfig,
	params pcl.VectorParams,
	points []pcl.Point,
	input io.Reader,
	progress func(n int, p pcl.Point),
) (err error) {
	if cfg == nil {
		return lpr.ErrConfigNil
	}
	if err := params.Validate(); err != nil {
		return err
	}

	sess, err := lpr.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sess.Close())
	}()

	enc := pcl.NewEncoder(sess)
	stepper, err := NewStepper(enc, true, points)
	if err != nil {
		return err
	}

	if err := enc.Header(); err != nil {
		return err
	}
	if err := enc.VectorInit(); err != nil {
		return err
	}
	if err := enc.SetParams(params); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)

	lines, readErr := readLines(done, input)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case _, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("laser: read input: %w", err)
				}

				break loop
			}
		}

		p, err := stepper.Step()
		if err != nil {
			return err
		}
		if progress != nil {
			progress(stepper.Sent(), p)
		}
	}

	if err := enc.VectorEnd(); err != nil {
		return err
	}

	return enc.Footer()
}

// readLines delivers one value per input line until EOF or done is closed.
// When lines is closed, errc yields the scanner error, nil at EOF.
//
// A read blocked in input is only released by input itself.
func readLines(done <-chan struct{}, r io.Reader) (lines <-chan struct{}, errc <-chan error) {
	ch := make(chan struct{})
	ec := make(chan error, 1)
	go func() {
		defer close(ch)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- struct{}{}:
			case <-done:
				ec <- nil
				return
			}
		}
		ec <- sc.Err()
	}()

	return ch, ec
}
