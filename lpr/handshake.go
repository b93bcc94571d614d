package lpr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// LPD command bytes.
const (
	cmdReceiveJob     byte = 0x02
	cmdControlFile    byte = 0x02
	cmdDataFile       byte = 0x03
	ackOK             int8 = 0
	controlFileSuffix      = "cfA"
	dataFileSuffix         = "dfA"
)

// queueFrame builds "\x02<queue>\n".
func queueFrame(queue string) []byte {
	buf := make([]byte, 0, len(queue)+2)
	buf = append(buf, cmdReceiveJob)
	buf = append(buf, queue...)

	return append(buf, '\n')
}

// controlBody builds the control file line "H<host>\n".
func controlBody(host string) []byte {
	buf := make([]byte, 0, len(host)+2)
	buf = append(buf, 'H')
	buf = append(buf, host...)

	return append(buf, '\n')
}

// controlFileFrame builds "\x02<len> cfA<job><host>\n" where len is the size of
// the control file body.
func controlFileFrame(job, host string) []byte {
	return fileFrame(cmdControlFile, uint64(len(controlBody(host))), controlFileSuffix, job, host)
}

// dataFileFrame builds "\x03<size> dfA<job><host>\n".
func dataFileFrame(size uint64, job, host string) []byte {
	return fileFrame(cmdDataFile, size, dataFileSuffix, job, host)
}

func fileFrame(cmd byte, size uint64, prefix, job, host string) []byte {
	buf := make([]byte, 0, 32+len(job)+len(host))
	buf = append(buf, cmd)
	buf = strconv.AppendUint(buf, size, 10)
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, job...)
	buf = append(buf, host...)

	return append(buf, '\n')
}

// controlBodyFrame is the control file body followed by its NUL terminator.
func controlBodyFrame(host string) []byte {
	return append(controlBody(host), 0)
}

// handshake performs the four framed exchanges. It never pipelines: each frame
// is written only after the previous one was acknowledged.
//
// Cancelling ctx interrupts a pending write or acknowledgement read.
func (s *Session) handshake(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Now())
	})

	frames := []struct {
		step  Step
		frame []byte
	}{
		{StepQueue, queueFrame(s.job.Queue)},
		{StepControlFile, controlFileFrame(s.job.Name, s.localHost)},
		{StepControlBody, controlBodyFrame(s.localHost)},
		{StepDataFile, dataFileFrame(s.job.Size, s.job.Name, s.localHost)},
	}

	for _, f := range frames {
		if err := s.exchange(f.step, f.frame); err != nil {
			stop()
			if ctxErr := ctx.Err(); ctxErr != nil {
				err.Err = errors.Join(err.Err, ctxErr)
			}

			return err
		}
	}

	if !stop() {
		// the deadline was already forced; the connection is unusable
		return &HandshakeError{Step: StepDataFile, Err: fmt.Errorf("%w: %w", ErrReadFailure, ctx.Err())}
	}

	return nil
}

// exchange writes one frame and reads its acknowledgement.
func (s *Session) exchange(step Step, frame []byte) *HandshakeError {
	s.logger.Debug("lpr: sending frame", "step", step, "frame", strconv.Quote(string(frame)))

	if err := s.write(frame); err != nil {
		return &HandshakeError{Step: step, Err: err}
	}

	code, err := s.readAck()
	if err != nil {
		s.logger.Debug("lpr: acknowledgement read failed", "step", step, "error", err)
		return &HandshakeError{Step: step, Err: err}
	}

	s.logger.Debug("lpr: acknowledgement", "step", step, "code", code)

	if code != ackOK {
		return &HandshakeError{Step: step, Code: code, Err: ErrHandshakeRejected}
	}
	s.metrics.incAckCount()

	return nil
}

// readAck reads exactly one status byte.
func (s *Session) readAck() (int8, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.conn, b[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: %w", ErrShortRead, err)
		}

		return 0, fmt.Errorf("%w: %w", ErrReadFailure, err)
	}

	return int8(b[0]), nil
}
