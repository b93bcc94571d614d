package lpr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/arloliu/go-laser/logger"
)

// PaddingSize is the number of NUL bytes written by Close to flush the job.
const PaddingSize = 4096

// Session is a negotiated LPD job on a device.
//
// A Session is only handed out after a successful handshake. The data stream
// is written with WriteRaw and the job is terminated with Close.
//
// This type is NOT goroutine-safe.
type Session struct {
	conn      net.Conn
	cfg       *SessionConfig
	job       Job
	localHost string
	logger    logger.Logger

	state   AtomicState
	metrics SessionMetrics
}

// Connect dials the device described by cfg and negotiates a print job.
//
// The returned session is ready for data. On failure no session is returned
// and any opened connection is closed.
func Connect(ctx context.Context, cfg *SessionConfig) (*Session, error) {
	s, err := newSession(cfg)
	if err != nil {
		return nil, err
	}

	s.state.ToConnecting()

	conn, err := dial(ctx, cfg, &s.metrics)
	if err != nil {
		s.state.ToFailed()
		return nil, err
	}

	return s.negotiate(ctx, conn)
}

// Handshake negotiates a print job over an already open connection.
//
// The connection is owned by the returned session. On failure conn is closed.
func Handshake(ctx context.Context, conn net.Conn, cfg *SessionConfig) (*Session, error) {
	s, err := newSession(cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	s.state.ToConnecting()

	return s.negotiate(ctx, conn)
}

func newSession(cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	localHost := cfg.localHost
	if localHost == "" {
		name, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("lpr: local host name: %w", err)
		}
		localHost = shortHostname(name)
	}

	return &Session{
		cfg:       cfg,
		job:       cfg.job,
		localHost: localHost,
		logger:    cfg.logger.With("host", cfg.host, "job", cfg.job.Name),
	}, nil
}

func (s *Session) negotiate(ctx context.Context, conn net.Conn) (*Session, error) {
	s.conn = conn
	s.state.ToHandshaking()

	if err := s.handshake(ctx); err != nil {
		s.state.ToFailed()
		_ = conn.Close()
		s.logger.Error("lpr: handshake failed", "error", err)

		return nil, err
	}

	s.state.ToReady()
	s.logger.Info("lpr: job negotiated",
		"queue", s.job.Queue,
		"size", s.job.Size,
		"localHost", s.localHost,
	)

	return s, nil
}

// Host returns the device host.
func (s *Session) Host() string { return s.cfg.host }

// Job returns the job negotiated by the session.
func (s *Session) Job() Job { return s.job }

// LocalHostname returns the short host name announced to the device.
func (s *Session) LocalHostname() string { return s.localHost }

// State returns the current session state.
func (s *Session) State() State { return s.state.Get() }

// Metrics returns the session metrics.
func (s *Session) Metrics() *SessionMetrics { return &s.metrics }

// WriteRaw writes p to the device in a single write.
//
// A write that transfers fewer bytes than len(p) returns ErrShortWrite. It is
// not retried: the device has no way to resynchronise a partial command, so the
// job is lost and the caller should Close the session.
func (s *Session) WriteRaw(p []byte) error {
	if !s.state.IsReady() {
		return ErrSessionNotReady
	}

	s.logger.Debug("lpr: sending", "data", strconv.Quote(string(p)))

	return s.write(p)
}

// Close writes the NUL padding trailer and closes the connection.
//
// Close performs this exactly once; later calls return nil. The connection is
// closed even if the padding could not be written, in which case the padding
// error is returned.
func (s *Session) Close() error {
	if !s.state.ToClosed() {
		return nil
	}

	var errs []error
	if err := s.write(make([]byte, PaddingSize)); err != nil {
		errs = append(errs, fmt.Errorf("lpr: write padding: %w", err))
	}
	if err := s.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("lpr: close connection: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Error("lpr: session closed with error", "error", err)
	} else {
		s.logger.Info("lpr: session closed",
			"commands", s.metrics.CommandCount.Load(),
			"bytes", s.metrics.BytesWritten.Load(),
		)
	}

	return err
}

// write performs one write on the connection and accounts for it.
func (s *Session) write(p []byte) error {
	n, err := s.conn.Write(p)
	if err == nil && n == len(p) {
		s.metrics.addWrite(n)
		return nil
	}

	s.metrics.incWriteErrCount()
	if err == nil {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(p))
	}

	return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrShortWrite, n, len(p), err)
}
