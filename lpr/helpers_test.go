package lpr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testLocalHost = "laserhost"

// newTestConfig creates a SessionConfig with short retry timings suitable for tests.
func newTestConfig(t *testing.T, opts ...ConnOption) *SessionConfig {
	t.Helper()

	defaults := []ConnOption{
		WithLocalHostname(testLocalHost),
		WithRetryInterval(10 * time.Millisecond),
		WithConnectTimeout(2 * time.Second),
	}

	cfg, err := NewSessionConfig("127.0.0.1", append(defaults, opts...)...)
	require.NoError(t, err)

	return cfg
}

// expectedFrames returns the four handshake frames for the default job.
func expectedFrames() [][]byte {
	return [][]byte{
		[]byte("\x02\n"),
		[]byte("\x0211 cfAlive.pdflaserhost\n"),
		[]byte("Hlaserhost\n\x00"),
		[]byte("\x031048576 dfAlive.pdflaserhost\n"),
	}
}

// newPipeConn creates a net.Pipe pair and registers cleanup.
func newPipeConn(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	return local, remote
}

// readExactly reads exactly n bytes from r, failing the test on error.
func readExactly(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()

	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		t.Errorf("readExactly: %v", err)
	}

	return buf
}

// mustWrite writes data to w, failing the test on error.
func mustWrite(t *testing.T, w io.Writer, data []byte) {
	t.Helper()

	if _, err := w.Write(data); err != nil {
		t.Errorf("mustWrite: %v", err)
	}
}

// assertSilent checks that the peer sends nothing within d.
func assertSilent(t *testing.T, conn net.Conn, d time.Duration) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(d))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var b [1]byte
	n, err := conn.Read(b[:])
	if n != 0 || !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("expected silence, got n=%d err=%v", n, err)
	}
}

// fakeDevice plays the device side of the handshake on conn. It reads each
// expected frame, checks that nothing else is pipelined behind it and answers
// with the next byte of acks. It stops after the first non-zero ack.
func fakeDevice(t *testing.T, conn net.Conn, acks []byte) <-chan [][]byte {
	t.Helper()

	done := make(chan [][]byte, 1)
	go func() {
		var got [][]byte
		defer func() { done <- got }()

		for i, want := range expectedFrames() {
			if i >= len(acks) {
				return
			}
			got = append(got, readExactly(t, conn, len(want)))
			assertSilent(t, conn, 20*time.Millisecond)
			mustWrite(t, conn, []byte{acks[i]})
			if acks[i] != 0 {
				return
			}
		}
	}()

	return done
}

// scriptConn is a net.Conn that replays scripted acknowledgements and records
// every write. Writes can be made to fail.
type scriptConn struct {
	mu      sync.Mutex
	reads   *bytes.Reader
	writes  [][]byte
	closed  atomic.Bool
	failN   int   // bytes accepted by the next failing write
	failErr error // returned by the next failing write
	short   bool  // next write reports a short count without error
}

var _ net.Conn = (*scriptConn)(nil)

func newScriptConn(acks ...byte) *scriptConn {
	return &scriptConn{reads: bytes.NewReader(acks)}
}

func (c *scriptConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reads.Read(p)
}

func (c *scriptConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return 0, net.ErrClosed
	}

	if c.failErr != nil || c.short {
		n := min(c.failN, len(p))
		c.writes = append(c.writes, bytes.Clone(p[:n]))
		err := c.failErr
		c.failErr, c.short = nil, false

		return n, err
	}

	c.writes = append(c.writes, bytes.Clone(p))

	return len(p), nil
}

// failNextWrite makes the next write transfer n bytes and return err.
// A nil err produces a short write without error.
func (c *scriptConn) failNextWrite(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failN = n
	c.failErr = err
	c.short = err == nil
}

func (c *scriptConn) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([][]byte(nil), c.writes...)
}

func (c *scriptConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return net.ErrClosed
	}

	return nil
}

func (c *scriptConn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

func (c *scriptConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: DefaultPort}
}

func (c *scriptConn) SetDeadline(_ time.Time) error { return nil }
func (c *scriptConn) SetReadDeadline(_ time.Time) error { return nil }
func (c *scriptConn) SetWriteDeadline(_ time.Time) error { return nil }

// newReadySession negotiates a session over a scriptConn that acknowledges
// all four handshake frames.
func newReadySession(t *testing.T, opts ...ConnOption) (*Session, *scriptConn) {
	t.Helper()

	conn := newScriptConn(0, 0, 0, 0)
	s, err := Handshake(context.Background(), conn, newTestConfig(t, opts...))
	require.NoError(t, err)
	require.Equal(t, ReadyState, s.State())

	return s, conn
}

// fakeResolver counts lookups and records their times.
type fakeResolver struct {
	mu    sync.Mutex
	calls []time.Time
	// results are returned per call; the last one repeats.
	results []resolveResult
	// block makes LookupHost wait for ctx to be done.
	block bool
}

type resolveResult struct {
	addrs []string
	err   error
}

func (r *fakeResolver) LookupHost(ctx context.Context, _ string) ([]string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, time.Now())
	idx := min(len(r.calls), len(r.results)) - 1
	r.mu.Unlock()

	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	res := r.results[idx]

	return res.addrs, res.err
}

func (r *fakeResolver) callTimes() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]time.Time(nil), r.calls...)
}

// fakeDialer records dialed addresses; addresses in accept get a pipe end.
type fakeDialer struct {
	mu     sync.Mutex
	dialed []string
	accept map[string]bool
}

func (d *fakeDialer) DialContext(_ context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dialed = append(d.dialed, network+"/"+address)
	if d.accept[address] {
		local, remote := net.Pipe()
		_ = remote.Close()

		return local, nil
	}

	return nil, &net.OpError{Op: "dial", Net: network, Err: errors.New("connection refused")}
}

func (d *fakeDialer) addresses() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.dialed...)
}
