package laser

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arloliu/go-laser/lpr"
	"github.com/stretchr/testify/require"
)

const (
	wantFrames = "\x02\n" +
		"\x0211 cfAlive.pdflaserhost\n" +
		"Hlaserhost\n\x00" +
		"\x031048576 dfAlive.pdflaserhost\n"
	wantHeader = "\x1b%-12345X@PJL JOB NAME=live-test\r\n" +
		"\x1bE@PJL ENTER LANGUAGE=PCL\r\n" +
		"\x1b&y0A\x1b&l0U\x1b&l0Z\x1b&u1200D\x1b*p0X\x1b*p0Y\x1b*t1200R"
	wantVectorInit = "\x1bE@PJL ENTER LANGUAGE=PCL\r\n" +
		"\x1b*r0F\x1b*r8T\x1b*r8S\x1b*r1A\x1b*rC\x1b%1BIN;"
	wantTrailer = "\x1b%0B\x1bE\x1b%-12345X@PJL EOJ \r\n"
)

// deviceResult is what a fake device received.
type deviceResult struct {
	frames []byte
	data   []byte
}

// serveDevice plays an LPD device on conn: it acknowledges handshake frames
// with acks, stops at the first non-zero ack and then reads the job data
// until the peer closes the connection.
func serveDevice(t *testing.T, conn net.Conn, acks []byte) deviceResult {
	t.Helper()
	defer conn.Close()

	var res deviceResult
	r := bufio.NewReader(conn)

	for i := 0; i < 4; i++ {
		line, err := r.ReadBytes('\n')
		res.frames = append(res.frames, line...)
		if err != nil {
			return res
		}
		if i == 2 {
			nul, err := r.ReadByte()
			if err != nil {
				return res
			}
			res.frames = append(res.frames, nul)
		}

		ack := byte(0)
		if i < len(acks) {
			ack = acks[i]
		}
		if _, err := conn.Write([]byte{ack}); err != nil {
			t.Errorf("device ack: %v", err)
			return res
		}
		if ack != 0 {
			// the client must hang up without sending anything else
			res.data, _ = io.ReadAll(r)
			return res
		}
	}

	res.data, _ = io.ReadAll(r)

	return res
}

// startDevice listens on a loopback port and serves one connection.
func startDevice(t *testing.T, acks ...byte) (int, <-chan deviceResult) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	ch := make(chan deviceResult, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(ch)
			return
		}
		ch <- serveDevice(t, conn, acks)
	}()

	return ln.Addr().(*net.TCPAddr).Port, ch
}

// closedPort returns a loopback port with no listener.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return port
}

func newTestConfig(t *testing.T, port int, opts ...lpr.ConnOption) *lpr.SessionConfig {
	t.Helper()

	defaults := []lpr.ConnOption{
		lpr.WithPort(port),
		lpr.WithLocalHostname("laserhost"),
		lpr.WithRetryInterval(10 * time.Millisecond),
		lpr.WithConnectAttempts(2),
	}

	cfg, err := lpr.NewSessionConfig("127.0.0.1", append(defaults, opts...)...)
	require.NoError(t, err)

	return cfg
}

var errWire = errors.New("wire cut")

// flakyConn fails one write, selected by its 1-based index, and forwards
// all other writes.
type flakyConn struct {
	net.Conn
	failAt int32
	writes atomic.Int32
}

func (c *flakyConn) Write(p []byte) (int, error) {
	if c.writes.Add(1) == c.failAt {
		return 0, errWire
	}

	return c.Conn.Write(p)
}

// pipeDialer hands out the local end of a pipe served by a fake device.
type pipeDialer struct {
	t      *testing.T
	failAt int32
	result chan deviceResult
}

func (d *pipeDialer) DialContext(_ context.Context, _, _ string) (net.Conn, error) {
	local, remote := net.Pipe()
	go func() {
		d.result <- serveDevice(d.t, remote, nil)
	}()

	return &flakyConn{Conn: local, failAt: d.failAt}, nil
}
