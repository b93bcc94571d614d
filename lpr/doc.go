// Package lpr implements the job transport used to feed a laser engraver that
// presents itself as a network printer.
//
// The device speaks the line printer daemon protocol (RFC 1179) on TCP port 515.
// Every control message is framed by a single leading byte that selects its
// meaning, and the device answers each message with exactly one status byte:
//
//   - 0x02 <queue> LF                      : receive a printer job
//   - 0x02 <count> SP cfA<job><host> LF    : receive control file
//   - H<host> LF NUL                       : control file body
//   - 0x03 <count> SP dfA<job><host> LF    : receive data file
//
// A status byte of 0 accepts the message; any other value rejects it. Messages
// are never pipelined: the next frame is written only after the status byte of
// the previous one was read.
//
// # Session lifecycle
//
// [Connect] resolves the device address, dials it with retries bounded by a
// watchdog deadline, and performs the four-step handshake. A [Session] is only
// returned once the handshake succeeded; on any failure the socket is closed and
// the error is returned. The state flow is
//
//	Unconnected → Connecting → Handshaking → Ready → Closed
//
// with failures during Connecting or Handshaking ending in Failed.
//
// After the handshake the session carries the job data stream verbatim via
// [Session.WriteRaw]. [Session.Close] pads the stream with 4096 NUL bytes, which
// the device needs to flush the job, and releases the socket. Close must run on
// every exit path, including after a failed write, otherwise the device spooler
// keeps waiting for the rest of the job.
//
// A Session is NOT goroutine-safe. Jobs for different devices must use
// separate sessions.
package lpr
