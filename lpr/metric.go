package lpr

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for an LPD job session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// ConnectAttempts indicates the number of resolution passes made while connecting.
	ConnectAttempts atomic.Uint32
	// AckCount indicates the number of successful handshake acknowledgements.
	AckCount atomic.Uint32
	// CommandCount indicates the number of writes that completed, handshake frames included.
	CommandCount atomic.Uint64
	// BytesWritten indicates the number of bytes written, handshake frames and padding included.
	BytesWritten atomic.Uint64
	// WriteErrCount indicates the number of failed writes.
	WriteErrCount atomic.Uint64
}

func (m *SessionMetrics) incConnectAttempts() {
	m.ConnectAttempts.Add(1)
}

func (m *SessionMetrics) incAckCount() {
	m.AckCount.Add(1)
}

func (m *SessionMetrics) addWrite(n int) {
	m.CommandCount.Add(1)
	m.BytesWritten.Add(uint64(n))
}

func (m *SessionMetrics) incWriteErrCount() {
	m.WriteErrCount.Add(1)
}
