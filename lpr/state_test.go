package lpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{UnconnectedState, "Unconnected"},
		{ConnectingState, "Connecting"},
		{HandshakingState, "Handshaking"},
		{ReadyState, "Ready"},
		{ClosedState, "Closed"},
		{FailedState, "Failed"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestAtomicState_HappyPath(t *testing.T) {
	var st AtomicState
	assert.Equal(t, UnconnectedState, st.Get())

	assert.False(t, st.ToHandshaking())
	assert.False(t, st.ToReady())
	assert.False(t, st.ToClosed())

	assert.True(t, st.ToConnecting())
	assert.True(t, st.ToHandshaking())
	assert.False(t, st.IsReady())
	assert.True(t, st.ToReady())
	assert.True(t, st.IsReady())
	assert.Equal(t, "Ready", st.String())

	assert.False(t, st.ToFailed())
	assert.True(t, st.ToClosed())
	assert.True(t, st.IsClosed())
	assert.True(t, st.Get().IsTerminal())

	// closing twice reports false
	assert.False(t, st.ToClosed())
}

func TestAtomicState_Failures(t *testing.T) {
	t.Run("FromConnecting", func(t *testing.T) {
		var st AtomicState
		st.ToConnecting()
		assert.True(t, st.ToFailed())
		assert.Equal(t, FailedState, st.Get())
		assert.False(t, st.ToReady())
		assert.False(t, st.ToClosed())
	})

	t.Run("FromHandshaking", func(t *testing.T) {
		var st AtomicState
		st.ToConnecting()
		st.ToHandshaking()
		assert.True(t, st.ToFailed())
		assert.True(t, st.Get().IsTerminal())
		assert.False(t, st.ToReady())
	})

	t.Run("NotFromUnconnected", func(t *testing.T) {
		var st AtomicState
		assert.False(t, st.ToFailed())
		assert.False(t, st.Get().IsTerminal())
	})
}
