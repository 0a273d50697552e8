package discord

import (
	"sync"
	"time"
)

// ConnectionState tracks whether the gateway session is usable.
// It is updated by gateway events and read by the sweep scheduler and the status endpoint.
type ConnectionState struct {
	mu             sync.RWMutex
	connected      bool
	since          time.Time
	lastDisconnect time.Time
	reconnects     int
}

// StateSnapshot is a point-in-time copy of ConnectionState.
type StateSnapshot struct {
	Connected      bool      `json:"connected"`
	Since          time.Time `json:"since"`
	LastDisconnect time.Time `json:"last_disconnect,omitempty"`
	Reconnects     int       `json:"reconnects"`
}

// NewConnectionState returns a disconnected state.
func NewConnectionState() *ConnectionState {
	return &ConnectionState{since: time.Now()}
}

// MarkConnected records a ready or resumed session.
func (s *ConnectionState) MarkConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return
	}
	if !s.lastDisconnect.IsZero() {
		s.reconnects++
	}
	s.connected = true
	s.since = time.Now()
}

// MarkDisconnected records a lost session.
func (s *ConnectionState) MarkDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return
	}
	now := time.Now()
	s.connected = false
	s.since = now
	s.lastDisconnect = now
}

// Connected reports whether the gateway is currently connected.
func (s *ConnectionState) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Snapshot returns a copy of the current state.
func (s *ConnectionState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StateSnapshot{
		Connected:      s.connected,
		Since:          s.since,
		LastDisconnect: s.lastDisconnect,
		Reconnects:     s.reconnects,
	}
}
