// Package mediator implements the per-call session mediator (C7): the
// orchestrator owning the LLM session, the carrier session, and the turn
// arbiter for exactly one call, plus its lifecycle and transcript emission.
// Grounded on the teacher's pkg/realtimeapi/bridge/event_bridge.go (response
// lifecycle sequencing) and pkg/realtimeapi/state/response_tracker.go
// (mutex-guarded state enum with copy-out accessors).
package mediator

import "sync"

// State is the lifecycle state machine from §4.7.
type State string

const (
	StateConnecting State = "connecting"
	StateGreeting   State = "greeting"
	StateListening  State = "listening"
	StateResponding State = "responding"
	StateInTool     State = "in-tool"
	StateClosing    State = "closing"
)

// sessionState is the mutex-guarded per-call state from §3, following the
// teacher's ResponseTracker shape: a struct behind a mutex with explicit
// transition methods rather than exported fields.
type sessionState struct {
	mu          sync.RWMutex
	state       State
	initialized bool
}

func newSessionState() *sessionState {
	return &sessionState{state: StateConnecting}
}

func (s *sessionState) set(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *sessionState) get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *sessionState) setInitialized(v bool) {
	s.mu.Lock()
	s.initialized = v
	s.mu.Unlock()
}

func (s *sessionState) isInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}
