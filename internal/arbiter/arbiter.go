// Package arbiter implements the turn/echo arbiter (C6): the seven rules
// governing responseActive tracking, barge-in, and echo cooldown. Grounded
// on the teacher's pkg/pipeline/interrupt_manager.go (mutex-guarded state,
// single replaceable timer, locked trigger helper), trimmed from the
// teacher's tunable hybrid-interrupt policy down to the spec's fixed
// deterministic rules.
package arbiter

import (
	"sync"
	"time"
)

// DefaultCooldown and DefaultStabilization are the fixed parameters from
// §4.6/§4.7. New takes the cooldown as an argument, so a caller can pass a
// value other than DefaultCooldown; the stabilization delay is not an
// Arbiter parameter (the mediator waits a fixed 1.2s before the greeting).
const (
	DefaultCooldown      = 400 * time.Millisecond
	DefaultStabilization = 1200 * time.Millisecond
)

// Actions is the set of side effects the arbiter invokes in response to
// events; the mediator supplies the concrete implementations (C2/C3 calls).
type Actions struct {
	CancelAssistant  func()
	ClearCarrierBuf  func()
	EmitCarrierMark  func(name string)
}

// Arbiter owns responseActive/echoCooldown/cooldownTimer for exactly one
// call. It is never shared across calls.
type Arbiter struct {
	cooldown time.Duration
	actions  Actions

	mu             sync.Mutex
	responseActive bool
	echoCooldown   bool
	cooldownTimer  *time.Timer
}

// New builds an Arbiter with the given cooldown and wired actions.
func New(cooldown time.Duration, actions Actions) *Arbiter {
	return &Arbiter{cooldown: cooldown, actions: actions}
}

// ResponseCreated implements rule 1 (responseActive: false -> true).
func (a *Arbiter) ResponseCreated() {
	a.mu.Lock()
	a.responseActive = true
	a.mu.Unlock()
}

// ResponseDone implements rule 1 (responseActive: true -> false). Receiving
// it twice is a benign no-op, per §3 invariant (c).
func (a *Arbiter) ResponseDone() {
	a.mu.Lock()
	a.responseActive = false
	a.mu.Unlock()
}

// SpeechStarted implements rule 2 (barge-in): cancels and clears exactly
// once when responseActive, ignored otherwise (P4/P5).
func (a *Arbiter) SpeechStarted() {
	a.mu.Lock()
	active := a.responseActive
	a.mu.Unlock()
	if !active {
		return
	}
	a.actions.CancelAssistant()
	a.actions.ClearCarrierBuf()
}

// AssistantAudioDelta implements rules 3 and P3: any outbound audio frame
// cancels a pending cooldown timer and clears echoCooldown immediately.
func (a *Arbiter) AssistantAudioDelta() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disarmCooldownLocked()
	a.echoCooldown = false
}

// AssistantAudioDone implements rule 4: emit the outbound marker but do not
// start the cooldown yet — that happens only once the carrier echoes the
// marker back (PlaybackAcknowledged).
func (a *Arbiter) AssistantAudioDone() {
	a.actions.EmitCarrierMark(MarkAudioComplete)
}

// MarkAudioComplete is the marker name the carrier echoes back once
// playback actually finishes.
const MarkAudioComplete = "audio-complete"

// PlaybackAcknowledged implements rule 5/P2: arms a single 400ms cooldown
// timer on the carrier's inbound mark{audio-complete}, replacing any prior
// one.
func (a *Arbiter) PlaybackAcknowledged(onExpire func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disarmCooldownLocked()
	a.echoCooldown = true
	a.cooldownTimer = time.AfterFunc(a.cooldown, func() {
		a.mu.Lock()
		a.echoCooldown = false
		a.cooldownTimer = nil
		a.mu.Unlock()
		if onExpire != nil {
			onExpire()
		}
	})
}

// disarmCooldownLocked must be called with a.mu held.
func (a *Arbiter) disarmCooldownLocked() {
	if a.cooldownTimer != nil {
		a.cooldownTimer.Stop()
		a.cooldownTimer = nil
	}
}

// GateCallerAudio implements rule 7: gating is purely echoCooldown.
func (a *Arbiter) GateCallerAudio() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.echoCooldown
}

// ResponseActive reports the current responseActive flag, for telemetry
// and for the mediator's in-tool/closing transitions.
func (a *Arbiter) ResponseActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.responseActive
}

// Stop disarms any outstanding cooldown timer, used on call teardown.
func (a *Arbiter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disarmCooldownLocked()
}
