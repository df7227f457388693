package arbiter

import (
	"sync/atomic"
	"testing"
	"time"
)

func newTestArbiter(cooldown time.Duration) (*Arbiter, *int32, *int32, *int32) {
	var cancelCount, clearCount, markCount int32
	a := New(cooldown, Actions{
		CancelAssistant: func() { atomic.AddInt32(&cancelCount, 1) },
		ClearCarrierBuf: func() { atomic.AddInt32(&clearCount, 1) },
		EmitCarrierMark: func(name string) { atomic.AddInt32(&markCount, 1) },
	})
	return a, &cancelCount, &clearCount, &markCount
}

func TestBargeInWhileResponseActive(t *testing.T) {
	a, cancelCount, clearCount, _ := newTestArbiter(DefaultCooldown)
	a.ResponseCreated()
	a.SpeechStarted()

	if got := atomic.LoadInt32(cancelCount); got != 1 {
		t.Fatalf("CancelAssistant called %d times, want 1", got)
	}
	if got := atomic.LoadInt32(clearCount); got != 1 {
		t.Fatalf("ClearCarrierBuf called %d times, want 1", got)
	}
}

func TestNoBargeInWhileIdle(t *testing.T) {
	a, cancelCount, clearCount, _ := newTestArbiter(DefaultCooldown)
	a.SpeechStarted()

	if got := atomic.LoadInt32(cancelCount); got != 0 {
		t.Fatalf("CancelAssistant called %d times, want 0", got)
	}
	if got := atomic.LoadInt32(clearCount); got != 0 {
		t.Fatalf("ClearCarrierBuf called %d times, want 0", got)
	}
}

func TestEchoGateDuringCooldown(t *testing.T) {
	a, _, _, _ := newTestArbiter(50 * time.Millisecond)
	a.PlaybackAcknowledged(nil)

	if !a.GateCallerAudio() {
		t.Fatalf("expected caller audio gated immediately after mark ack")
	}

	time.Sleep(100 * time.Millisecond)
	if a.GateCallerAudio() {
		t.Fatalf("expected caller audio ungated after cooldown expiry")
	}
}

func TestAudioDeltaPreemptsCooldown(t *testing.T) {
	a, _, _, _ := newTestArbiter(time.Hour) // long cooldown that must never fire
	a.PlaybackAcknowledged(nil)
	if !a.GateCallerAudio() {
		t.Fatalf("expected gated right after mark ack")
	}

	a.AssistantAudioDelta()
	if a.GateCallerAudio() {
		t.Fatalf("expected an audio delta to immediately clear echoCooldown (P3)")
	}
}

func TestPlaybackAcknowledgedReplacesPriorTimer(t *testing.T) {
	a, _, _, _ := newTestArbiter(60 * time.Millisecond)
	var expireCount int32
	onExpire := func() { atomic.AddInt32(&expireCount, 1) }

	a.PlaybackAcknowledged(onExpire)
	time.Sleep(20 * time.Millisecond)
	a.PlaybackAcknowledged(onExpire) // replaces the first timer (rule 5 / P2)

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&expireCount); got != 1 {
		t.Fatalf("expected exactly one cooldown expiry, got %d", got)
	}
}

func TestResponseDoneTwiceIsBenign(t *testing.T) {
	a, _, _, _ := newTestArbiter(DefaultCooldown)
	a.ResponseCreated()
	a.ResponseDone()
	a.ResponseDone() // benign no-op per §3 invariant (c)

	if a.ResponseActive() {
		t.Fatalf("expected responseActive=false")
	}
}
