package mediator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nayacomm/voicebridge/internal/carrier"
	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/tools"
	"github.com/nayacomm/voicebridge/internal/transcript"
	"github.com/nayacomm/voicebridge/pkg/callctx"
	"github.com/nayacomm/voicebridge/pkg/events"
)

// fakeCarrier satisfies carrierSession without a real WebSocket.
type fakeCarrier struct {
	in chan carrier.Inbound
}

func newFakeCarrier() *fakeCarrier {
	return &fakeCarrier{in: make(chan carrier.Inbound, 8)}
}

func (f *fakeCarrier) Inbound() <-chan carrier.Inbound { return f.in }
func (f *fakeCarrier) SendMedia(string, string) error  { return nil }
func (f *fakeCarrier) SendMark(string, string) error   { return nil }
func (f *fakeCarrier) Clear(string) error              { return nil }
func (f *fakeCarrier) Close() error                    { return nil }

// fakeLLM satisfies llmSession and records every call in arrival order so
// tests can assert P6's exactly-one-SendToolResult-per-call shape.
type fakeLLM struct {
	events chan events.ServerEvent

	mu    sync.Mutex
	calls []string
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{events: make(chan events.ServerEvent, 8)}
}

func (f *fakeLLM) record(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeLLM) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLLM) Events() <-chan events.ServerEvent { return f.events }
func (f *fakeLLM) Connect(context.Context) error     { return nil }
func (f *fakeLLM) UpdateSession(context.Context, events.SessionConfig) error {
	return nil
}
func (f *fakeLLM) SendAudio(context.Context, string) error { return nil }
func (f *fakeLLM) CancelResponse(context.Context) error    { return nil }
func (f *fakeLLM) Disconnect() error                       { return nil }

func (f *fakeLLM) CreateResponse(context.Context) error {
	f.record("CreateResponse")
	return nil
}

func (f *fakeLLM) SendToolResult(_ context.Context, callID, _ string) error {
	f.record("SendToolResult:" + callID)
	return f.CreateResponse(context.Background())
}

func newTestMediator(t *testing.T) (*Mediator, *fakeCarrier, *fakeLLM) {
	t.Helper()
	fc := newFakeCarrier()
	fl := newFakeLLM()
	registry := tools.New(nil, tools.NoopSender{}, "テスト店舗", obs.NewLogger("test"))
	sink := transcript.NewMemorySink()
	ident := callctx.IdentificationContext{Found: true, CustomerName: "山田"}
	m := New("call1", "stream1", "+815012345678", ident, fc, fl, registry, sink, obs.NewLogger("test"))
	return m, fc, fl
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

// TestDispatchToolSendsExactlyOneResultPerCall covers P6: a single
// function_call_arguments.done event yields exactly one SendToolResult
// call for that call id.
func TestDispatchToolSendsExactlyOneResultPerCall(t *testing.T) {
	m, _, fl := newTestMediator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go m.loop(ctx)

	fl.events <- events.ResponseFunctionCallArgumentsDoneEvent{
		BaseServerEvent: events.BaseServerEvent{Type: events.ServerEventResponseFunctionCallArgsDone},
		CallID:          "call-1",
		Name:            "transfer_to_human",
		Arguments:       `{"reason":"test"}`,
	}

	waitFor(t, time.Second, func() bool {
		for _, c := range fl.callLog() {
			if c == "SendToolResult:call-1" {
				return true
			}
		}
		return false
	})

	count := 0
	for _, c := range fl.callLog() {
		if c == "SendToolResult:call-1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("SendToolResult:call-1 recorded %d times, want exactly 1", count)
	}
}

// TestDispatchToolHandlesConcurrentCalls covers the multi-call shape of P6:
// each call id gets exactly one SendToolResult, never cross-delivered to
// the other call's id.
func TestDispatchToolHandlesConcurrentCalls(t *testing.T) {
	m, _, fl := newTestMediator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go m.loop(ctx)

	for i := 0; i < 2; i++ {
		fl.events <- events.ResponseFunctionCallArgumentsDoneEvent{
			BaseServerEvent: events.BaseServerEvent{Type: events.ServerEventResponseFunctionCallArgsDone},
			CallID:          fmt.Sprintf("call-%d", i),
			Name:            "transfer_to_human",
			Arguments:       `{"reason":"test"}`,
		}
	}

	waitFor(t, time.Second, func() bool {
		seen := map[string]bool{}
		for _, c := range fl.callLog() {
			seen[c] = true
		}
		return seen["SendToolResult:call-0"] && seen["SendToolResult:call-1"]
	})

	counts := map[string]int{}
	for _, c := range fl.callLog() {
		counts[c]++
	}
	if counts["SendToolResult:call-0"] != 1 || counts["SendToolResult:call-1"] != 1 {
		t.Fatalf("unexpected call counts: %v", counts)
	}
}

// TestToolResultDroppedAfterClosing covers §5's "pending tool executions
// are detached" rule: a result arriving once the call has moved to
// StateClosing is dropped rather than delivered.
func TestToolResultDroppedAfterClosing(t *testing.T) {
	m, _, fl := newTestMediator(t)
	m.state.set(StateClosing)

	select {
	case m.toolResults <- toolResult{callID: "stale", result: tools.Result{Kind: tools.ResultText, Text: "x"}}:
	default:
		t.Fatal("toolResults channel unexpectedly full")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.loop(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	for _, c := range fl.callLog() {
		if c == "SendToolResult:stale" {
			t.Fatalf("stale tool result was delivered after StateClosing")
		}
	}
}
