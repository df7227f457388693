package mediator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nayacomm/voicebridge/internal/arbiter"
	"github.com/nayacomm/voicebridge/internal/carrier"
	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/prompt"
	"github.com/nayacomm/voicebridge/internal/tools"
	"github.com/nayacomm/voicebridge/internal/transcript"
	"github.com/nayacomm/voicebridge/pkg/callctx"
	"github.com/nayacomm/voicebridge/pkg/events"
)

const (
	sessionUpdatedTimeout = 3 * time.Second
	carrierAudioFormat    = events.AudioFormatG711Ulaw
)

// toolResult is the detached tool-execution outcome delivered back to the
// mediator loop; dropped on the floor if the call has already moved to
// StateClosing by the time it arrives (§5's "pending tool executions are
// detached" rule).
type toolResult struct {
	callID string
	result tools.Result
}

// carrierSession is the narrow slice of *carrier.Session the mediator
// depends on, so tests can substitute a fake (P6's tool-completeness
// property needs no real WebSocket).
type carrierSession interface {
	Inbound() <-chan carrier.Inbound
	SendMedia(streamID, base64Payload string) error
	SendMark(streamID, name string) error
	Clear(streamID string) error
	Close() error
}

// llmSession is the narrow slice of *llmsession.Session the mediator
// depends on.
type llmSession interface {
	Events() <-chan events.ServerEvent
	Connect(ctx context.Context) error
	UpdateSession(ctx context.Context, cfg events.SessionConfig) error
	SendAudio(ctx context.Context, base64Frame string) error
	CreateResponse(ctx context.Context) error
	CancelResponse(ctx context.Context) error
	SendToolResult(ctx context.Context, callID, output string) error
	Disconnect() error
}

// Mediator is the per-call orchestrator. One instance per call; never
// shared.
type Mediator struct {
	callID  string
	ident   callctx.IdentificationContext
	carrier carrierSession
	llm     llmSession
	tools   *tools.Registry
	sink    transcript.Sink
	log     *obs.Logger

	state   *sessionState
	arb     *arbiter.Arbiter
	started time.Time

	streamID      string
	callerPhone   string
	transcriptRef transcript.Ref
	toolResults   chan toolResult
}

// New builds a Mediator for one call. The caller is expected to have
// already consumed the carrier's "start" frame (streamID, callerPhone, and
// the decoded IdentificationContext) before constructing the Mediator; the
// carrier session itself must already be started (Session.Start called).
func New(callID, streamID, callerPhone string, ident callctx.IdentificationContext, carrierSess carrierSession, llm llmSession, toolRegistry *tools.Registry, sink transcript.Sink, logger *obs.Logger) *Mediator {
	m := &Mediator{
		callID:      callID,
		streamID:    streamID,
		callerPhone: callerPhone,
		ident:       ident,
		carrier:     carrierSess,
		llm:         llm,
		tools:       toolRegistry,
		sink:        sink,
		log:         logger,
		state:       newSessionState(),
		toolResults: make(chan toolResult, 8),
	}
	m.arb = arbiter.New(arbiter.DefaultCooldown, arbiter.Actions{
		CancelAssistant: m.cancelAssistant,
		ClearCarrierBuf: m.clearCarrierBuffer,
		EmitCarrierMark: m.emitCarrierMark,
	})
	return m
}

func (m *Mediator) cancelAssistant() {
	if err := m.llm.CancelResponse(context.Background()); err != nil {
		m.log.Printf("cancel response failed: %v", err)
	}
}

func (m *Mediator) clearCarrierBuffer() {
	if err := m.carrier.Clear(m.streamID); err != nil {
		m.log.Printf("clear carrier buffer failed: %v", err)
	}
}

func (m *Mediator) emitCarrierMark(name string) {
	if err := m.carrier.SendMark(m.streamID, name); err != nil {
		m.log.Printf("emit carrier mark failed: %v", err)
	}
}

// Run drives the call's full lifecycle until the carrier sends stop or
// either socket closes. It blocks until the call ends.
func (m *Mediator) Run(ctx context.Context) {
	m.started = time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := m.connect(ctx); err != nil {
		m.log.Printf("connect failed, ending call: %v", err)
		m.carrier.Close()
		return
	}

	m.loop(ctx)
	m.close(ctx)
}

func (m *Mediator) connect(ctx context.Context) error {
	m.transcriptRef = m.sink.StartCall(ctx, transcript.StartParams{
		CallID:       m.callID,
		CallerPhone:  m.callerPhone,
		CustomerName: m.ident.CustomerName,
		Identified:   m.ident.Found,
	})

	instructions := prompt.Compose(m.ident)

	if err := m.llm.Connect(ctx); err != nil {
		return err
	}

	cfg := events.SessionConfig{
		Modalities:              []events.Modality{events.ModalityText, events.ModalityAudio},
		Instructions:            instructions,
		Voice:                   "shimmer",
		InputAudioFormat:        carrierAudioFormat,
		OutputAudioFormat:       carrierAudioFormat,
		InputAudioTranscription: &events.InputAudioTranscription{Model: "whisper-1"},
		TurnDetection: &events.TurnDetection{
			Type:              events.TurnDetectionServerVAD,
			Threshold:         0.8,
			PrefixPaddingMs:   600,
			SilenceDurationMs: 1000,
		},
		Tools:      m.tools.Schemas(),
		ToolChoice: "auto",
	}
	if err := m.llm.UpdateSession(ctx, cfg); err != nil {
		return err
	}

	m.waitForSessionUpdated(ctx)
	m.state.setInitialized(true)

	// Let the carrier's media path stabilize before the greeting, avoiding
	// a clipped opening (§4.7).
	select {
	case <-time.After(1200 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := m.llm.CreateResponse(ctx); err != nil {
		return err
	}
	m.state.set(StateGreeting)
	return nil
}

func (m *Mediator) waitForSessionUpdated(ctx context.Context) {
	deadline := time.After(sessionUpdatedTimeout)
	for {
		select {
		case evt, ok := <-m.llm.Events():
			if !ok {
				return
			}
			if evt.ServerEventType() == events.ServerEventSessionUpdated {
				return
			}
			m.handleLLMEvent(ctx, evt)
		case <-deadline:
			m.log.Printf("session.updated wait timed out, proceeding anyway")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Mediator) loop(ctx context.Context) {
	for {
		select {
		case frame, ok := <-m.carrier.Inbound():
			if !ok {
				return
			}
			if m.handleCarrierFrame(ctx, frame) {
				return
			}
		case evt, ok := <-m.llm.Events():
			if !ok {
				return
			}
			m.handleLLMEvent(ctx, evt)
		case tr := <-m.toolResults:
			if m.state.get() == StateClosing {
				continue // detached result, call already gone (§5)
			}
			m.deliverToolResult(ctx, tr)
		case <-ctx.Done():
			return
		}
	}
}

// handleCarrierFrame returns true when the call should end.
func (m *Mediator) handleCarrierFrame(ctx context.Context, frame carrier.Inbound) bool {
	switch frame.Kind {
	case carrier.EventStart:
		if frame.Start != nil {
			m.streamID = frame.Start.StreamID
			m.callerPhone = frame.Start.CustomParameters["callerPhone"]
		}
	case carrier.EventMedia:
		if frame.Media == nil {
			return false
		}
		if m.arb.GateCallerAudio() || !m.state.isInitialized() {
			return false // P1: gated frames are never forwarded
		}
		if err := m.llm.SendAudio(ctx, frame.Media.Payload); err != nil {
			m.log.Printf("forward caller audio failed: %v", err)
		}
	case carrier.EventMark:
		if frame.Mark != nil && frame.Mark.Name == carrier.MarkAudioComplete {
			m.arb.PlaybackAcknowledged(nil) // rule 5 / P2
		}
	case carrier.EventStop:
		return true
	}
	return false
}

func (m *Mediator) handleLLMEvent(ctx context.Context, evt events.ServerEvent) {
	switch e := evt.(type) {
	case events.ResponseCreatedEvent:
		m.arb.ResponseCreated()
		m.state.set(StateResponding)
	case events.ResponseDoneEvent:
		m.arb.ResponseDone()
		if m.state.get() != StateInTool {
			m.state.set(StateListening)
		}
	case events.ResponseAudioDeltaEvent:
		m.arb.AssistantAudioDelta() // rules 3/P3
		if err := m.carrier.SendMedia(m.streamID, e.Delta); err != nil {
			m.log.Printf("forward assistant audio failed: %v", err)
		}
	case events.ResponseAudioDoneEvent:
		m.arb.AssistantAudioDone() // rule 4
	case events.ResponseAudioTranscriptDoneEvent:
		m.sink.AppendMessage(ctx, m.transcriptRef, transcript.MessageParams{Speaker: transcript.SpeakerAssistant, Content: e.Transcript})
	case events.InputAudioBufferSpeechStartedEvent:
		m.arb.SpeechStarted() // rules 2/P4/P5
	case events.InputAudioTranscriptionCompletedEvent:
		m.sink.AppendMessage(ctx, m.transcriptRef, transcript.MessageParams{Speaker: transcript.SpeakerCaller, Content: e.Transcript})
	case events.ResponseFunctionCallArgumentsDoneEvent:
		m.dispatchTool(ctx, e)
	case events.ErrorEvent:
		m.log.Printf("llm error: %s %s", e.Error.Code, e.Error.Message)
	}
}

func (m *Mediator) dispatchTool(ctx context.Context, e events.ResponseFunctionCallArgumentsDoneEvent) {
	m.state.set(StateInTool)
	callID := e.CallID
	cc := tools.CallContext{
		CallerPhone:   m.callerPhone,
		CustomerName:  m.ident.CustomerName,
		CustomerEmail: m.ident.CustomerEmail,
	}
	if len(m.ident.Orders) > 0 {
		o := m.ident.Orders[0]
		cc.OrderID = o.OrderID
		cc.Carrier = o.Carrier
		cc.TrackingNumber = o.TrackingNumber
		cc.TrackingURL = o.TrackingURL
	}
	go func() {
		result := m.tools.Execute(ctx, e.Name, json.RawMessage(e.Arguments), cc)
		select {
		case m.toolResults <- toolResult{callID: callID, result: result}:
		case <-ctx.Done():
		}
	}()
	m.sink.AppendToolCall(ctx, m.transcriptRef, transcript.ToolCallParams{Name: e.Name, Arguments: e.Arguments})
}

func (m *Mediator) deliverToolResult(ctx context.Context, tr toolResult) {
	output := toolOutputText(tr.result)
	if err := m.llm.SendToolResult(ctx, tr.callID, output); err != nil {
		m.log.Printf("send tool result failed: %v", err)
	}
	m.sink.AppendMessage(ctx, m.transcriptRef, transcript.MessageParams{Speaker: transcript.SpeakerTool, Content: output})
	m.state.set(StateResponding)
}

func toolOutputText(r tools.Result) string {
	switch r.Kind {
	case tools.ResultText:
		return r.Text
	case tools.ResultStructured:
		return r.Message
	case tools.ResultHandoff:
		return r.HandoffSummary
	default:
		return ""
	}
}

func (m *Mediator) close(ctx context.Context) {
	m.state.set(StateClosing)
	m.arb.Stop()
	if err := m.llm.Disconnect(); err != nil {
		m.log.Printf("disconnect llm session: %v", err)
	}
	m.carrier.Close()
	m.sink.EndCall(ctx, m.transcriptRef, transcript.EndParams{DurationSeconds: int(time.Since(m.started).Seconds())})
}
