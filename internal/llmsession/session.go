// Package llmsession wraps the outbound WebSocket session to the streaming
// LLM (C2): typed event emit/receive, tool-result injection, and cancel.
// The underlying transport is github.com/WqyJh/go-openai-realtime, exactly
// as the teacher's OpenAIRealtimeAPIElement uses it; this package's job is
// to translate that SDK's wire types into this bridge's own tagged-union
// events (pkg/events), the same separation the teacher keeps between its
// internal pkg/realtimeapi/events protocol and the concrete SDK adapter in
// pkg/elements/openai_realtimeapi_element.go.
package llmsession

import (
	"context"
	"fmt"
	"sync"

	openairt "github.com/WqyJh/go-openai-realtime"
	"github.com/sashabaranov/go-openai"

	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/pkg/events"
)

// Session is a thin typed wrapper over one LLM realtime connection. It is
// owned by exactly one mediator/call; nothing about it is shared.
type Session struct {
	client *openairt.Client
	conn   *openairt.Conn
	handler *openairt.ConnHandler

	log *obs.Logger

	mu          sync.Mutex
	wildcardSub []chan events.ServerEvent
	out         chan events.ServerEvent
}

// New constructs a Session bound to apiKey; it does not dial until Connect.
func New(apiKey string, logger *obs.Logger) *Session {
	return &Session{
		client: openairt.NewClient(apiKey),
		log:    logger,
		out:    make(chan events.ServerEvent, 64),
	}
}

// Events returns the single tagged-union channel every inbound frame is
// published to, per the Design Notes' re-architecture guidance: no dynamic
// string-keyed handler map, one typed channel the mediator selects on.
func (s *Session) Events() <-chan events.ServerEvent { return s.out }

// Connect opens the LLM WebSocket and starts the SDK's connection handler,
// translating every inbound openairt event into this bridge's own
// events.ServerEvent before publishing it.
func (s *Session) Connect(ctx context.Context) error {
	conn, err := s.client.Connect(ctx)
	if err != nil {
		return fmt.Errorf("llmsession: connect: %w", err)
	}
	s.conn = conn
	s.handler = openairt.NewConnHandler(ctx, conn, s.onEvent)
	s.handler.Start()
	return nil
}

func (s *Session) onEvent(ctx context.Context, evt openairt.ServerEvent) {
	translated, skip := translateServerEvent(evt)
	if skip {
		return
	}
	s.publish(translated)
}

func (s *Session) publish(evt events.ServerEvent) {
	select {
	case s.out <- evt:
	default:
		s.log.Printf("events channel full, dropping %s", evt.ServerEventType())
	}
	s.mu.Lock()
	subs := append([]chan events.ServerEvent(nil), s.wildcardSub...)
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// SubscribeAll registers a diagnostics channel receiving every event,
// mirroring the "*" wildcard subscription from §4.2.
func (s *Session) SubscribeAll() <-chan events.ServerEvent {
	ch := make(chan events.ServerEvent, 32)
	s.mu.Lock()
	s.wildcardSub = append(s.wildcardSub, ch)
	s.mu.Unlock()
	return ch
}

// UpdateSession sets modalities, instructions, voice, codecs, transcription,
// turn detection, and tool schemas per §4.2.
func (s *Session) UpdateSession(ctx context.Context, cfg events.SessionConfig) error {
	return s.conn.SendMessage(ctx, openairt.SessionUpdateEvent{Session: toClientSession(cfg)})
}

// SendAudio appends one caller audio frame to the input buffer.
func (s *Session) SendAudio(ctx context.Context, base64Frame string) error {
	return s.conn.SendMessage(ctx, openairt.InputAudioBufferAppendEvent{Audio: base64Frame})
}

// CommitInputBuffer commits the pending input audio buffer.
func (s *Session) CommitInputBuffer(ctx context.Context) error {
	return s.conn.SendMessage(ctx, openairt.InputAudioBufferCommitEvent{})
}

// ClearInputBuffer discards the pending input audio buffer.
func (s *Session) ClearInputBuffer(ctx context.Context) error {
	return s.conn.SendMessage(ctx, openairt.InputAudioBufferClearEvent{})
}

// CreateResponse requests a new assistant response.
func (s *Session) CreateResponse(ctx context.Context) error {
	return s.conn.SendMessage(ctx, openairt.ResponseCreateEvent{})
}

// CancelResponse aborts the response currently being generated (barge-in).
func (s *Session) CancelResponse(ctx context.Context) error {
	return s.conn.SendMessage(ctx, openairt.ResponseCancelEvent{})
}

// SendToolResult materializes a function_call_output item for callID and
// immediately requests a follow-up response, per §4.2.
func (s *Session) SendToolResult(ctx context.Context, callID, output string) error {
	if err := s.conn.SendMessage(ctx, openairt.ConversationItemCreateEvent{
		Item: openairt.MessageItem{
			Type:   openairt.MessageItemTypeFunctionCallOutput,
			CallID: callID,
			Output: output,
		},
	}); err != nil {
		return fmt.Errorf("llmsession: send tool result: %w", err)
	}
	return s.CreateResponse(ctx)
}

// Disconnect closes the LLM WebSocket.
func (s *Session) Disconnect() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func toClientSession(cfg events.SessionConfig) openairt.ClientSession {
	modalities := make([]openairt.Modality, 0, len(cfg.Modalities))
	for _, m := range cfg.Modalities {
		modalities = append(modalities, openairt.Modality(m))
	}
	cs := openairt.ClientSession{
		Modalities:        modalities,
		Instructions:      cfg.Instructions,
		Voice:             openairt.Voice(cfg.Voice),
		InputAudioFormat:  openairt.AudioFormat(cfg.InputAudioFormat),
		OutputAudioFormat: openairt.AudioFormat(cfg.OutputAudioFormat),
	}
	if cfg.ToolChoice != "" {
		cs.ToolChoice = openairt.ToolChoiceString(cfg.ToolChoice)
	}
	if cfg.InputAudioTranscription != nil {
		cs.InputAudioTranscription = &openairt.InputAudioTranscription{Model: openai.Whisper1}
	}
	if cfg.TurnDetection != nil {
		cs.TurnDetection = &openairt.ClientTurnDetection{
			Type: openairt.ClientTurnDetectionTypeServerVad,
			TurnDetectionParams: openairt.TurnDetectionParams{
				Threshold:         cfg.TurnDetection.Threshold,
				PrefixPaddingMs:   cfg.TurnDetection.PrefixPaddingMs,
				SilenceDurationMs: cfg.TurnDetection.SilenceDurationMs,
			},
		}
	}
	for _, t := range cfg.Tools {
		cs.Tools = append(cs.Tools, openairt.Tool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return cs
}
