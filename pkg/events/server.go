package events

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ServerEventType enumerates the inbound event kinds the mediator consumes,
// narrowed from the realtime event vocabulary to the ones named in §4.2.
type ServerEventType string

const (
	ServerEventSessionCreated                  ServerEventType = "session.created"
	ServerEventSessionUpdated                  ServerEventType = "session.updated"
	ServerEventResponseCreated                 ServerEventType = "response.created"
	ServerEventResponseDone                    ServerEventType = "response.done"
	ServerEventResponseAudioDelta              ServerEventType = "response.audio.delta"
	ServerEventResponseAudioDone                ServerEventType = "response.audio.done"
	ServerEventResponseAudioTranscriptDone      ServerEventType = "response.audio_transcript.done"
	ServerEventInputAudioBufferSpeechStarted    ServerEventType = "input_audio_buffer.speech_started"
	ServerEventInputAudioBufferSpeechStopped    ServerEventType = "input_audio_buffer.speech_stopped"
	ServerEventInputAudioTranscriptionCompleted ServerEventType = "conversation.item.input_audio_transcription.completed"
	ServerEventResponseFunctionCallArgsDone     ServerEventType = "response.function_call_arguments.done"
	ServerEventError                            ServerEventType = "error"
	ServerEventUnknown                          ServerEventType = "unknown"
)

// ServerEvent is implemented by every inbound event payload.
type ServerEvent interface {
	ServerEventType() ServerEventType
	GetEventID() string
}

// BaseServerEvent carries the fields common to every inbound event.
type BaseServerEvent struct {
	EventID string          `json:"event_id"`
	Type    ServerEventType `json:"type"`
}

func (e BaseServerEvent) ServerEventType() ServerEventType { return e.Type }
func (e BaseServerEvent) GetEventID() string               { return e.EventID }

func newEventID() string {
	return "evt_" + uuid.New().String()[:8]
}

// SessionCreatedEvent / SessionUpdatedEvent acknowledge session negotiation.
type SessionCreatedEvent struct {
	BaseServerEvent
	Session SessionConfig `json:"session"`
}

type SessionUpdatedEvent struct {
	BaseServerEvent
	Session SessionConfig `json:"session"`
}

// ResponseCreatedEvent / ResponseDoneEvent bracket responseActive.
type ResponseCreatedEvent struct {
	BaseServerEvent
	ResponseID string `json:"response_id"`
}

type ResponseDoneEvent struct {
	BaseServerEvent
	ResponseID string `json:"response_id"`
	Status     string `json:"status"`
}

// ResponseAudioDeltaEvent carries one outbound assistant audio frame.
type ResponseAudioDeltaEvent struct {
	BaseServerEvent
	ResponseID string `json:"response_id"`
	Delta      string `json:"delta"`
}

// ResponseAudioDoneEvent marks the end of assistant audio generation (not
// end of playback — that's the carrier's inbound mark{audio-complete}).
type ResponseAudioDoneEvent struct {
	BaseServerEvent
	ResponseID string `json:"response_id"`
}

// ResponseAudioTranscriptDoneEvent carries the assistant's spoken text.
type ResponseAudioTranscriptDoneEvent struct {
	BaseServerEvent
	ResponseID string `json:"response_id"`
	Transcript string `json:"transcript"`
}

// InputAudioBufferSpeechStartedEvent / StoppedEvent are the LLM's VAD
// boundaries over caller audio.
type InputAudioBufferSpeechStartedEvent struct {
	BaseServerEvent
	AudioStartMs int `json:"audio_start_ms,omitempty"`
}

type InputAudioBufferSpeechStoppedEvent struct {
	BaseServerEvent
	AudioEndMs int `json:"audio_end_ms,omitempty"`
}

// InputAudioTranscriptionCompletedEvent carries the caller's transcribed text.
type InputAudioTranscriptionCompletedEvent struct {
	BaseServerEvent
	ItemID     string `json:"item_id"`
	Transcript string `json:"transcript"`
}

// ResponseFunctionCallArgumentsDoneEvent signals a tool call is ready to run.
type ResponseFunctionCallArgumentsDoneEvent struct {
	BaseServerEvent
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	CallID     string `json:"call_id"`
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
}

// ErrorEvent wraps a server-reported error; ErrCodeResponseCancelNotActive
// is the one kind llmsession silently discards before it reaches the
// mediator.
type ErrorEvent struct {
	BaseServerEvent
	Error ErrorDetail `json:"error"`
}

func NewErrorEvent(errType, code, message, param string) ErrorEvent {
	return ErrorEvent{
		BaseServerEvent: BaseServerEvent{EventID: newEventID(), Type: ServerEventError},
		Error:           ErrorDetail{Type: errType, Code: code, Message: message, Param: param},
	}
}

// UnknownEvent surfaces any inbound frame whose kind this bridge does not
// model as its own type, per §9: unknown kinds are never dropped silently.
// It is published like every other event, so it also reaches the "*"
// diagnostic subscription (Session.SubscribeAll), with its raw payload
// attached for inspection; the mediator ignores it.
type UnknownEvent struct {
	BaseServerEvent
	Raw json.RawMessage `json:"-"`
}
