package llmsession

import (
	"encoding/json"

	openairt "github.com/WqyJh/go-openai-realtime"

	"github.com/nayacomm/voicebridge/pkg/events"
)

// translateServerEvent maps one openairt.ServerEvent onto this bridge's own
// tagged union. skip=true only for the benign response_cancel_not_active
// error; every SDK event kind not modeled here becomes an UnknownEvent.
func translateServerEvent(evt openairt.ServerEvent) (out events.ServerEvent, skip bool) {
	switch e := evt.(type) {
	case openairt.SessionCreatedEvent:
		return events.SessionCreatedEvent{BaseServerEvent: base(events.ServerEventSessionCreated)}, false
	case openairt.SessionUpdatedEvent:
		return events.SessionUpdatedEvent{BaseServerEvent: base(events.ServerEventSessionUpdated)}, false
	case openairt.ResponseCreatedEvent:
		return events.ResponseCreatedEvent{BaseServerEvent: base(events.ServerEventResponseCreated)}, false
	case openairt.ResponseDoneEvent:
		return events.ResponseDoneEvent{BaseServerEvent: base(events.ServerEventResponseDone)}, false
	case openairt.ResponseAudioDeltaEvent:
		return events.ResponseAudioDeltaEvent{
			BaseServerEvent: base(events.ServerEventResponseAudioDelta),
			Delta:           e.Delta,
		}, false
	case openairt.ResponseAudioDoneEvent:
		return events.ResponseAudioDoneEvent{BaseServerEvent: base(events.ServerEventResponseAudioDone)}, false
	case openairt.ResponseAudioTranscriptDoneEvent:
		return events.ResponseAudioTranscriptDoneEvent{
			BaseServerEvent: base(events.ServerEventResponseAudioTranscriptDone),
			Transcript:      e.Transcript,
		}, false
	case openairt.InputAudioBufferSpeechStartedEvent:
		return events.InputAudioBufferSpeechStartedEvent{BaseServerEvent: base(events.ServerEventInputAudioBufferSpeechStarted)}, false
	case openairt.InputAudioBufferSpeechStoppedEvent:
		return events.InputAudioBufferSpeechStoppedEvent{BaseServerEvent: base(events.ServerEventInputAudioBufferSpeechStopped)}, false
	case openairt.ConversationItemInputAudioTranscriptionCompletedEvent:
		return events.InputAudioTranscriptionCompletedEvent{
			BaseServerEvent: base(events.ServerEventInputAudioTranscriptionCompleted),
			Transcript:      e.Transcript,
		}, false
	case openairt.ResponseFunctionCallArgumentsDoneEvent:
		return events.ResponseFunctionCallArgumentsDoneEvent{
			BaseServerEvent: base(events.ServerEventResponseFunctionCallArgsDone),
			CallID:          e.CallID,
			Name:            e.Name,
			Arguments:       e.Arguments,
		}, false
	case openairt.ErrorEvent:
		if e.Error.Code == events.ErrCodeResponseCancelNotActive {
			// Benign barge-in race: CancelResponse lost to a response that
			// had already finished. Discard rather than log, per §4.2/§7.
			return nil, true
		}
		return events.NewErrorEvent(string(e.Error.Type), e.Error.Code, e.Error.Message, e.Error.Param), false
	default:
		return events.UnknownEvent{BaseServerEvent: base(events.ServerEventUnknown), Raw: rawJSON(evt)}, false
	}
}

// rawJSON best-effort re-marshals an SDK event this bridge doesn't model,
// so the diagnostic channel still carries the original payload.
func rawJSON(evt openairt.ServerEvent) json.RawMessage {
	raw, err := json.Marshal(evt)
	if err != nil {
		return nil
	}
	return raw
}

func base(t events.ServerEventType) events.BaseServerEvent {
	return events.BaseServerEvent{Type: t}
}
