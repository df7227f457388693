// Package events defines the typed tagged-union wire protocol exchanged
// with the streaming LLM session, narrowed from the realtime-api event
// vocabulary to the kinds this bridge actually emits and consumes.
package events

// Modality is an output channel the LLM session may produce.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// AudioFormat mirrors the carrier-native codec the session is configured
// for; this bridge always configures both sides identically (no transcode).
type AudioFormat string

const (
	AudioFormatG711Ulaw AudioFormat = "g711_ulaw"
	AudioFormatG711Alaw AudioFormat = "g711_alaw"
	AudioFormatPCM16    AudioFormat = "pcm16"
)

// TurnDetectionType selects the VAD strategy the LLM runs over caller audio.
type TurnDetectionType string

const (
	TurnDetectionServerVAD TurnDetectionType = "server_vad"
)

// TurnDetection holds the threshold/padding/silence triple from §4.6.
type TurnDetection struct {
	Type              TurnDetectionType `json:"type"`
	Threshold         float64           `json:"threshold"`
	PrefixPaddingMs   int               `json:"prefix_padding_ms"`
	SilenceDurationMs int               `json:"silence_duration_ms"`
}

// InputAudioTranscription configures the model used to transcribe caller
// audio for the transcript sink; Model is typically openai.Whisper1.
type InputAudioTranscription struct {
	Model string `json:"model"`
}

// Tool is a JSON-Schema-shaped function declaration advertised to the LLM.
type Tool struct {
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

// SessionConfig is the payload of a session.update client event.
type SessionConfig struct {
	Modalities              []Modality                `json:"modalities"`
	Instructions            string                     `json:"instructions"`
	Voice                   string                     `json:"voice"`
	InputAudioFormat        AudioFormat                `json:"input_audio_format"`
	OutputAudioFormat       AudioFormat                `json:"output_audio_format"`
	InputAudioTranscription *InputAudioTranscription   `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection             `json:"turn_detection,omitempty"`
	Tools                   []Tool                     `json:"tools,omitempty"`
	ToolChoice              string                     `json:"tool_choice,omitempty"`
}

// ErrorDetail is the payload of a server-side error event.
type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// ErrCodeResponseCancelNotActive is the one benign race the spec names:
// barge-in cancelling a response that already finished generating.
const ErrCodeResponseCancelNotActive = "response_cancel_not_active"
