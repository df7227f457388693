// Package transcript implements the append-only per-call transcript sink
// (C9). All operations are fire-and-forget from the mediator's perspective:
// failures are logged and swallowed, never propagated (§4.9).
package transcript

import "context"

// Ref is an opaque handle into the sink; may be the zero value if the sink
// is disabled, per §3's "transcriptRef ... may be null if sink is
// disabled."
type Ref string

// Speaker is the closed set from §3's TranscriptEntry.
type Speaker string

const (
	SpeakerCaller    Speaker = "caller"
	SpeakerAssistant Speaker = "assistant"
	SpeakerSystem    Speaker = "system"
	SpeakerTool      Speaker = "tool"
)

// StartParams is StartCall's argument shape.
type StartParams struct {
	CallID       string
	CallerPhone  string
	CustomerName string
	Identified   bool
}

// MessageParams is AppendMessage's argument shape.
type MessageParams struct {
	Speaker Speaker
	Content string
}

// ToolCallParams is AppendToolCall's argument shape.
type ToolCallParams struct {
	Name      string
	Arguments string
	Result    string
}

// EndParams is EndCall's argument shape.
type EndParams struct {
	DurationSeconds int
}

// Sink is the C9 contract. Every method is best-effort: implementations
// must never return an error to the caller, per §4.9/§7 — log internally
// instead.
type Sink interface {
	StartCall(ctx context.Context, p StartParams) Ref
	AppendMessage(ctx context.Context, ref Ref, p MessageParams)
	AppendToolCall(ctx context.Context, ref Ref, p ToolCallParams)
	EndCall(ctx context.Context, ref Ref, p EndParams)
}
