// Package tools declares the LLM-callable tool schemas and dispatches
// invocations to C1/side-effect adapters (C4).
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/orderbackend"
	"github.com/nayacomm/voicebridge/pkg/events"
)

// ResultKind is the closed sum type from §4.4: text, structured, or handoff.
type ResultKind string

const (
	ResultText       ResultKind = "text"
	ResultStructured ResultKind = "structured"
	ResultHandoff    ResultKind = "handoff"
)

// Priority is the urgency named on a transfer_to_human call.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Result is the tagged union every tool invocation returns. Only the field
// matching Kind is meaningful.
type Result struct {
	Kind ResultKind

	Text string

	Success         bool
	Message         string
	RequiresHandoff bool

	HandoffReason  string
	HandoffSummary string
	HandoffPriority Priority
}

// CallContext is the per-invocation context a tool needs: the caller's own
// number (for argument-free check_order_status calls), the customer email
// on file (for send_email), and the latest order's shipping details the
// tracking template renders, per §4.4's {customerName, orderId, carrier,
// trackingNumber, trackingUrl, shopName} parameterization. ShopName is not
// call-specific and comes from the Registry instead (see sendEmail).
type CallContext struct {
	CallerPhone   string
	CustomerEmail string
	CustomerName  string

	OrderID        string
	Carrier        string
	TrackingNumber string
	TrackingURL    string
}

// EmailSender is the side-effect adapter send_email dispatches to. With no
// SMTP host configured, cmd/voicebridge passes NoopSender per §6.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Registry declares tool schemas and routes invocations. It is process-wide
// but stateless beyond its collaborators, so it is safe to share across
// calls.
type Registry struct {
	backend  *orderbackend.Client
	email    EmailSender
	log      *obs.Logger
	shopName string
}

// New builds a Registry wired to the order backend and the email adapter.
// shopName fills the {shopName} slot in templated emails (§4.4).
func New(backend *orderbackend.Client, email EmailSender, shopName string, logger *obs.Logger) *Registry {
	return &Registry{backend: backend, email: email, shopName: shopName, log: logger}
}

// Schemas returns the JSON-Schema-shaped tool declarations advertised to
// the LLM via session.update, per §4.2/§4.4.
func (r *Registry) Schemas() []events.Tool {
	return []events.Tool{
		{
			Type:        "function",
			Name:        "check_order_status",
			Description: "Look up an order's current status and tracking information.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"phone_number": map[string]interface{}{"type": "string"},
					"order_id":     map[string]interface{}{"type": "string"},
				},
			},
		},
		{
			Type:        "function",
			Name:        "register_return",
			Description: "Register a return or exchange request for an order.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"order_id":  map[string]interface{}{"type": "string"},
					"reason":    map[string]interface{}{"type": "string", "enum": []string{"defective", "damaged", "wrong_item", "size_issue", "image_different", "other"}},
					"condition": map[string]interface{}{"type": "string", "enum": []string{"unopened", "opened"}},
					"request":   map[string]interface{}{"type": "string", "enum": []string{"refund", "exchange"}},
				},
				"required": []string{"order_id", "reason", "condition", "request"},
			},
		},
		{
			Type:        "function",
			Name:        "send_email",
			Description: "Send the customer a templated email.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": map[string]interface{}{"type": "string", "enum": []string{"tracking", "return_form", "callback"}},
					"order_id": map[string]interface{}{"type": "string"},
				},
				"required": []string{"template"},
			},
		},
		{
			Type:        "function",
			Name:        "transfer_to_human",
			Description: "Hand the call off to a human agent.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reason":   map[string]interface{}{"type": "string"},
					"summary":  map[string]interface{}{"type": "string"},
					"priority": map[string]interface{}{"type": "string", "enum": []string{"normal", "high", "urgent"}},
				},
				"required": []string{"reason"},
			},
		},
	}
}

// Execute routes one tool invocation by name, per §4.4. Unknown names and
// panics/propagated errors both degrade to a spoken-friendly text result —
// a tool failure never tears down the call.
func (r *Registry) Execute(ctx context.Context, toolName string, argsJSON []byte, cc CallContext) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Printf("tool %s panicked: %v", toolName, rec)
			result = Result{Kind: ResultText, Text: "システムエラーが発生しました。"}
		}
	}()

	args := map[string]interface{}{}
	if len(argsJSON) > 0 {
		if err := json.Unmarshal(argsJSON, &args); err != nil {
			// ToolArgsMalformed per §7: treat as {} and let the handler ask
			// for whatever it's missing.
			r.log.Printf("tools: malformed arguments for %s: %v", toolName, err)
			args = map[string]interface{}{}
		}
	}

	switch toolName {
	case "check_order_status":
		return r.checkOrderStatus(ctx, args, cc)
	case "register_return":
		return r.registerReturn(ctx, args)
	case "send_email":
		return r.sendEmail(ctx, args, cc)
	case "transfer_to_human":
		return r.transferToHuman(args)
	default:
		return Result{Kind: ResultText, Text: fmt.Sprintf("unknown tool: %s", toolName)}
	}
}

func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
