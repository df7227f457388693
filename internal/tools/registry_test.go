package tools

import (
	"context"
	"testing"

	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/orderbackend"
)

func newTestRegistry() *Registry {
	backend := orderbackend.New(orderbackend.Config{BaseURL: "http://backend.invalid"}, obs.NewLogger("test"))
	return New(backend, NoopSender{}, "テスト店舗", obs.NewLogger("test"))
}

func TestExecuteUnknownToolFallsBackToText(t *testing.T) {
	r := newTestRegistry()
	result := r.Execute(context.Background(), "not_a_real_tool", []byte(`{}`), CallContext{})
	if result.Kind != ResultText {
		t.Fatalf("expected ResultText, got %v", result.Kind)
	}
	if result.Text == "" {
		t.Fatalf("expected a non-empty fallback message")
	}
}

func TestExecuteMalformedArgsIsTolerated(t *testing.T) {
	r := newTestRegistry()
	result := r.Execute(context.Background(), "transfer_to_human", []byte(`not json at all`), CallContext{})
	if result.Kind != ResultHandoff {
		t.Fatalf("expected ResultHandoff even with malformed args, got %v", result.Kind)
	}
}

func TestTransferToHumanDefaultsToNormalPriority(t *testing.T) {
	r := newTestRegistry()
	result := r.Execute(context.Background(), "transfer_to_human", []byte(`{"reason":"customer is upset"}`), CallContext{})
	if result.Kind != ResultHandoff {
		t.Fatalf("expected ResultHandoff, got %v", result.Kind)
	}
	if result.HandoffPriority != PriorityNormal {
		t.Errorf("expected default priority normal, got %v", result.HandoffPriority)
	}
	if result.HandoffReason != "customer is upset" {
		t.Errorf("got reason %q", result.HandoffReason)
	}
}

func TestSchemasDeclareFourTools(t *testing.T) {
	r := newTestRegistry()
	schemas := r.Schemas()
	if len(schemas) != 4 {
		t.Fatalf("expected 4 tool schemas, got %d", len(schemas))
	}
	names := map[string]bool{}
	for _, s := range schemas {
		names[s.Name] = true
	}
	for _, want := range []string{"check_order_status", "register_return", "send_email", "transfer_to_human"} {
		if !names[want] {
			t.Errorf("missing tool schema %q", want)
		}
	}
}
