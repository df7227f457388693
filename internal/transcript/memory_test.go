package transcript

import (
	"context"
	"testing"
)

func TestMemorySinkPreservesMessageOrder(t *testing.T) {
	s := NewMemorySink()
	ref := s.StartCall(context.Background(), StartParams{CallID: "call-1", CallerPhone: "09012345678"})

	s.AppendMessage(context.Background(), ref, MessageParams{Speaker: SpeakerAssistant, Content: "いらっしゃいませ"})
	s.AppendMessage(context.Background(), ref, MessageParams{Speaker: SpeakerCaller, Content: "注文の件で"})
	s.AppendToolCall(context.Background(), ref, ToolCallParams{Name: "check_order_status", Arguments: `{}`, Result: "ok"})
	s.AppendMessage(context.Background(), ref, MessageParams{Speaker: SpeakerAssistant, Content: "確認しました"})

	got := s.Messages(ref)
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d: %+v", len(got), got)
	}
	wantOrder := []Speaker{SpeakerAssistant, SpeakerCaller, SpeakerAssistant}
	for i, w := range wantOrder {
		if got[i].Speaker != w {
			t.Errorf("message %d: got speaker %q, want %q", i, got[i].Speaker, w)
		}
	}
}

func TestMemorySinkUnknownRefIsNoop(t *testing.T) {
	s := NewMemorySink()
	s.AppendMessage(context.Background(), Ref("missing"), MessageParams{Speaker: SpeakerCaller, Content: "hello"})
	if got := s.Messages(Ref("missing")); got != nil {
		t.Fatalf("expected nil for unknown ref, got %+v", got)
	}
}

func TestMemorySinkEndCallRecordsDuration(t *testing.T) {
	s := NewMemorySink()
	ref := s.StartCall(context.Background(), StartParams{CallID: "call-2"})
	s.EndCall(context.Background(), ref, EndParams{DurationSeconds: 42})
	if s.calls[ref].duration != 42 {
		t.Fatalf("expected duration 42, got %d", s.calls[ref].duration)
	}
}
