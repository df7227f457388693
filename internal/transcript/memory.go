package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// call is one in-memory call record.
type call struct {
	params    StartParams
	messages  []MessageParams
	toolCalls []ToolCallParams
	startedAt time.Time
	duration  int
}

// MemorySink is a process-local, mutex-guarded implementation used in
// development and as the no-op-equivalent placeholder per §6 when no
// transcript store URL is configured.
type MemorySink struct {
	mu    sync.Mutex
	calls map[Ref]*call
}

// NewMemorySink builds an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{calls: make(map[Ref]*call)}
}

func (s *MemorySink) StartCall(ctx context.Context, p StartParams) Ref {
	ref := Ref("mem_" + uuid.New().String()[:8])
	s.mu.Lock()
	s.calls[ref] = &call{params: p, startedAt: time.Now()}
	s.mu.Unlock()
	return ref
}

func (s *MemorySink) AppendMessage(ctx context.Context, ref Ref, p MessageParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[ref]; ok {
		c.messages = append(c.messages, p)
	}
}

func (s *MemorySink) AppendToolCall(ctx context.Context, ref Ref, p ToolCallParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[ref]; ok {
		c.toolCalls = append(c.toolCalls, p)
	}
}

func (s *MemorySink) EndCall(ctx context.Context, ref Ref, p EndParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[ref]; ok {
		c.duration = p.DurationSeconds
	}
}

// Messages returns a copy of the messages recorded for ref, in arrival
// order — used by tests asserting P7 (transcript ordering).
func (s *MemorySink) Messages(ref Ref) []MessageParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calls[ref]
	if !ok {
		return nil
	}
	out := make([]MessageParams, len(c.messages))
	copy(out, c.messages)
	return out
}
