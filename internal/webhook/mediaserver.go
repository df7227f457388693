package webhook

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nayacomm/voicebridge/internal/carrier"
	"github.com/nayacomm/voicebridge/internal/llmsession"
	"github.com/nayacomm/voicebridge/internal/mediator"
	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/tools"
	"github.com/nayacomm/voicebridge/internal/transcript"
	"github.com/nayacomm/voicebridge/pkg/callctx"
)

// MediaServerConfig collects the collaborators the media-socket endpoint
// wires into every Mediator it creates.
type MediaServerConfig struct {
	LLMAPIKey string
	Tools     *tools.Registry
	Sink      transcript.Sink
	Log       *obs.Logger
}

// MediaServer hosts the carrier's media WebSocket endpoint (C3's server
// half) and instantiates one Mediator per accepted connection. Grounded on
// the teacher's TwilioMediaServer.handleWebSocket.
type MediaServer struct {
	cfg      MediaServerConfig
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*mediator.Mediator
}

// NewMediaServer builds a MediaServer.
func NewMediaServer(cfg MediaServerConfig) *MediaServer {
	return &MediaServer{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*mediator.Mediator),
	}
}

// ActiveCalls reports the current session count, surfaced on /health.
func (s *MediaServer) ActiveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ServeHTTP upgrades the connection, waits for the carrier's "start" frame,
// decodes the identification context, then runs a Mediator for the call's
// lifetime.
func (s *MediaServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Log.Printf("upgrade failed: %v", err)
		return
	}

	sess := carrier.NewSession(conn, s.cfg.Log)
	ctx, cancel := context.WithCancel(context.Background())
	sess.Start(ctx)

	start, ok := s.awaitStart(sess, 5*time.Second)
	if !ok {
		cancel()
		sess.Close()
		return
	}

	callID := start.CallID
	callerPhone := start.CustomParameters["callerPhone"]
	ident, err := callctx.DecodeIdentification(start.CustomParameters["customerContext"])
	if err != nil {
		s.cfg.Log.Printf("decode identification context: %v", err)
		ident = callctx.IdentificationContext{Found: false, Error: true}
	}

	llm := llmsession.New(s.cfg.LLMAPIKey, s.cfg.Log)
	m := mediator.New(callID, start.StreamID, callerPhone, ident, sess, llm, s.cfg.Tools, s.cfg.Sink, s.cfg.Log.WithCall(callID))

	s.mu.Lock()
	s.sessions[callID] = m
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, callID)
		s.mu.Unlock()
		cancel()
	}()

	m.Run(ctx)
}

func (s *MediaServer) awaitStart(sess *carrier.Session, timeout time.Duration) (*carrier.StartPayload, bool) {
	deadline := time.After(timeout)
	for {
		select {
		case frame, ok := <-sess.Inbound():
			if !ok {
				return nil, false
			}
			if frame.Kind == carrier.EventStart && frame.Start != nil {
				return frame.Start, true
			}
		case <-deadline:
			s.cfg.Log.Printf("timed out waiting for start frame")
			return nil, false
		}
	}
}

// HealthHandler serves GET /health, per §6.
func HealthHandler(ms *MediaServer, version, environment string, features map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","timestamp":%q,"version":%q,"environment":%q,"activeCalls":%d,"features":%s}`,
			time.Now().Format(time.RFC3339), version, environment, ms.ActiveCalls(), featuresJSON(features))
	}
}

func featuresJSON(features map[string]bool) string {
	out := "{"
	first := true
	for k, v := range features {
		if !first {
			out += ","
		}
		first = false
		out += fmt.Sprintf("%q:%v", k, v)
	}
	return out + "}"
}
