// Package carrier implements the WebSocket server endpoint for carrier
// media frames (C3): inbound event parse, outbound media/mark/clear. Audio
// is passed through opaquely in the carrier-native codec — this bridge's
// Non-goals explicitly forbid transcoding, unlike the teacher's
// TwilioConnection, which resamples 8kHz<->16kHz for its own pipeline; that
// resampling step is deleted here, not adapted (see DESIGN.md).
package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/nayacomm/voicebridge/internal/obs"
)

// EventKind is the closed set of inbound/outbound frame kinds from §4.3.
type EventKind string

const (
	EventConnected EventKind = "connected"
	EventStart     EventKind = "start"
	EventMedia     EventKind = "media"
	EventStop      EventKind = "stop"
	EventMark      EventKind = "mark"
	EventClear     EventKind = "clear"
)

// Frame is the wire shape of every carrier media-socket message, narrowed
// from the teacher's TwilioMediaMessage to the fields this bridge needs.
type Frame struct {
	Event          EventKind         `json:"event"`
	SequenceNumber string            `json:"sequenceNumber,omitempty"`
	StreamID       string            `json:"streamSid,omitempty"`
	Start          *StartPayload     `json:"start,omitempty"`
	Media          *MediaPayload     `json:"media,omitempty"`
	Mark           *MarkPayload      `json:"mark,omitempty"`
}

// StartPayload carries the identification context and caller identity C8
// embedded as custom parameters.
type StartPayload struct {
	CallID           string            `json:"callSid"`
	StreamID         string            `json:"streamSid"`
	CustomParameters map[string]string `json:"customParameters"`
}

// MediaPayload is one opaque, carrier-native-codec audio frame.
type MediaPayload struct {
	Payload string `json:"payload"`
}

// MarkPayload names a previously emitted marker; "audio-complete" is the
// one name the turn arbiter acts on.
type MarkPayload struct {
	Name string `json:"name"`
}

const MarkAudioComplete = "audio-complete"

// Inbound is one parsed frame delivered to the mediator in arrival order.
type Inbound struct {
	Kind  EventKind
	Start *StartPayload
	Media *MediaPayload
	Mark  *MarkPayload
}

// Session is one carrier media WebSocket connection, owned by exactly one
// call's mediator. Structure (readPump/writePump, closeWg/atomic closed/
// writeMu) is grounded on the teacher's TwilioConnection.
type Session struct {
	conn   *websocket.Conn
	log    *obs.Logger
	in     chan Inbound
	out    chan Frame
	closed atomic.Bool
	closeMu sync.Mutex
	closeWg sync.WaitGroup
	writeMu sync.Mutex
}

// NewSession wraps an already-upgraded WebSocket connection.
func NewSession(conn *websocket.Conn, logger *obs.Logger) *Session {
	return &Session{
		conn: conn,
		log:  logger,
		in:   make(chan Inbound, 32),
		out:  make(chan Frame, 32),
	}
}

// Inbound returns the channel of parsed frames in arrival order.
func (s *Session) Inbound() <-chan Inbound { return s.in }

// Start spawns the read and write pumps.
func (s *Session) Start(ctx context.Context) {
	s.closeWg.Add(2)
	go s.readPump(ctx)
	go s.writePump(ctx)
}

func (s *Session) readPump(ctx context.Context) {
	defer s.closeWg.Done()
	defer close(s.in)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Printf("read pump closed: %v", err)
			return
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			// CarrierMalformed per §7: log, drop, never kill the call.
			s.log.Printf("malformed frame dropped: %v", err)
			continue
		}
		select {
		case s.in <- toInbound(f):
		case <-ctx.Done():
			return
		}
	}
}

func toInbound(f Frame) Inbound {
	return Inbound{Kind: f.Event, Start: f.Start, Media: f.Media, Mark: f.Mark}
}

func (s *Session) writePump(ctx context.Context) {
	defer s.closeWg.Done()
	for {
		select {
		case frame, ok := <-s.out:
			if !ok {
				return
			}
			s.writeMu.Lock()
			err := s.conn.WriteJSON(frame)
			s.writeMu.Unlock()
			if err != nil {
				s.log.Printf("write pump error: %v", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// SendMedia forwards one opaque assistant audio frame to the carrier.
func (s *Session) SendMedia(streamID, base64Payload string) error {
	return s.enqueue(Frame{Event: EventMedia, StreamID: streamID, Media: &MediaPayload{Payload: base64Payload}})
}

// SendMark emits a named marker the carrier will echo back once it has
// finished playing everything queued before it.
func (s *Session) SendMark(streamID, name string) error {
	return s.enqueue(Frame{Event: EventMark, StreamID: streamID, Mark: &MarkPayload{Name: name}})
}

// Clear discards any assistant audio the carrier has queued but not yet
// played — used alongside barge-in cancellation.
func (s *Session) Clear(streamID string) error {
	return s.enqueue(Frame{Event: EventClear, StreamID: streamID})
}

func (s *Session) enqueue(f Frame) error {
	if s.closed.Load() {
		return fmt.Errorf("carrier: session closed")
	}
	select {
	case s.out <- f:
		return nil
	default:
		return fmt.Errorf("carrier: output buffer full")
	}
}

// Close is idempotent; it closes the socket then waits for both pumps.
func (s *Session) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed.Swap(true) {
		return nil
	}
	err := s.conn.Close()
	close(s.out)
	s.closeWg.Wait()
	return err
}
