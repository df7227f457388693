// Package webhook implements the inbound call-start HTTP handler (C8):
// synchronous caller identification, then response XML instructing the
// carrier to open the media WebSocket with encoded context parameters.
// Grounded on the teacher's pkg/server/twilio_server.go handleTwiML
// (html/template-based XML, form-value parsing).
package webhook

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/orderbackend"
	"github.com/nayacomm/voicebridge/pkg/callctx"
)

// Handler serves the carrier's call-start webhook.
type Handler struct {
	backend     *orderbackend.Client
	mediaPath   string
	publicHost  string
	log         *obs.Logger
}

// New builds a webhook Handler. mediaPath is the path component of the
// media WebSocket endpoint (e.g. "/media-stream"); publicHost is the host
// written into the stream URL, whose scheme is ws:// when the inbound
// request host is loopback and wss:// otherwise.
func New(backend *orderbackend.Client, mediaPath, publicHost string, logger *obs.Logger) *Handler {
	return &Handler{backend: backend, mediaPath: mediaPath, publicHost: publicHost, log: logger}
}

// ServeHTTP implements the contract from §4.8: parse CallSid/From,
// SearchByPhone synchronously within the response deadline, then emit the
// <Connect><Stream> XML with the three named parameters.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	callSid := r.FormValue("CallSid")
	from := r.FormValue("From")

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident := h.backend.SearchByPhone(ctx, from)
	encoded, err := callctx.EncodeIdentification(ident)
	if err != nil {
		h.log.Printf("encode identification context: %v", err)
		encoded, _ = callctx.EncodeIdentification(callctx.IdentificationContext{Found: false, Error: true})
	}

	scheme := "wss"
	if isLocalHost(r.Host) {
		scheme = "ws"
	}
	streamURL := scheme + "://" + h.publicHost + h.mediaPath

	w.Header().Set("Content-Type", "text/xml")
	if err := streamTmpl.Execute(w, streamView{
		StreamURL:       streamURL,
		CustomerContext: encoded,
		CallerPhone:     from,
		CallSid:         callSid,
	}); err != nil {
		h.log.Printf("render stream TwiML: %v", err)
	}
}

func isLocalHost(host string) bool {
	h := host
	if idx := strings.LastIndexByte(h, ':'); idx >= 0 && !strings.HasSuffix(h, "]") {
		h = h[:idx]
	}
	h = strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
	return h == "localhost" || h == "127.0.0.1" || h == "::1"
}
