package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/orderbackend"
)

func TestIsLocalHost(t *testing.T) {
	cases := map[string]bool{
		"localhost:3000": true,
		"127.0.0.1:3000": true,
		"::1:3000":       true,
		"example.com":    false,
		"voicebridge.example.com:443": false,
	}
	for host, want := range cases {
		if got := isLocalHost(host); got != want {
			t.Errorf("isLocalHost(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestServeHTTPEscapesInjectedValues(t *testing.T) {
	backend := orderbackend.New(orderbackend.Config{BaseURL: "http://backend.invalid"}, obs.NewLogger("test"))
	h := New(backend, "/media-stream", "localhost:3000", obs.NewLogger("test"))

	form := url.Values{
		"CallSid": {`CA"><script>alert(1)</script>`},
		"From":    {"+819012345678"},
	}
	req := httptest.NewRequest(http.MethodPost, "/voice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Host = "localhost:3000"
	req = req.WithContext(context.Background())
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("expected the injected CallSid to be escaped, got body: %s", body)
	}
	if !strings.Contains(body, "<Connect>") {
		t.Fatalf("expected a <Connect><Stream> response, got: %s", body)
	}
	if !strings.Contains(body, "ws://localhost:3000/media-stream") {
		t.Fatalf("expected a ws:// URL for a localhost request, got: %s", body)
	}
}
