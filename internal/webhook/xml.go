package webhook

import (
	"html/template"
	"strings"
)

// streamView is the html/template data for the media-stream response XML.
// html/template auto-escapes every field, satisfying §4.8's XML-escaping
// requirement without a hand-rolled escaper. StreamURL is built from
// configuration, not request data, so it goes through streamURL: otherwise
// html/template would replace its ws:// or wss:// scheme with "#ZgotmplZ".
type streamView struct {
	StreamURL       string
	CustomerContext string
	CallerPhone     string
	CallSid         string
}

var streamTmpl = template.Must(template.New("stream").Funcs(template.FuncMap{
	"streamURL": func(s string) template.URL { return template.URL(s) },
}).Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Connect>
    <Stream url="{{streamURL .StreamURL}}">
      <Parameter name="customerContext" value="{{.CustomerContext}}"/>
      <Parameter name="callerPhone" value="{{.CallerPhone}}"/>
      <Parameter name="callSid" value="{{.CallSid}}"/>
    </Stream>
  </Connect>
</Response>`))

// transferView is the blind-transfer XML builder from §4.8 — not on the
// critical path; the handoff tool remains spoken-only per the Open Question
// decision in DESIGN.md, but the builder exists as the documented extension
// point.
type transferView struct {
	Number            string
	StatusCallbackURL string
}

var transferTmpl = template.Must(template.New("transfer").Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Dial>
    <Number statusCallback="{{.StatusCallbackURL}}">{{.Number}}</Number>
  </Dial>
</Response>`))

// holdMusicView is the hold-music XML builder from §4.8, also not on the
// critical path.
type holdMusicView struct {
	AudioURL string
}

var holdMusicTmpl = template.Must(template.New("hold").Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Play loop="0">{{.AudioURL}}</Play>
</Response>`))

// RenderTransfer builds the blind-transfer XML for a human handoff.
func RenderTransfer(number, statusCallbackURL string) (string, error) {
	return renderTemplate(transferTmpl, transferView{Number: number, StatusCallbackURL: statusCallbackURL})
}

// RenderHoldMusic builds the hold-music XML played while a transfer connects.
func RenderHoldMusic(audioURL string) (string, error) {
	return renderTemplate(holdMusicTmpl, holdMusicView{AudioURL: audioURL})
}

func renderTemplate(t *template.Template, data interface{}) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
