package tools

import (
	"context"
	"fmt"
	"net/smtp"
)

// emailTemplates is the small parameterized table from §4.4, parameterized
// by {customerName, orderId, carrier, trackingNumber, trackingUrl, shopName}.
var emailTemplates = map[string]struct {
	subject string
	body    string
}{
	"tracking":    {subject: "お荷物の配送状況について", body: "%sさま\n\nご注文番号%sの配送状況をご案内いたします。\n配送業者: %s\n追跡番号: %s\n追跡URL: %s\n\n%s"},
	"return_form": {subject: "返品手続きのご案内", body: "%sさま\n\nご注文番号%sの返品手続き用フォームをお送りいたします。\n\n%s"},
	"callback":    {subject: "折り返しご連絡について", body: "%sさま\n\n担当者より折り返しご連絡させていただきます。\n\n%s"},
}

// renderEmailTemplate fills name's template from cc's latest-order fields
// and shopName. Missing tracking details leave their labelled line in place
// with an empty value rather than dropping it, matching the fixed-slot table
// above.
func renderEmailTemplate(name string, cc CallContext, shopName string) (subject, body string, ok bool) {
	tpl, found := emailTemplates[name]
	if !found {
		return "", "", false
	}
	switch name {
	case "tracking":
		return tpl.subject, fmt.Sprintf(tpl.body, cc.CustomerName, cc.OrderID, cc.Carrier, cc.TrackingNumber, cc.TrackingURL, shopName), true
	case "return_form":
		return tpl.subject, fmt.Sprintf(tpl.body, cc.CustomerName, cc.OrderID, shopName), true
	default:
		return tpl.subject, fmt.Sprintf(tpl.body, cc.CustomerName, shopName), true
	}
}

// SMTPSender sends templated emails via net/smtp, the stdlib package — the
// teacher has no email adapter of its own to generalize and nothing in the
// pack shows a richer mail client, so plain net/smtp is the right-sized
// tool for a single templated-send operation.
type SMTPSender struct {
	Host string
	From string
	Auth smtp.Auth
}

// NoopSender is wired when SMTP_HOST is unset, per §6: "the corresponding
// adapter turns into a no-op."
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, to, subject, body string) error { return nil }

func (s SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := []byte("To: " + to + "\r\nSubject: " + subject + "\r\n\r\n" + body)
	return smtp.SendMail(s.Host, s.Auth, s.From, []string{to}, msg)
}
