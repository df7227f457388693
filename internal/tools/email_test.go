package tools

import (
	"strings"
	"testing"
)

func TestRenderEmailTemplateTrackingFillsOrderDetails(t *testing.T) {
	cc := CallContext{
		CustomerName:   "山田太郎",
		OrderID:        "R-42",
		Carrier:        "ヤマト運輸",
		TrackingNumber: "1234-5678-9012",
		TrackingURL:    "https://toi.kuronekoyamato.co.jp/cgi-bin/tneko?number=1234-5678-9012",
	}
	_, body, ok := renderEmailTemplate("tracking", cc, "テスト店舗")
	if !ok {
		t.Fatalf("expected tracking template to render")
	}
	for _, want := range []string{"山田太郎", "R-42", "ヤマト運輸", "1234-5678-9012", "kuronekoyamato", "テスト店舗"} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered body missing %q: %s", want, body)
		}
	}
}

func TestRenderEmailTemplateUnknownNameFails(t *testing.T) {
	if _, _, ok := renderEmailTemplate("not_a_template", CallContext{}, "店"); ok {
		t.Fatalf("expected unknown template to fail")
	}
}
