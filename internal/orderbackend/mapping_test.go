package orderbackend

import (
	"testing"

	"github.com/nayacomm/voicebridge/pkg/callctx"
)

func TestNormalizePhoneIdempotent(t *testing.T) {
	cases := []string{"090-1234-5678", "+819012345678", "819012345678", "09012345678", ""}
	for _, c := range cases {
		once := NormalizePhone(c)
		twice := NormalizePhone(once)
		if once != twice {
			t.Errorf("NormalizePhone not idempotent for %q: once=%q twice=%q", c, once, twice)
		}
	}
}

func TestNormalizePhoneStripsCountryCode(t *testing.T) {
	if got := NormalizePhone("+819012345678"); got != "09012345678" {
		t.Errorf("got %q, want 09012345678", got)
	}
}

func TestMapStatusClosedSet(t *testing.T) {
	cases := map[string]callctx.OrderStatus{
		"10": callctx.StatusPending,
		"20": callctx.StatusPreparing,
		"30": callctx.StatusConfirmed,
		"40": callctx.StatusShipped,
		"50": callctx.StatusDelivered,
		"99": callctx.StatusCancelled,
	}
	for code, want := range cases {
		if got := MapStatus(code); got != want {
			t.Errorf("MapStatus(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestMapStatusUnknownDefaultsToPending(t *testing.T) {
	if got := MapStatus("unknown-code"); got != callctx.StatusPending {
		t.Errorf("got %q, want pending", got)
	}
}

func TestExtractCarrierMatchesTable(t *testing.T) {
	if got := ExtractCarrier("ヤマト運輸(宅急便)"); got != "ヤマト運輸" {
		t.Errorf("got %q, want ヤマト運輸", got)
	}
}

func TestExtractCarrierPassesThroughUnknown(t *testing.T) {
	if got := ExtractCarrier("UnknownCarrier Inc"); got != "UnknownCarrier Inc" {
		t.Errorf("got %q, want verbatim passthrough", got)
	}
}

func TestInferPlatform(t *testing.T) {
	cases := map[string]callctx.Platform{
		"rakuten-store-1": callctx.PlatformRakuten,
		"1000123":         callctx.PlatformRakuten,
		"amazon-jp":       callctx.PlatformAmazon,
		"2000456":         callctx.PlatformAmazon,
		"my-shopify-shop": callctx.PlatformShopify,
	}
	for storeID, want := range cases {
		if got := InferPlatform(storeID); got != want {
			t.Errorf("InferPlatform(%q) = %q, want %q", storeID, got, want)
		}
	}
}
