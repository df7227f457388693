package callctx

import "testing"

func TestEncodeDecodeIdentificationRoundTrip(t *testing.T) {
	ic := IdentificationContext{
		Found:        true,
		CustomerName: "山田太郎",
		GreetingHint: "greet by name",
		Orders: []OrderSummary{
			{OrderID: "A-1", Status: StatusShipped, OrderDate: "2026-07-01", Carrier: "ヤマト運輸", TrackingNumber: "123456", TotalAmount: 4980},
		},
	}

	encoded, err := EncodeIdentification(ic)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeIdentification(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Found != ic.Found || decoded.CustomerName != ic.CustomerName {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, ic)
	}
	if len(decoded.Orders) != 1 || decoded.Orders[0].OrderID != "A-1" {
		t.Fatalf("order summary lost in round trip: %+v", decoded.Orders)
	}
}

func TestEncodeDecodeIdentificationEmpty(t *testing.T) {
	ic := IdentificationContext{Found: false}
	encoded, err := EncodeIdentification(ic)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeIdentification(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Found {
		t.Fatalf("expected Found=false, got true")
	}
	if len(decoded.Orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(decoded.Orders))
	}
}

func TestDecodeIdentificationMalformedBase64(t *testing.T) {
	if _, err := DecodeIdentification("not-valid-base64!!"); err == nil {
		t.Fatalf("expected an error for malformed base64")
	}
}

func TestDecodeIdentificationMalformedJSON(t *testing.T) {
	// valid base64, but not valid JSON once decoded
	garbage := "bm90IGpzb24="
	if _, err := DecodeIdentification(garbage); err == nil {
		t.Fatalf("expected an error for malformed JSON payload")
	}
}
