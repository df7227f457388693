package callctx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// EncodeIdentification serializes an IdentificationContext into the base64
// blob carried as the "customerContext" stream parameter. Treat the result
// as opaque bytes on the wire; only DecodeIdentification interprets it.
func EncodeIdentification(ic IdentificationContext) (string, error) {
	raw, err := json.Marshal(ic)
	if err != nil {
		return "", fmt.Errorf("callctx: marshal identification context: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeIdentification reverses EncodeIdentification. Malformed input is
// never fatal to the call: callers should fall back to a neutral
// IdentificationContext{Found:false,Error:true} on error.
func DecodeIdentification(encoded string) (IdentificationContext, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return IdentificationContext{}, fmt.Errorf("callctx: decode base64: %w", err)
	}
	var ic IdentificationContext
	if err := json.Unmarshal(raw, &ic); err != nil {
		return IdentificationContext{}, fmt.Errorf("callctx: unmarshal identification context: %w", err)
	}
	return ic, nil
}
