package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is a sealed interface over the two shapes a stored form payload can
// take. Only Structured and RawText implement it.
//
// The store keeps payloads as opaque TEXT. A value that round-trips through
// JSON is a Structured payload; anything else is RawText. Making the split a
// tagged variant keeps the ambiguity explicit at the boundary instead of
// hiding it behind a parse-and-fallback trick.
type Payload interface {
	payload() // Sealed - only these types implement it
}

// Structured is a JSON-serializable payload (mapping, sequence, or any value
// encoding/json accepts). The store guarantees nothing about its shape;
// callers must validate.
type Structured struct {
	Value any
}

func (Structured) payload() {}

// RawText is a payload stored verbatim, either because the caller supplied a
// non-JSON value or because the stored text does not parse as JSON.
type RawText string

func (RawText) payload() {}

// NewStructured wraps v as a Structured payload.
func NewStructured(v any) Structured {
	return Structured{Value: v}
}

// PayloadFromAny converts an arbitrary caller value into a Payload the way
// the original forms ever did: mappings and sequences become Structured,
// everything else is stringified into RawText.
func PayloadFromAny(v any) Payload {
	switch v.(type) {
	case map[string]any, []any:
		return Structured{Value: v}
	case Payload:
		return v.(Payload)
	default:
		return RawText(fmt.Sprint(v))
	}
}

// EncodePayload serializes a payload to the stored TEXT form. Structured
// values are encoded without HTML escaping and with two-space indentation so
// Arabic text stays readable in the database. RawText is stored verbatim.
func EncodePayload(p Payload) (string, error) {
	switch v := p.(type) {
	case Structured:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v.Value); err != nil {
			return "", fmt.Errorf("encode payload: %w", err)
		}
		// Encoder adds a trailing newline, remove it
		return strings.TrimRight(buf.String(), "\n"), nil
	case RawText:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("encode payload: nil payload")
	default:
		return "", fmt.Errorf("encode payload: unknown variant %T", p)
	}
}

// DecodePayload parses stored TEXT back into a Payload. Valid JSON becomes
// Structured; anything else is returned untouched as RawText.
func DecodePayload(text string) Payload {
	dec := json.NewDecoder(strings.NewReader(text))
	var v any
	if err := dec.Decode(&v); err != nil {
		return RawText(text)
	}
	// Reject trailing garbage ("12 oranges" decodes 12 then stops).
	if dec.More() {
		return RawText(text)
	}
	return Structured{Value: v}
}
