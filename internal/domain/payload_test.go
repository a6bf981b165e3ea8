package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePayload_Structured(t *testing.T) {
	text, err := EncodePayload(NewStructured(map[string]any{
		"الاسم": "أحمد",
		"score": 95,
	}))
	require.NoError(t, err)

	// Arabic stays readable: no \uXXXX escapes, no HTML escaping.
	assert.Contains(t, text, "أحمد")
	assert.NotContains(t, text, `\u`)
	assert.Equal(t, "{\n  \"score\": 95,\n  \"الاسم\": \"أحمد\"\n}", text)
}

func TestEncodePayload_RawTextVerbatim(t *testing.T) {
	text, err := EncodePayload(RawText("not json {{{"))
	require.NoError(t, err)
	assert.Equal(t, "not json {{{", text)
}

func TestEncodePayload_NilPayload(t *testing.T) {
	_, err := EncodePayload(nil)
	assert.Error(t, err)
}

func TestEncodePayload_UnencodableValue(t *testing.T) {
	_, err := EncodePayload(NewStructured(make(chan int)))
	assert.Error(t, err)
}

func TestDecodePayload_ValidJSON(t *testing.T) {
	p := DecodePayload(`{"a": 1, "b": ["x"]}`)
	s, ok := p.(Structured)
	require.True(t, ok, "expected Structured, got %T", p)
	assert.Equal(t, map[string]any{"a": float64(1), "b": []any{"x"}}, s.Value)
}

func TestDecodePayload_InvalidJSONFallsBackToRaw(t *testing.T) {
	p := DecodePayload("ملاحظة حرة بدون تنسيق")
	r, ok := p.(RawText)
	require.True(t, ok, "expected RawText, got %T", p)
	assert.Equal(t, "ملاحظة حرة بدون تنسيق", string(r))
}

func TestDecodePayload_TrailingGarbageIsRaw(t *testing.T) {
	// "12 oranges" decodes 12 and stops; the whole text must stay raw.
	p := DecodePayload("12 oranges")
	r, ok := p.(RawText)
	require.True(t, ok, "expected RawText, got %T", p)
	assert.Equal(t, "12 oranges", string(r))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := map[string]any{
		"المتدرب": "سارة",
		"درجات":   []any{float64(80), float64(92)},
		"ناجح":    true,
	}

	text, err := EncodePayload(NewStructured(original))
	require.NoError(t, err)

	p := DecodePayload(text)
	s, ok := p.(Structured)
	require.True(t, ok, "expected Structured, got %T", p)
	assert.Equal(t, original, s.Value)
}

func TestPayloadFromAny(t *testing.T) {
	if _, ok := PayloadFromAny(map[string]any{"k": "v"}).(Structured); !ok {
		t.Error("mapping should become Structured")
	}
	if _, ok := PayloadFromAny([]any{1, 2}).(Structured); !ok {
		t.Error("sequence should become Structured")
	}
	if got, ok := PayloadFromAny(42).(RawText); !ok || string(got) != "42" {
		t.Errorf("scalar should become stringified RawText, got %v", got)
	}
	if got, ok := PayloadFromAny(RawText("x")).(RawText); !ok || string(got) != "x" {
		t.Errorf("existing payload should pass through, got %v", got)
	}
}
