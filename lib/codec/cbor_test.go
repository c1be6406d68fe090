// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sampleEnvelope struct {
	RequestID string `cbor:"request_id"`
	Command   string `cbor:"command"`
	Stream    bool   `cbor:"stream"`
}

type sampleParams struct {
	Symbol string `json:"symbol"`
	Qty    int    `json:"qty,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleEnvelope{RequestID: "abc", Command: "quote.snapshot", Stream: true}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleEnvelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"symbol": "AAPL", "side": "buy", "qty": 100}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestJSONTagFallback(t *testing.T) {
	original := sampleParams{Symbol: "MSFT", Qty: 5}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var generic map[string]any
	if err := Unmarshal(data, &generic); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	if generic["symbol"] != "MSFT" {
		t.Errorf("symbol key = %v, want MSFT (json tag name)", generic["symbol"])
	}
}

func TestAnyMapsDecodeWithStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"quotes": []any{map[string]any{"symbol": "AAPL"}}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	quotes, ok := top["quotes"].([]any)
	if !ok || len(quotes) != 1 {
		t.Fatalf("quotes = %#v", top["quotes"])
	}
	if _, ok := quotes[0].(map[string]any); !ok {
		t.Errorf("nested map decoded as %T, want map[string]any", quotes[0])
	}
}

func TestUnmarshalRejectsTrailingBytes(t *testing.T) {
	first, _ := Marshal("one")
	second, _ := Marshal("two")

	var value string
	if err := Unmarshal(append(first, second...), &value); err == nil {
		t.Error("Unmarshal should reject extraneous data after the first item")
	}
}

func TestValid(t *testing.T) {
	data, _ := Marshal(map[string]any{"ok": true})
	if err := Valid(data); err != nil {
		t.Errorf("Valid(well-formed) = %v", err)
	}
	if err := Valid([]byte{0xFF, 0xFE}); err == nil {
		t.Error("Valid should reject malformed CBOR")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"command": "daemon.status"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"daemon.status"`) {
		t.Errorf("notation %q does not contain the command", notation)
	}
}

func BenchmarkMarshal(b *testing.B) {
	envelope := sampleEnvelope{RequestID: "4f9c", Command: "quote.snapshot"}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(envelope)
	}
}
