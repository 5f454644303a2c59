package codec

import (
	"bytes"
	"testing"
)

type record struct {
	Kind  string `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint"`
}

func TestMarshal_Deterministic(t *testing.T) {
	r := record{Kind: "symmetric", Value: []byte{1, 2, 3}}

	first, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	second, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("encoding is not deterministic")
	}

	var decoded record
	if err := Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Kind != r.Kind || !bytes.Equal(decoded.Value, r.Value) {
		t.Errorf("decoded = %+v, want %+v", decoded, r)
	}
}

func TestUnmarshal_IgnoresUnknownFields(t *testing.T) {
	type newer struct {
		Kind  string `cbor:"1,keyasint"`
		Value []byte `cbor:"2,keyasint"`
		Extra string `cbor:"9,keyasint"`
	}

	data, err := Marshal(newer{Kind: "password", Value: []byte("x"), Extra: "future"})
	if err != nil {
		t.Fatal(err)
	}

	var decoded record
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Kind != "password" {
		t.Errorf("Kind = %q, want %q", decoded.Kind, "password")
	}
}

func TestUnmarshal_Garbage(t *testing.T) {
	var decoded record
	if err := Unmarshal([]byte{0xff, 0x00}, &decoded); err == nil {
		t.Error("expected error for malformed CBOR")
	}
}
