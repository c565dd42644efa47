package rlp

import (
	"bytes"
	"testing"
)

type innerWire struct {
	Threshold uint64
	Labels    []string
}

type outerWire struct {
	Name   string
	Count  uint64
	Active bool
	Raw    []byte
	Inner  innerWire
	More   []innerWire
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := outerWire{
		Name:   "alice",
		Count:  300,
		Active: true,
		Raw:    []byte{0xde, 0xad, 0xbe, 0xef},
		Inner:  innerWire{Threshold: 2, Labels: []string{"a", "b"}},
		More: []innerWire{
			{Threshold: 1, Labels: []string{"x"}},
			{Threshold: 0, Labels: nil},
		},
	}
	enc, err := EncodeToBytes(&in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out outerWire
	if err := DecodeBytes(enc, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name != in.Name || out.Count != in.Count || out.Active != in.Active {
		t.Fatalf("scalar mismatch: got %+v", out)
	}
	if !bytes.Equal(out.Raw, in.Raw) {
		t.Fatalf("raw mismatch: got %x want %x", out.Raw, in.Raw)
	}
	if out.Inner.Threshold != 2 || len(out.Inner.Labels) != 2 {
		t.Fatalf("inner mismatch: %+v", out.Inner)
	}
	if len(out.More) != 2 || out.More[0].Threshold != 1 || out.More[1].Threshold != 0 {
		t.Fatalf("nested slice mismatch: %+v", out.More)
	}
}

func TestEncodeZeroUintIsEmptyString(t *testing.T) {
	enc, err := EncodeToBytes(&struct{ N uint64 }{N: 0})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// list(len=1) containing the empty-string encoding of zero (0x80).
	if len(enc) != 2 || enc[1] != 0x80 {
		t.Fatalf("unexpected zero encoding: % x", enc)
	}
}

func TestDecodeRejectsCorruptInput(t *testing.T) {
	var out outerWire
	if err := DecodeBytes([]byte{0xff, 0xff, 0xff}, &out); err == nil {
		t.Fatalf("expected error decoding corrupt input")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	enc, err := EncodeToBytes(&struct{ N uint64 }{N: 5})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	enc = append(enc, 0x00)
	var out struct{ N uint64 }
	if err := DecodeBytes(enc, &out); err == nil {
		t.Fatalf("expected trailing byte error")
	}
}

func TestEncodeEmptyStruct(t *testing.T) {
	enc, err := EncodeToBytes(&innerWire{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out innerWire
	if err := DecodeBytes(enc, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Threshold != 0 || len(out.Labels) != 0 {
		t.Fatalf("unexpected decode of empty struct: %+v", out)
	}
}
