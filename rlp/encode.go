// Package rlp implements the subset of Recursive Length Prefix encoding
// the node actually puts on the wire: unsigned integers, byte strings,
// and ordered lists (including nested lists). It is not a full RLP
// implementation — no big.Int, no interface encoding — only what the
// crawler's wire types need.
package rlp

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedType is returned when EncodeToBytes/DecodeBytes is asked
// to handle a Go type this package doesn't know how to put on the wire.
var ErrUnsupportedType = errors.New("rlp: unsupported type")

// EncodeToBytes returns the RLP encoding of val, which must be a struct,
// slice, string, bool, byte slice, or unsigned integer (or a pointer to
// one of those).
func EncodeToBytes(val interface{}) ([]byte, error) {
	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("rlp: cannot encode nil pointer")
		}
		v = v.Elem()
	}
	return encodeValue(v)
}

func encodeValue(v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.String:
		return encodeBytes([]byte(v.String())), nil
	case reflect.Bool:
		if v.Bool() {
			return encodeBytes([]byte{1}), nil
		}
		return encodeBytes(nil), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeBytes(uintToMinimalBytes(v.Uint())), nil
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return encodeBytes(byteSliceOf(v)), nil
		}
		var payload []byte
		for i := 0; i < v.Len(); i++ {
			enc, err := encodeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			payload = append(payload, enc...)
		}
		return encodeList(payload), nil
	case reflect.Struct:
		var payload []byte
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue // unexported
			}
			enc, err := encodeValue(v.Field(i))
			if err != nil {
				return nil, err
			}
			payload = append(payload, enc...)
		}
		return encodeList(payload), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Kind())
	}
}

func byteSliceOf(v reflect.Value) []byte {
	if v.Kind() == reflect.Array {
		return byteArrayBytes(v, v.Len())
	}
	return v.Bytes()
}

func uintToMinimalBytes(x uint64) []byte {
	if x == 0 {
		return nil
	}
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(x)
		x >>= 8
	}
	i := 0
	for i < 8 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

func encodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	return append(lengthPrefix(0x80, 0xb7, len(b)), b...)
}

func encodeList(payload []byte) []byte {
	return append(lengthPrefix(0xc0, 0xf7, len(payload)), payload...)
}

// lengthPrefix builds the RLP header for a string/list of the given
// payload length: shortBase+len for len<=55, otherwise longBase+len(lenBytes)
// followed by the big-endian length.
func lengthPrefix(shortBase, longBase byte, n int) []byte {
	if n <= 55 {
		return []byte{shortBase + byte(n)}
	}
	lb := uintToMinimalBytes(uint64(n))
	return append([]byte{longBase + byte(len(lb))}, lb...)
}
