package util

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestDecodeULEB128(t *testing.T) {
	type arg struct {
		data   []byte
		value  uint64
		length uint32
	}

	args := []arg{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x02}, 2, 1},
		{[]byte{0x7f}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0x81, 0x01}, 129, 2},
		{[]byte{0xe5, 0x8e, 0x26}, 624485, 3},
		{[]byte{}, 0, 0},
		{[]byte{0x80}, 0, 0}, // continuation bit set but no next byte
	}

	for _, arg := range args {
		v, n := DecodeULEB128(bytes.NewBuffer(arg.data))
		if v != arg.value || n != arg.length {
			t.Errorf("DecodeULEB128(% x) = (%d, %d), expected (%d, %d)",
				arg.data, v, n, arg.value, arg.length)
		}
	}
}

func TestDecodeSLEB128(t *testing.T) {
	type arg struct {
		data   []byte
		value  int64
		length uint32
	}

	args := []arg{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x02}, 2, 1},
		{[]byte{0x7e}, -2, 1},
		{[]byte{0xff, 0x00}, 127, 2},
		{[]byte{0x81, 0x7f}, -127, 2},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0x80, 0x7f}, -128, 2},
		{[]byte{}, 0, 0},
	}

	for _, arg := range args {
		v, n := DecodeSLEB128(bytes.NewBuffer(arg.data))
		if v != arg.value || n != arg.length {
			t.Errorf("DecodeSLEB128(% x) = (%d, %d), expected (%d, %d)",
				arg.data, v, n, arg.value, arg.length)
		}
	}
}

func TestParseString(t *testing.T) {
	str, n := ParseString(bytes.NewBuffer([]byte{'m', 'a', 'i', 'n', '.', 'g', 'o', 0x0, 0xff}))
	if str != "main.go" || n != 8 {
		t.Errorf("ParseString = (%q, %d), expected (%q, 8)", str, n, "main.go")
	}

	// no terminator
	str, n = ParseString(bytes.NewBuffer([]byte{'m', 'a', 'i', 'n'}))
	if str != "" || n != 0 {
		t.Errorf("ParseString = (%q, %d), expected (\"\", 0)", str, n)
	}
}

func TestReadUintRaw(t *testing.T) {
	type arg struct {
		data    []byte
		ptrSize int
		value   uint64
	}

	args := []arg{
		{[]byte{0xab}, 1, 0xab},
		{[]byte{0x34, 0x12}, 2, 0x1234},
		{[]byte{0x78, 0x56, 0x34, 0x12}, 4, 0x12345678},
		{[]byte{0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01}, 8, 0x0123456789abcdef},
	}

	for _, arg := range args {
		v, err := ReadUintRaw(bytes.NewReader(arg.data), binary.LittleEndian, arg.ptrSize)
		if err != nil {
			t.Fatal(err)
		}
		if v != arg.value {
			t.Errorf("ReadUintRaw(% x, %d) = %#x, expected %#x", arg.data, arg.ptrSize, v, arg.value)
		}
	}

	if _, err := ReadUintRaw(bytes.NewReader(nil), binary.LittleEndian, 3); err == nil {
		t.Errorf("expected error for unsupported ptr size")
	}
}
