// Package util contains the primitive decoders shared by the DWARF
// section parsers: LEB128 variable-length integers, NUL-terminated
// strings and fixed-width unsigned integers.
package util

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// DecodeULEB128 decodes an unsigned Little Endian Base 128 represented
// number, returning the value and the number of bytes consumed. A
// consumed length of 0 indicates the reader was exhausted before a
// complete number was read.
func DecodeULEB128(buf io.ByteReader) (uint64, uint32) {
	var (
		result uint64
		shift  uint64
		length uint32
	)

	for {
		b, err := buf.ReadByte()
		if err != nil {
			return 0, 0
		}
		length++

		result |= uint64(b&0x7f) << shift

		// high order bit 0 means this is the last byte
		if b&0x80 == 0 {
			break
		}

		shift += 7
	}

	return result, length
}

// DecodeSLEB128 decodes a signed Little Endian Base 128 represented
// number, returning the value and the number of bytes consumed. A
// consumed length of 0 indicates the reader was exhausted before a
// complete number was read.
func DecodeSLEB128(buf io.ByteReader) (int64, uint32) {
	var (
		b      byte
		err    error
		result int64
		shift  uint64
		length uint32
	)

	for {
		b, err = buf.ReadByte()
		if err != nil {
			return 0, 0
		}
		length++

		result |= int64(b&0x7f) << shift
		shift += 7

		if b&0x80 == 0 {
			break
		}
	}

	// sign extend negative numbers
	if b&0x40 != 0 && shift < 64 {
		result |= -(int64(1) << shift)
	}

	return result, length
}

// ParseString reads a NUL-terminated string, returning the string
// without the terminator and the number of bytes consumed (terminator
// included). A consumed length of 0 indicates the terminator was never
// found.
func ParseString(data *bytes.Buffer) (string, uint32) {
	str, err := data.ReadString(0x0)
	if err != nil {
		return "", 0
	}

	return str[:len(str)-1], uint32(len(str))
}

// ReadUintRaw reads an unsigned integer of byte width ptrSize (1, 2, 4
// or 8) in the given byte order.
func ReadUintRaw(reader io.Reader, order binary.ByteOrder, ptrSize int) (uint64, error) {
	switch ptrSize {
	case 1:
		var n uint8
		if err := binary.Read(reader, order, &n); err != nil {
			return 0, err
		}
		return uint64(n), nil
	case 2:
		var n uint16
		if err := binary.Read(reader, order, &n); err != nil {
			return 0, err
		}
		return uint64(n), nil
	case 4:
		var n uint32
		if err := binary.Read(reader, order, &n); err != nil {
			return 0, err
		}
		return uint64(n), nil
	case 8:
		var n uint64
		if err := binary.Read(reader, order, &n); err != nil {
			return 0, err
		}
		return n, nil
	}
	return 0, fmt.Errorf("not supported ptr size %d", ptrSize)
}
