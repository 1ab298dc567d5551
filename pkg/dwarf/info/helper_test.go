package info

import (
	"encoding/binary"
)

// byte-building helpers for synthesizing .debug_info / .debug_abbrev
// sections in tests, little endian throughout.

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func u16(v uint16) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, v)
	return out
}

func u32(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

func u64(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

func strz(s string) []byte {
	return append([]byte(s), 0)
}

func cat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// cuHeader32 builds a DWARF32 v4 unit header. unitLength counts the
// bytes after the initial length field itself.
func cuHeader32(unitLength uint32, abbrevOff uint32, addrSize byte) []byte {
	return cat(u32(unitLength), u16(4), u32(abbrevOff), []byte{addrSize})
}

// testAbbrev is the .debug_abbrev content shared by the decoding tests:
//
//	code 1: DW_TAG_compile_unit, children, DW_AT_name:string + DW_AT_comp_dir:string
//	code 2: DW_TAG_variable, no children, DW_AT_name:string + DW_AT_type:ref4
func testAbbrev() []byte {
	return cat(
		uleb(1), uleb(0x11), []byte{1},
		uleb(0x03), uleb(0x08),
		uleb(0x1b), uleb(0x08),
		[]byte{0, 0},
		uleb(2), uleb(0x34), []byte{0},
		uleb(0x03), uleb(0x08),
		uleb(0x49), uleb(0x13),
		[]byte{0, 0},
		[]byte{0},
	)
}

// testInfo builds a single DWARF32 CU against testAbbrev:
//
//	offset 11: DIE code 1, name "t1", comp_dir "/tmp"  (9 bytes)
//	offset 20: DIE code 2, name "x", type ref4         (7 bytes)
//	offset 27: null entry                              (1 byte)
//
// unit boundary 28, unit_length 24.
func testInfo() []byte {
	body := cat(
		uleb(1), strz("t1"), strz("/tmp"),
		uleb(2), strz("x"), u32(21),
		[]byte{0},
	)
	// version + abbrev offset + address size + body
	return cat(cuHeader32(uint32(7+len(body)), 0, 8), body)
}
