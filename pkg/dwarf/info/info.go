// Package info parses the .debug_info section: it discovers the
// compile units the section is made of and lazily materializes each
// unit's DIE list on first access.
//
// see DWARFv4 7.5 format of debugging information
package info

import (
	"bytes"
	"encoding/binary"
	"io"

	"go.uber.org/atomic"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/abbrev"
)

// dwarf32Escape in the first 4 bytes of a unit's initial length field
// announces the 64-bit DWARF format.
const dwarf32Escape = 0xffffffff

// minHeaderSize is the smallest possible DWARF32 unit header:
// unit_length(4) + version(2) + debug_abbrev_offset(4) + address_size(1).
const minHeaderSize = 11

// InfoData is the owning context of all compile units discovered in one
// .debug_info section. It owns the stream the units read from and the
// cross-unit abbreviation table cache: units sharing a
// debug_abbrev_offset share one parsed table.
type InfoData struct {
	stream io.ReaderAt // positioned reads only, no seek state
	size   uint64
	order  binary.ByteOrder

	abbrevData []byte
	abbrevs    map[uint64]*abbrev.Table

	units []*CompileUnit

	// decode is the DIE decoder used by unit materialization; tests
	// substitute it to probe the walk
	decode decodeFunc

	// walks counts completed DIE list materializations
	walks *atomic.Uint64
	// resolves counts abbreviation table lookups reaching the context
	resolves *atomic.Uint64
}

// New scans the .debug_info section data for compile unit headers and
// returns the owning context. Unit headers are decoded eagerly; the
// DIEs of each unit stay unparsed until first access.
func New(data []byte, abbrevData []byte) (*InfoData, error) {
	d := &InfoData{
		stream:     bytes.NewReader(data),
		size:       uint64(len(data)),
		order:      DwarfEndian(data),
		abbrevData: abbrevData,
		abbrevs:    map[uint64]*abbrev.Table{},
		decode:     DecodeDIE,
		walks:      atomic.NewUint64(0),
		resolves:   atomic.NewUint64(0),
	}

	if err := d.parseUnitHeaders(data); err != nil {
		return nil, err
	}
	return d, nil
}

// parseUnitHeaders walks the section from offset 0, decoding one unit
// header at a time and skipping each unit's declared extent to find the
// next. DWARF version 2 through 4 header layout is assumed.
func (d *InfoData) parseUnitHeaders(data []byte) error {
	for off := uint64(0); off < d.size; {
		if d.size-off < minHeaderSize {
			return &CorruptUnitError{Offset: off, Reason: "remaining bytes cannot hold a unit header"}
		}

		var (
			structs = &Structs{Format: Dwarf32}
			length  = uint64(d.order.Uint32(data[off:]))
			cursor  = off + 4
		)
		if length == dwarf32Escape {
			structs.Format = Dwarf64
			// escape(4) + length(8) + version(2) + abbrev offset(8) + address size(1)
			if d.size-off < 23 {
				return &CorruptUnitError{Offset: off, Reason: "remaining bytes cannot hold a 64-bit unit header"}
			}
			length = d.order.Uint64(data[off+4:])
			cursor = off + 12
		}

		// bound the declared length before computing the boundary: a
		// corrupt 64-bit length can wrap the addition and stall the
		// scan at the same offset forever
		if length > d.size-off-structs.InitialLengthFieldSize() {
			return &CorruptUnitError{Offset: off, Reason: "unit extent crosses the end of the section"}
		}
		boundary := off + length + structs.InitialLengthFieldSize()

		version := d.order.Uint16(data[cursor:])
		cursor += 2

		var abbrevOff uint64
		if structs.Format == Dwarf64 {
			abbrevOff = d.order.Uint64(data[cursor:])
			cursor += 8
		} else {
			abbrevOff = uint64(d.order.Uint32(data[cursor:]))
			cursor += 4
		}

		addrSize := data[cursor]
		cursor++
		structs.AddrSize = int(addrSize)

		header := Header{
			"unit_length":         length,
			"version":             uint64(version),
			"debug_abbrev_offset": abbrevOff,
			"address_size":        uint64(addrSize),
		}

		cu, err := NewCompileUnit(header, d, structs, off, cursor)
		if err != nil {
			return err
		}
		d.units = append(d.units, cu)

		off = boundary
	}

	return nil
}

// CompileUnits returns the units discovered in the section, in stream
// order.
func (d *InfoData) CompileUnits() []*CompileUnit {
	return d.units
}

// AbbrevTable resolves the abbreviation table at the given
// .debug_abbrev offset, parsing it on first request and serving every
// later request for the same offset from the cache. Units sharing an
// offset therefore share one table.
func (d *InfoData) AbbrevTable(offset uint64) (*abbrev.Table, error) {
	d.resolves.Add(1)

	if table, ok := d.abbrevs[offset]; ok {
		return table, nil
	}

	table, err := abbrev.Parse(d.abbrevData, offset)
	if err != nil {
		return nil, err
	}

	d.abbrevs[offset] = table
	return table, nil
}

// Walks returns how many DIE list materializations completed so far,
// at most one per compile unit.
func (d *InfoData) Walks() uint64 {
	return d.walks.Load()
}

// Resolves returns how many abbreviation table lookups reached the
// context. A unit caching its table locally asks the context at most
// once, however often the table is requested from the unit.
func (d *InfoData) Resolves() uint64 {
	return d.resolves.Load()
}

// DwarfEndian determines the endianness of the DWARF data by looking at
// the version field of the first unit header.
// Trick borrowed from "debug/dwarf".New()
func DwarfEndian(infoSec []byte) binary.ByteOrder {
	if len(infoSec) < 6 {
		return binary.BigEndian
	}
	x, y := infoSec[4], infoSec[5]
	switch {
	case x == 0 && y == 0:
		return binary.BigEndian
	case x == 0:
		return binary.BigEndian
	case y == 0:
		return binary.LittleEndian
	default:
		return binary.BigEndian
	}
}
