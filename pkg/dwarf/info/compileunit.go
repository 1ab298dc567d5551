package info

import (
	"sort"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/abbrev"
)

// Header maps compile unit header field names to their values. Which
// fields are present depends on the DWARF version; this package only
// relies on unit_length and debug_abbrev_offset and treats the rest as
// opaque lookup keys.
type Header map[string]uint64

// requiredFields must be present for the unit's extent and schema to be
// computable at all, so their absence is a construction error.
var requiredFields = []string{"unit_length", "debug_abbrev_offset"}

// CompileUnit is one compilation unit of the .debug_info section: a
// bounded byte range holding a unit header followed by the unit's DIEs
// in depth-first preorder.
//
// The DIE list and the abbreviation table are parsed lazily, on first
// access, and cached on the unit afterwards. The unit itself performs
// no synchronization: concurrent first accesses must be serialized by
// the caller.
//
// see DWARFv4 7.5.1 compilation unit header
type CompileUnit struct {
	info      *InfoData // owning context, the unit does not manage its lifetime
	header    Header
	structs   *Structs
	offset    uint64 // absolute offset of the unit header in .debug_info
	dieOffset uint64 // absolute offset of the unit's first DIE

	// abbreviation table for this unit, resolved through the owning
	// context on first use
	abbrev *abbrev.Table

	// DIEs belonging to this unit, parsed lazily; parsed distinguishes
	// an empty list from one that was never materialized
	dies   []*DIE
	parsed bool
}

// NewCompileUnit builds a compile unit from a decoded unit header.
// header, structs and info are all required; the header must at least
// carry unit_length and debug_abbrev_offset.
func NewCompileUnit(header Header, info *InfoData, structs *Structs, offset, dieOffset uint64) (*CompileUnit, error) {
	for _, field := range requiredFields {
		if _, ok := header[field]; !ok {
			return nil, &MissingFieldError{Field: field}
		}
	}
	return &CompileUnit{
		info:      info,
		header:    header,
		structs:   structs,
		offset:    offset,
		dieOffset: dieOffset,
	}, nil
}

// Field returns the header field with the given name. There are no
// default values: looking up a field the in-use DWARF version does not
// emit fails with MissingFieldError.
func (cu *CompileUnit) Field(name string) (uint64, error) {
	v, ok := cu.header[name]
	if !ok {
		return 0, &MissingFieldError{Field: name}
	}
	return v, nil
}

// Fields returns the names of all header fields this unit carries, in
// sorted order.
func (cu *CompileUnit) Fields() []string {
	names := make([]string, 0, len(cu.header))
	for name := range cu.header {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Offset returns the absolute offset of the unit header in .debug_info.
func (cu *CompileUnit) Offset() uint64 {
	return cu.offset
}

// DIEOffset returns the absolute offset of the unit's first DIE.
func (cu *CompileUnit) DIEOffset() uint64 {
	return cu.dieOffset
}

// Structs returns the encoding-variant field widths of this unit.
func (cu *CompileUnit) Structs() *Structs {
	return cu.structs
}

// Boundary returns the first offset past the end of this unit's extent.
// All DIEs of the unit live in [DIEOffset, Boundary).
func (cu *CompileUnit) Boundary() uint64 {
	// unit_length presence is checked at construction time
	length := cu.header["unit_length"]
	return cu.offset + length + cu.structs.InitialLengthFieldSize()
}

// AbbrevTable returns the abbreviation table describing how this unit's
// DIEs are encoded. The table is resolved through the owning context on
// the first call only; the context query is never repeated afterwards.
func (cu *CompileUnit) AbbrevTable() (*abbrev.Table, error) {
	if cu.abbrev != nil {
		return cu.abbrev, nil
	}

	off, err := cu.Field("debug_abbrev_offset")
	if err != nil {
		return nil, err
	}

	table, err := cu.info.AbbrevTable(off)
	if err != nil {
		return nil, err
	}

	cu.abbrev = table
	return table, nil
}

// TopDIE returns the unit's top DIE, which is either a
// DW_TAG_compile_unit or a DW_TAG_partial_unit. Parses the whole DIE
// list if it was not parsed yet.
func (cu *CompileUnit) TopDIE() (*DIE, error) {
	return cu.DIE(0)
}

// DIE returns the DIE at the given index within the unit's flattened
// DIE list. Any indexed access materializes the entire list: there is
// no partial parse.
func (cu *CompileUnit) DIE(index int) (*DIE, error) {
	if !cu.parsed {
		if err := cu.parseDIEs(); err != nil {
			return nil, err
		}
	}
	if index < 0 || index >= len(cu.dies) {
		return nil, &IndexOutOfRangeError{Index: index, Count: len(cu.dies)}
	}
	return cu.dies[index], nil
}

// DIEs returns the unit's complete DIE list in stream order, parsing it
// first if needed.
func (cu *CompileUnit) DIEs() ([]*DIE, error) {
	if !cu.parsed {
		if err := cu.parseDIEs(); err != nil {
			return nil, err
		}
	}
	return cu.dies, nil
}

// parseDIEs walks the unit's extent decoding one DIE at a time, each
// DIE self-reporting how many bytes it consumed. The walk must make
// strict forward progress and land exactly on the unit boundary;
// anything else is corrupt data, never silently truncated.
//
// On failure the cached list stays unpopulated, so a later access
// re-attempts the walk from scratch.
func (cu *CompileUnit) parseDIEs() error {
	boundary := cu.Boundary()
	if boundary <= cu.dieOffset {
		return &CorruptUnitError{
			Offset: cu.offset,
			Reason: "unit extent ends before its first DIE",
		}
	}

	var dies []*DIE
	for off := cu.dieOffset; off < boundary; {
		die, err := cu.info.decode(cu, cu.info.stream, off)
		if err != nil {
			return err
		}
		if die.Size == 0 {
			return &TruncatedRecordError{Offset: off}
		}
		if off+die.Size > boundary {
			return &TruncatedRecordError{Offset: off, Size: die.Size, Boundary: boundary}
		}
		dies = append(dies, die)
		off += die.Size
	}

	cu.dies = dies
	cu.parsed = true
	cu.info.walks.Add(1)
	return nil
}
