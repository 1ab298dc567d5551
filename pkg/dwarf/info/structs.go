package info

// Format selects between the 32-bit and 64-bit DWARF encodings. The
// format is a property of each compile unit, not of the whole section:
// a 64-bit unit announces itself with the 0xffffffff escape in its
// initial length field.
//
// see DWARFv4 7.4 32-bit and 64-bit DWARF formats
type Format int

const (
	Dwarf32 Format = iota
	Dwarf64
)

// Structs describes the field widths that depend on the compile unit's
// encoding variant: the initial length field and section offsets.
type Structs struct {
	Format   Format
	AddrSize int
}

// InitialLengthFieldSize returns the byte width of the unit's initial
// length encoding: 4 bytes for 32-bit DWARF, 12 bytes (escape plus
// 64-bit length) for 64-bit DWARF.
func (s *Structs) InitialLengthFieldSize() uint64 {
	if s.Format == Dwarf64 {
		return 12
	}
	return 4
}

// OffsetSize returns the byte width of a section offset for this unit.
func (s *Structs) OffsetSize() int {
	if s.Format == Dwarf64 {
		return 8
	}
	return 4
}
