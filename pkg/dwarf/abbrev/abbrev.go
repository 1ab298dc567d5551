// Package abbrev parses the .debug_abbrev section, which holds the
// abbreviation declarations describing how the DIEs of a compile unit
// are encoded.
//
// see DWARFv4 7.5.3 abbreviation tables
package abbrev

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/util"
)

// Form identifies the on-disk encoding of one attribute value.
//
// see DWARFv4 7.5.4 attribute encodings
type Form uint64

const (
	FormAddr        Form = 0x01
	FormBlock2      Form = 0x03
	FormBlock4      Form = 0x04
	FormData2       Form = 0x05
	FormData4       Form = 0x06
	FormData8       Form = 0x07
	FormString      Form = 0x08
	FormBlock       Form = 0x09
	FormBlock1      Form = 0x0a
	FormData1       Form = 0x0b
	FormFlag        Form = 0x0c
	FormSdata       Form = 0x0d
	FormStrp        Form = 0x0e
	FormUdata       Form = 0x0f
	FormRefAddr     Form = 0x10
	FormRef1        Form = 0x11
	FormRef2        Form = 0x12
	FormRef4        Form = 0x13
	FormRef8        Form = 0x14
	FormRefUdata    Form = 0x15
	FormIndirect    Form = 0x16
	FormSecOffset   Form = 0x17
	FormExprloc     Form = 0x18
	FormFlagPresent Form = 0x19
	FormRefSig8     Form = 0x20
)

// AttrSpec is one (attribute, form) pair of an abbreviation declaration.
type AttrSpec struct {
	Attr uint64
	Form Form
}

// Decl is one abbreviation declaration: the shape shared by all DIEs
// referencing its code.
type Decl struct {
	Code     uint64
	Tag      uint64
	Children bool
	Attrs    []AttrSpec
}

// Table is the sequence of abbreviation declarations serving one or
// more compile units, located at Offset within .debug_abbrev.
type Table struct {
	Offset uint64

	decls map[uint64]*Decl
}

// Parse reads the abbreviation table starting at offset within the
// .debug_abbrev section data.
func Parse(data []byte, offset uint64) (*Table, error) {
	if offset >= uint64(len(data)) {
		return nil, fmt.Errorf("abbrev offset %#x out of section bounds [0, %#x)", offset, len(data))
	}

	var (
		buf   = bytes.NewBuffer(data[offset:])
		table = &Table{Offset: offset, decls: map[uint64]*Decl{}}
	)

	for {
		code, n := util.DecodeULEB128(buf)
		if n == 0 {
			return nil, fmt.Errorf("abbrev table at %#x: truncated declaration code", offset)
		}
		// code 0 terminates the table
		if code == 0 {
			break
		}

		tag, n := util.DecodeULEB128(buf)
		if n == 0 {
			return nil, fmt.Errorf("abbrev table at %#x: truncated tag of code %d", offset, code)
		}

		children, err := buf.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("abbrev table at %#x: truncated children flag of code %d", offset, code)
		}

		decl := &Decl{
			Code:     code,
			Tag:      tag,
			Children: children != 0,
		}

		// attribute specifications, terminated by the (0, 0) pair
		for {
			attr, n := util.DecodeULEB128(buf)
			if n == 0 {
				return nil, fmt.Errorf("abbrev table at %#x: truncated attribute of code %d", offset, code)
			}
			form, n := util.DecodeULEB128(buf)
			if n == 0 {
				return nil, fmt.Errorf("abbrev table at %#x: truncated form of code %d", offset, code)
			}
			if attr == 0 && form == 0 {
				break
			}
			decl.Attrs = append(decl.Attrs, AttrSpec{Attr: attr, Form: Form(form)})
		}

		table.decls[code] = decl
	}

	return table, nil
}

// Decl returns the declaration with the given code, or nil if the table
// does not define it.
func (t *Table) Decl(code uint64) *Decl {
	return t.decls[code]
}

// Len returns the number of declarations in the table.
func (t *Table) Len() int {
	return len(t.decls)
}

// Decls returns all declarations, ordered by code.
func (t *Table) Decls() []*Decl {
	decls := make([]*Decl, 0, len(t.decls))
	for _, d := range t.decls {
		decls = append(decls, d)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Code < decls[j].Code })
	return decls
}
