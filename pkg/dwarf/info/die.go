package info

import (
	"bytes"
	"debug/dwarf"
	"fmt"
	"io"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/abbrev"
	"github.com/hitzhangjie/dwarfview/pkg/dwarf/util"
)

// DIE is one debugging information entry, decoded from the stream. A
// DIE knows its own encoded size, which is what drives the compile
// unit's walk over its extent.
//
// The flat DIE list of a unit encodes a tree: a DIE with Children set
// is followed by its children, and a null entry closes each sibling
// chain. Reconstructing that tree is the caller's business; this
// package only guarantees the flat stream order.
//
// see DWARFv4 2.1 the debugging information entry
type DIE struct {
	Offset   uint64 // absolute offset of this DIE in .debug_info
	Size     uint64 // bytes this DIE consumed, abbrev code included
	Tag      dwarf.Tag
	Children bool
	Attrs    []Attr
	Null     bool // terminator entry closing a sibling chain
}

// Attr is one decoded attribute of a DIE.
type Attr struct {
	Attr dwarf.Attr
	Form abbrev.Form
	Val  interface{}
}

// Val returns the value of the attribute with the given name, or nil if
// the DIE has no such attribute.
func (d *DIE) Val(attr dwarf.Attr) interface{} {
	for _, a := range d.Attrs {
		if a.Attr == attr {
			return a.Val
		}
	}
	return nil
}

// decodeFunc decodes one DIE of cu at the given absolute offset,
// reading the stream with positioned reads only. The returned DIE
// reports its consumed size, which must be positive and must not cross
// the unit boundary; the compile unit's walk enforces both.
type decodeFunc func(cu *CompileUnit, stream io.ReaderAt, offset uint64) (*DIE, error)

// DecodeDIE is the default DIE decoder: it reads the ULEB128
// abbreviation code at offset, looks the code up in the unit's
// abbreviation table and decodes one value per declared attribute form.
// A code of 0 yields a null (terminator) entry.
func DecodeDIE(cu *CompileUnit, stream io.ReaderAt, offset uint64) (*DIE, error) {
	window := make([]byte, cu.Boundary()-offset)
	n, err := stream.ReadAt(window, int64(offset))
	if err != nil && err != io.EOF {
		return nil, err
	}

	buf := bytes.NewBuffer(window[:n])
	total := buf.Len()

	code, length := util.DecodeULEB128(buf)
	if length == 0 {
		return nil, &TruncatedRecordError{Offset: offset}
	}

	die := &DIE{Offset: offset}

	if code == 0 {
		die.Null = true
		die.Size = uint64(length)
		return die, nil
	}

	table, err := cu.AbbrevTable()
	if err != nil {
		return nil, err
	}
	decl := table.Decl(code)
	if decl == nil {
		return nil, fmt.Errorf("DIE at %#x references unknown abbrev code %d", offset, code)
	}

	die.Tag = dwarf.Tag(decl.Tag)
	die.Children = decl.Children

	for _, spec := range decl.Attrs {
		val, err := decodeForm(cu, buf, spec.Form)
		if err != nil {
			return nil, fmt.Errorf("DIE at %#x: attribute %s: %v", offset, dwarf.Attr(spec.Attr), err)
		}
		die.Attrs = append(die.Attrs, Attr{Attr: dwarf.Attr(spec.Attr), Form: spec.Form, Val: val})
	}

	die.Size = uint64(total - buf.Len())
	return die, nil
}

// decodeForm decodes a single attribute value of the given form from
// buf, using cu for the width of addresses and section offsets.
//
// see DWARFv4 7.5.4 attribute encodings
func decodeForm(cu *CompileUnit, buf *bytes.Buffer, form abbrev.Form) (interface{}, error) {
	order := cu.info.order

	switch form {
	case abbrev.FormAddr:
		return util.ReadUintRaw(buf, order, cu.structs.AddrSize)

	case abbrev.FormData1, abbrev.FormRef1:
		return util.ReadUintRaw(buf, order, 1)
	case abbrev.FormData2, abbrev.FormRef2:
		return util.ReadUintRaw(buf, order, 2)
	case abbrev.FormData4, abbrev.FormRef4:
		return util.ReadUintRaw(buf, order, 4)
	case abbrev.FormData8, abbrev.FormRef8, abbrev.FormRefSig8:
		return util.ReadUintRaw(buf, order, 8)

	case abbrev.FormSdata:
		v, n := util.DecodeSLEB128(buf)
		if n == 0 {
			return nil, fmt.Errorf("truncated sdata value")
		}
		return v, nil
	case abbrev.FormUdata, abbrev.FormRefUdata:
		v, n := util.DecodeULEB128(buf)
		if n == 0 {
			return nil, fmt.Errorf("truncated udata value")
		}
		return v, nil

	case abbrev.FormString:
		s, n := util.ParseString(buf)
		if n == 0 {
			return nil, fmt.Errorf("unterminated string value")
		}
		return s, nil

	case abbrev.FormStrp, abbrev.FormSecOffset, abbrev.FormRefAddr:
		return util.ReadUintRaw(buf, order, cu.structs.OffsetSize())

	case abbrev.FormBlock1:
		n, err := util.ReadUintRaw(buf, order, 1)
		if err != nil {
			return nil, err
		}
		return readBlock(buf, n)
	case abbrev.FormBlock2:
		n, err := util.ReadUintRaw(buf, order, 2)
		if err != nil {
			return nil, err
		}
		return readBlock(buf, n)
	case abbrev.FormBlock4:
		n, err := util.ReadUintRaw(buf, order, 4)
		if err != nil {
			return nil, err
		}
		return readBlock(buf, n)
	case abbrev.FormBlock, abbrev.FormExprloc:
		n, length := util.DecodeULEB128(buf)
		if length == 0 {
			return nil, fmt.Errorf("truncated block length")
		}
		return readBlock(buf, n)

	case abbrev.FormFlag:
		v, err := util.ReadUintRaw(buf, order, 1)
		if err != nil {
			return nil, err
		}
		return v != 0, nil
	case abbrev.FormFlagPresent:
		// the attribute's presence is the value, no bytes on disk
		return true, nil

	case abbrev.FormIndirect:
		v, n := util.DecodeULEB128(buf)
		if n == 0 {
			return nil, fmt.Errorf("truncated indirect form")
		}
		return decodeForm(cu, buf, abbrev.Form(v))
	}

	return nil, fmt.Errorf("unsupported form %#x", uint64(form))
}

func readBlock(buf *bytes.Buffer, n uint64) ([]byte, error) {
	if n > uint64(buf.Len()) {
		return nil, fmt.Errorf("block length %d exceeds remaining unit bytes %d", n, buf.Len())
	}
	block := make([]byte, n)
	copy(block, buf.Next(int(n)))
	return block, nil
}
