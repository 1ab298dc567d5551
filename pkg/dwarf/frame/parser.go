package frame

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/util"
)

// each parse state consumes one entry (or terminator) and hands back
// the next state; a malformed entry stops the walk with an error
type parsefunc func(*parseContext) (parsefunc, error)

// parseContext carries the state threaded through the CIE/FDE state
// machine while walking .debug_frame.
type parseContext struct {
	staticBase uint64

	buf     *bytes.Buffer
	size    int
	entries FrameDescriptionEntries
	common  *CommonInformationEntry
	frame   *FrameDescriptionEntry
	length  uint32
	ptrSize int
}

// offset reports how far into the section the walk has consumed.
func (ctx *parseContext) offset() uint64 {
	return uint64(ctx.size - ctx.buf.Len())
}

// Parse decodes the raw .debug_frame data into the FDE list, each FDE
// pointing at the CIE that precedes it in the section. staticBase is
// added to every FDE's initial location.
func Parse(data []byte, order binary.ByteOrder, staticBase uint64, ptrSize int) (FrameDescriptionEntries, error) {
	pctx := &parseContext{
		staticBase: staticBase,
		buf:        bytes.NewBuffer(data),
		size:       len(data),
		entries:    newFrameIndex(),
		ptrSize:    ptrSize,
	}

	for fn := parselength; pctx.buf.Len() != 0; {
		var err error
		if fn, err = fn(pctx); err != nil {
			return nil, err
		}
	}

	for i := range pctx.entries {
		pctx.entries[i].order = order
	}
	sort.Slice(pctx.entries, func(i, j int) bool {
		return pctx.entries[i].begin < pctx.entries[j].begin
	})

	return pctx.entries, nil
}

// cieEntry determines if data is the magic number of CIE
func cieEntry(data []byte) bool {
	return bytes.Equal(data, []byte{0xff, 0xff, 0xff, 0xff})
}

// parselength parses the length of the next CIE or FDE, then dispatches
// on the CIE id / CIE pointer field that follows it.
func parselength(ctx *parseContext) (parsefunc, error) {
	off := ctx.offset()

	if err := binary.Read(ctx.buf, binary.LittleEndian, &ctx.length); err != nil {
		return nil, &CorruptFrameError{Offset: off, Reason: "entry length cut off"}
	}

	if ctx.length == 0 {
		// ZERO terminator
		return parselength, nil
	}
	if ctx.length < 4 || int(ctx.length)-4 > ctx.buf.Len() {
		return nil, &CorruptFrameError{Offset: off, Reason: "entry extent crosses the end of the section"}
	}

	// CIE_id of a CIE, CIE_pointer of an FDE
	data := ctx.buf.Next(4)

	// take off the length of the CIE id / CIE pointer.
	ctx.length -= 4

	if cieEntry(data) {
		ctx.common = &CommonInformationEntry{Length: ctx.length, staticBase: ctx.staticBase}
		return parseCIE, nil
	}

	if ctx.common == nil {
		return nil, &CorruptFrameError{Offset: off, Reason: "FDE precedes any CIE"}
	}
	ctx.frame = &FrameDescriptionEntry{Length: ctx.length, CIE: ctx.common}
	return parseFDE, nil
}

// parseFDE parses the initial location and address range of the FDE,
// leaving the rest of the entry as raw frame instructions.
func parseFDE(ctx *parseContext) (parsefunc, error) {
	off := ctx.offset()
	r := ctx.buf.Next(int(ctx.length))
	if len(r) < 2*ctx.ptrSize {
		return nil, &CorruptFrameError{Offset: off, Reason: "FDE too short for its address range"}
	}
	reader := bytes.NewReader(r)

	num, err := util.ReadUintRaw(reader, binary.LittleEndian, ctx.ptrSize)
	if err != nil {
		return nil, &CorruptFrameError{Offset: off, Reason: "FDE initial location cut off"}
	}
	ctx.frame.begin = num + ctx.staticBase

	num, err = util.ReadUintRaw(reader, binary.LittleEndian, ctx.ptrSize)
	if err != nil {
		return nil, &CorruptFrameError{Offset: off, Reason: "FDE address range cut off"}
	}
	ctx.frame.size = num

	ctx.entries = append(ctx.entries, ctx.frame)

	// the remaining bytes of the entry are the frame instructions
	ctx.frame.Instructions = r[2*ctx.ptrSize:]
	ctx.length = 0

	return parselength, nil
}

// parseCIE parses the fields shared by the FDEs that follow this CIE.
func parseCIE(ctx *parseContext) (parsefunc, error) {
	off := ctx.offset()
	data := ctx.buf.Next(int(ctx.length))
	buf := bytes.NewBuffer(data)

	version, err := buf.ReadByte()
	if err != nil {
		return nil, &CorruptFrameError{Offset: off, Reason: "CIE cut off before version"}
	}
	ctx.common.Version = version

	var n uint32
	if ctx.common.Augmentation, n = util.ParseString(buf); n == 0 {
		return nil, &CorruptFrameError{Offset: off, Reason: "CIE augmentation string unterminated"}
	}
	if ctx.common.CodeAlignmentFactor, n = util.DecodeULEB128(buf); n == 0 {
		return nil, &CorruptFrameError{Offset: off, Reason: "CIE code alignment factor cut off"}
	}
	if ctx.common.DataAlignmentFactor, n = util.DecodeSLEB128(buf); n == 0 {
		return nil, &CorruptFrameError{Offset: off, Reason: "CIE data alignment factor cut off"}
	}
	if ctx.common.ReturnAddressRegister, n = util.DecodeULEB128(buf); n == 0 {
		return nil, &CorruptFrameError{Offset: off, Reason: "CIE return address register cut off"}
	}

	// the rest of the entry consists of the initial instructions
	ctx.common.InitialInstructions = buf.Bytes()
	ctx.length = 0

	return parselength, nil
}
