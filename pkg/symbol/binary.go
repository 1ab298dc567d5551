// Package symbol loads the DWARF debugging sections of an executable
// and hands out the parsed views of them.
package symbol

import (
	"debug/dwarf"
	"debug/elf"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/frame"
	"github.com/hitzhangjie/dwarfview/pkg/dwarf/godwarf"
	"github.com/hitzhangjie/dwarfview/pkg/dwarf/info"
)

// BinaryInfo binary info
type BinaryInfo struct {
	Path string

	// Info owns the compile units of .(z)debug_info
	Info *info.InfoData

	// FdeEntries is the parsed .(z)debug_frame, empty when the binary
	// carries no frame section
	FdeEntries frame.FrameDescriptionEntries
}

// Analyze parses the DWARF sections of executable `execFile` and
// returns the binary info. The DIEs of each compile unit stay unparsed
// until accessed.
func Analyze(execFile string) (*BinaryInfo, error) {
	file, err := elf.Open(execFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	infoData, err := godwarf.GetDebugSection(file, "info")
	if err != nil {
		return nil, err
	}
	abbrevData, err := godwarf.GetDebugSection(file, "abbrev")
	if err != nil {
		return nil, err
	}

	d, err := info.New(infoData, abbrevData)
	if err != nil {
		return nil, err
	}

	bi := &BinaryInfo{
		Path: execFile,
		Info: d,
	}

	// .(z)debug_frame is optional
	if frameData, err := godwarf.GetDebugSection(file, "frame"); err == nil {
		order := info.DwarfEndian(infoData)
		bi.FdeEntries, err = frame.Parse(frameData, order, 0, ptrSize(d))
		if err != nil {
			return nil, err
		}
	}

	return bi, nil
}

// PCToFDE returns the frame whose range covers PC
func (bi *BinaryInfo) PCToFDE(pc uint64) (*frame.FrameDescriptionEntry, error) {
	return bi.FdeEntries.FDEForPC(pc)
}

// CompileUnitName returns the name attribute of the unit's top DIE,
// materializing the unit's DIE list if needed.
func (bi *BinaryInfo) CompileUnitName(cu *info.CompileUnit) (string, error) {
	die, err := cu.TopDIE()
	if err != nil {
		return "", err
	}
	name, _ := die.Val(dwarf.AttrName).(string)
	return name, nil
}

// ptrSize picks the pointer width the frame section was emitted with,
// preferring the address size declared by the first compile unit.
func ptrSize(d *info.InfoData) int {
	units := d.CompileUnits()
	if len(units) == 0 {
		return 8
	}
	if size, err := units[0].Field("address_size"); err == nil && size > 0 {
		return int(size)
	}
	return 8
}
