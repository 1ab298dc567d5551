// Package frame contains data structures and related functions for
// parsing and searching through the call frame information of the
// .debug_frame section.
//
// see DWARFv4 6.4 call frame information
package frame

import (
	"encoding/binary"
	"sort"
)

// CommonInformationEntry represents a CIE: the decoding rules shared by
// all FDEs that point at it.
type CommonInformationEntry struct {
	Length                uint32
	Version               uint8
	Augmentation          string
	CodeAlignmentFactor   uint64
	DataAlignmentFactor   int64
	ReturnAddressRegister uint64
	InitialInstructions   []byte

	staticBase uint64
}

// FrameDescriptionEntry represents an FDE: the frame building rules of
// one contiguous address range.
type FrameDescriptionEntry struct {
	Length       uint32
	CIE          *CommonInformationEntry
	Instructions []byte

	begin, size uint64
	order       binary.ByteOrder
}

// Cover reports whether addr falls in the address range of this FDE.
func (fde *FrameDescriptionEntry) Cover(addr uint64) bool {
	return addr-fde.begin < fde.size
}

// Begin returns the start of the FDE's address range.
func (fde *FrameDescriptionEntry) Begin() uint64 {
	return fde.begin
}

// End returns the first address past the FDE's address range.
func (fde *FrameDescriptionEntry) End() uint64 {
	return fde.begin + fde.size
}

// FrameDescriptionEntries FDE entries sorted by address range
type FrameDescriptionEntries []*FrameDescriptionEntry

func newFrameIndex() FrameDescriptionEntries {
	return make(FrameDescriptionEntries, 0, 1000)
}

// FDEForPC returns the FDE whose address range covers pc.
func (fdes FrameDescriptionEntries) FDEForPC(pc uint64) (*FrameDescriptionEntry, error) {
	idx := sort.Search(len(fdes), func(i int) bool {
		return fdes[i].Cover(pc) || fdes[i].begin >= pc
	})
	if idx == len(fdes) || !fdes[idx].Cover(pc) {
		return nil, &ErrNoFDEForPC{pc}
	}
	return fdes[idx], nil
}
