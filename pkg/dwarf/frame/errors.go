package frame

import "fmt"

// ErrNoFDEForPC FDE for PC not found error
type ErrNoFDEForPC struct {
	PC uint64
}

func (err *ErrNoFDEForPC) Error() string {
	return fmt.Sprintf("could not find FDE for PC %#x", err.PC)
}

// CorruptFrameError a malformed CIE or FDE stopped the section walk
type CorruptFrameError struct {
	Offset uint64
	Reason string
}

func (err *CorruptFrameError) Error() string {
	return fmt.Sprintf("corrupt frame entry at offset %#x: %s", err.Offset, err.Reason)
}
