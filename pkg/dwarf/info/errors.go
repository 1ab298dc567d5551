package info

import "fmt"

// MissingFieldError compile unit header has no field with the requested name
type MissingFieldError struct {
	Field string
}

func (err *MissingFieldError) Error() string {
	return fmt.Sprintf("compile unit header has no field %q", err.Field)
}

// CorruptUnitError compile unit declares an extent that cannot hold any DIEs
type CorruptUnitError struct {
	Offset uint64
	Reason string
}

func (err *CorruptUnitError) Error() string {
	return fmt.Sprintf("corrupt compile unit at %#x: %s", err.Offset, err.Reason)
}

// TruncatedRecordError DIE reports a size that makes no forward progress
// or crosses the compile unit boundary
type TruncatedRecordError struct {
	Offset   uint64
	Size     uint64
	Boundary uint64
}

func (err *TruncatedRecordError) Error() string {
	if err.Size == 0 {
		return fmt.Sprintf("truncated DIE at %#x: zero size reported", err.Offset)
	}
	return fmt.Sprintf("truncated DIE at %#x: size %d crosses unit boundary %#x", err.Offset, err.Size, err.Boundary)
}

// IndexOutOfRangeError requested DIE index is outside the parsed list
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (err *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("DIE index %d out of range [0, %d)", err.Index, err.Count)
}
