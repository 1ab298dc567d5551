// Package godwarf provides access to the DWARF debugging sections of an
// ELF file, transparently decompressing the .zdebug_* variants emitted
// by the go linker.
package godwarf

import (
	"bytes"
	"compress/zlib"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
)

// GetDebugSection returns the data of the section .debug_<name>,
// falling back to the compressed .zdebug_<name> section if present.
func GetDebugSection(f *elf.File, name string) ([]byte, error) {
	sec := f.Section(".debug_" + name)
	if sec != nil {
		return sec.Data()
	}

	sec = f.Section(".zdebug_" + name)
	if sec == nil {
		return nil, fmt.Errorf("could not find .debug_%s section", name)
	}

	data, err := sec.Data()
	if err != nil {
		return nil, err
	}
	return decompressZdebug(name, data)
}

// decompressZdebug decompresses a .zdebug_* section payload: a "ZLIB"
// magic, an 8 byte big endian uncompressed size, then the zlib stream.
func decompressZdebug(name string, data []byte) ([]byte, error) {
	if len(data) < 12 || !bytes.Equal(data[:4], []byte("ZLIB")) {
		return nil, fmt.Errorf("invalid .zdebug_%s section header", name)
	}

	size := binary.BigEndian.Uint64(data[4:12])

	rd, err := zlib.NewReader(bytes.NewReader(data[12:]))
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := io.Copy(buf, rd); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
