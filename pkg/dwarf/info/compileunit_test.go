package info

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/abbrev"
)

// stubDecoder reports fixed sizes keyed by offset, counting calls. It
// stands in for DecodeDIE so the walk itself can be probed.
type stubDecoder struct {
	sizes map[uint64]uint64
	calls *atomic.Uint64
}

func newStubDecoder(sizes map[uint64]uint64) *stubDecoder {
	return &stubDecoder{sizes: sizes, calls: atomic.NewUint64(0)}
}

func (s *stubDecoder) decode(cu *CompileUnit, stream io.ReaderAt, offset uint64) (*DIE, error) {
	s.calls.Add(1)
	return &DIE{Offset: offset, Size: s.sizes[offset]}, nil
}

// stubUnit builds a CU over an all-zero 64 byte stream with the given
// header, wired to the given decoder. The unit header starts at offset
// 0 and the first DIE at offset 11.
func stubUnit(t *testing.T, header Header, dec *stubDecoder) *CompileUnit {
	t.Helper()

	d := &InfoData{
		stream:   bytes.NewReader(make([]byte, 64)),
		size:     64,
		abbrevs:  map[uint64]*abbrev.Table{},
		decode:   dec.decode,
		walks:    atomic.NewUint64(0),
		resolves: atomic.NewUint64(0),
	}

	cu, err := NewCompileUnit(header, d, &Structs{Format: Dwarf32, AddrSize: 8}, 0, 11)
	require.NoError(t, err)
	return cu
}

func TestParseDIEsTilesUnitExtent(t *testing.T) {
	// unit_length 40 and a 4 byte length prefix put the boundary at 44;
	// three DIEs of sizes 5, 20, 8 starting at 11 land exactly on it
	dec := newStubDecoder(map[uint64]uint64{11: 5, 16: 20, 36: 8})
	cu := stubUnit(t, Header{"unit_length": 40, "debug_abbrev_offset": 0}, dec)

	assert.Equal(t, uint64(44), cu.Boundary())

	dies, err := cu.DIEs()
	require.NoError(t, err)
	require.Equal(t, 3, len(dies))

	var sum uint64
	off := cu.DIEOffset()
	for _, die := range dies {
		assert.Equal(t, off, die.Offset)
		off += die.Size
		sum += die.Size
	}
	assert.Equal(t, cu.Boundary()-cu.DIEOffset(), sum)
}

func TestTopDIEIdempotent(t *testing.T) {
	dec := newStubDecoder(map[uint64]uint64{11: 5, 16: 20, 36: 8})
	cu := stubUnit(t, Header{"unit_length": 40, "debug_abbrev_offset": 0}, dec)

	first, err := cu.TopDIE()
	require.NoError(t, err)
	second, err := cu.TopDIE()
	require.NoError(t, err)

	// same DIE, and the walk ran exactly once
	assert.True(t, first == second)
	assert.Equal(t, uint64(3), dec.calls.Load())
	assert.Equal(t, uint64(1), cu.info.Walks())
}

func TestDIEIndexOutOfRange(t *testing.T) {
	dec := newStubDecoder(map[uint64]uint64{11: 5, 16: 20, 36: 8})
	cu := stubUnit(t, Header{"unit_length": 40, "debug_abbrev_offset": 0}, dec)

	_, err := cu.DIE(0)
	require.NoError(t, err)

	_, err = cu.DIE(3)
	require.Error(t, err)
	assert.IsType(t, &IndexOutOfRangeError{}, err)

	_, err = cu.DIE(-1)
	require.Error(t, err)
	assert.IsType(t, &IndexOutOfRangeError{}, err)
}

func TestParseDIEsZeroSize(t *testing.T) {
	// the second DIE reports size 0: the walk must fail instead of
	// looping or silently skipping
	dec := newStubDecoder(map[uint64]uint64{11: 5, 16: 0})
	cu := stubUnit(t, Header{"unit_length": 40, "debug_abbrev_offset": 0}, dec)

	_, err := cu.TopDIE()
	require.Error(t, err)
	assert.IsType(t, &TruncatedRecordError{}, err)

	// a failed walk leaves nothing cached, the next access re-attempts
	// and deterministically fails again
	calls := dec.calls.Load()
	_, err = cu.TopDIE()
	require.Error(t, err)
	assert.IsType(t, &TruncatedRecordError{}, err)
	assert.True(t, dec.calls.Load() > calls)
	assert.Equal(t, uint64(0), cu.info.Walks())
}

func TestParseDIEsCrossingBoundary(t *testing.T) {
	// the last DIE claims 9 bytes but only 8 remain before the boundary
	dec := newStubDecoder(map[uint64]uint64{11: 5, 16: 20, 36: 9})
	cu := stubUnit(t, Header{"unit_length": 40, "debug_abbrev_offset": 0}, dec)

	_, err := cu.TopDIE()
	require.Error(t, err)

	trunc, ok := err.(*TruncatedRecordError)
	require.True(t, ok)
	assert.Equal(t, uint64(36), trunc.Offset)
	assert.Equal(t, uint64(44), trunc.Boundary)
}

func TestParseDIEsCorruptExtent(t *testing.T) {
	// boundary 4+4=8 lands before the first DIE at 11
	dec := newStubDecoder(nil)
	cu := stubUnit(t, Header{"unit_length": 4, "debug_abbrev_offset": 0}, dec)

	_, err := cu.TopDIE()
	require.Error(t, err)
	assert.IsType(t, &CorruptUnitError{}, err)
	assert.Equal(t, uint64(0), dec.calls.Load())
}

func TestFieldLookup(t *testing.T) {
	dec := newStubDecoder(nil)
	cu := stubUnit(t, Header{"unit_length": 40, "debug_abbrev_offset": 0, "version": 4}, dec)

	v, err := cu.Field("version")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v)

	_, err = cu.Field("producer")
	require.Error(t, err)
	assert.IsType(t, &MissingFieldError{}, err)
}

func TestNewCompileUnitRequiredFields(t *testing.T) {
	d := &InfoData{abbrevs: map[uint64]*abbrev.Table{}}

	_, err := NewCompileUnit(Header{"unit_length": 40}, d, &Structs{}, 0, 11)
	require.Error(t, err)
	assert.IsType(t, &MissingFieldError{}, err)

	_, err = NewCompileUnit(Header{"debug_abbrev_offset": 0}, d, &Structs{}, 0, 11)
	require.Error(t, err)
}

func TestAbbrevTableMemoized(t *testing.T) {
	d, err := New(testInfo(), testAbbrev())
	require.NoError(t, err)
	require.Equal(t, 1, len(d.CompileUnits()))

	cu := d.CompileUnits()[0]

	first, err := cu.AbbrevTable()
	require.NoError(t, err)
	require.Equal(t, uint64(1), d.Resolves())

	// later lookups are served from the unit's cache without ever
	// consulting the context again
	second, err := cu.AbbrevTable()
	require.NoError(t, err)
	third, err := cu.AbbrevTable()
	require.NoError(t, err)

	assert.True(t, first == second)
	assert.True(t, first == third)
	assert.Equal(t, uint64(1), d.Resolves())
}

func TestAbbrevTableSharedAcrossUnits(t *testing.T) {
	// two identical units back to back, both with debug_abbrev_offset 0
	d, err := New(cat(testInfo(), testInfo()), testAbbrev())
	require.NoError(t, err)
	require.Equal(t, 2, len(d.CompileUnits()))

	t1, err := d.CompileUnits()[0].AbbrevTable()
	require.NoError(t, err)
	t2, err := d.CompileUnits()[1].AbbrevTable()
	require.NoError(t, err)

	// the context cache hands both units the same parsed table, parsed
	// once; each unit consulted the context exactly once
	assert.True(t, t1 == t2)
	assert.Equal(t, uint64(2), d.Resolves())
}
