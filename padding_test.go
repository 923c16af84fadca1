package epsilon

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type padStruct struct {
	A uint8
	B uint64
	C uint16
}

// dirtyPadStructs returns n values whose padding bytes are all 0xff.
func dirtyPadStructs(n int) []padStruct {
	raw := make([]uint64, n*int(unsafe.Sizeof(padStruct{}))/8)
	for i := range raw {
		raw[i] = ^uint64(0)
	}
	ps := unsafe.Slice((*padStruct)(unsafe.Pointer(unsafe.SliceData(raw))), n)
	for i := range ps {
		ps[i].A, ps[i].B, ps[i].C = uint8(i+1), uint64(i+2), uint16(i+3)
	}
	return ps
}

// encodeTraced encodes v with and without a schema, requires identical
// output, and returns the output with its schema.
func encodeTraced[T, E any](t *testing.T, c Codec[T, E], v T) ([]byte, *Schema) {
	t.Helper()
	var plain, traced bytes.Buffer
	_, err := Encode(c, v, &plain)
	require.NoError(t, err)
	schema, err := EncodeWithSchema(c, v, &traced)
	require.NoError(t, err)
	require.Equal(t, plain.Bytes(), traced.Bytes(), "schema writer must not change the bytes")
	return plain.Bytes(), schema
}

// assertScrubbed checks that every padStruct image recorded in the schema has
// zero padding. Field rows start before alignment padding, so only the
// zero-copy rows are inspected.
func assertScrubbed(t *testing.T, out []byte, schema *Schema) {
	t.Helper()
	zi := loadZeroInfo(reflect.TypeFor[padStruct]())
	size := int64(zi.layout.Size)
	var images int
	for _, row := range schema.Rows {
		if row.Ty != "epsilon.padStruct" || !strings.HasSuffix(row.Field, ".zero") {
			continue
		}
		images++
		for base := row.Offset; base+size <= row.Offset+row.Size; base += size {
			for _, p := range zi.pads {
				assert.Equal(t, make([]byte, p.hi-p.lo), out[base+int64(p.lo):base+int64(p.hi)],
					"padding of %s at offset %d", row.Field, base)
			}
		}
	}
	assert.NotZero(t, images)
}

func TestZeroOfPaddingSpans(t *testing.T) {
	if PointerWidth != 8 {
		t.Skip("offsets below are for 64-bit targets")
	}
	assert.Equal(t, []span{{1, 8}, {18, 24}}, loadZeroInfo(reflect.TypeFor[padStruct]()).pads)
	assert.Equal(t, []span{{1, 4}, {9, 12}}, loadZeroInfo(reflect.TypeFor[[2]Tuple2[uint8, uint32]]()).pads)
	assert.Equal(t, []span{{1, 8}, {18, 24}, {25, 32}},
		loadZeroInfo(reflect.TypeFor[Tuple2[padStruct, uint8]]()).pads)
	assert.Empty(t, loadZeroInfo(reflect.TypeFor[point]()).pads)
	assert.Empty(t, loadZeroInfo(reflect.TypeFor[[3]uint16]()).pads)
}

func TestZeroCopyPaddingIsScrubbed(t *testing.T) {
	ps := dirtyPadStructs(3)

	t.Run("Value", func(t *testing.T) {
		out, schema := encodeTraced[padStruct, *padStruct](t, ZeroOf[padStruct](), ps[0])
		assertScrubbed(t, out, schema)
	})

	t.Run("SliceZero", func(t *testing.T) {
		out, schema := encodeTraced(t, SliceZero(ZeroOf[padStruct]()), ps)
		assertScrubbed(t, out, schema)
	})

	t.Run("SliceDeep", func(t *testing.T) {
		out, schema := encodeTraced(t, SliceDeep[padStruct, *padStruct](ZeroOf[padStruct]()), ps)
		assertScrubbed(t, out, schema)
	})

	t.Run("SeqZero", func(t *testing.T) {
		out, schema := encodeTraced(t, SeqZero(ZeroOf[padStruct](), len(ps)), values(ps))
		assertScrubbed(t, out, schema)
	})

	t.Run("CallerUntouched", func(t *testing.T) {
		_, err := EncodeBytes(SliceZero(ZeroOf[padStruct]()), ps)
		require.NoError(t, err)
		assert.Equal(t, byte(0xff), sliceBytes(ps)[1])
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, err := EncodeBytes(SliceZero(ZeroOf[padStruct]()), ps)
		require.NoError(t, err)
		b, err := EncodeBytes(SliceZero(ZeroOf[padStruct]()), []padStruct{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		_, full, eps := roundTrip(t, SliceZero(ZeroOf[padStruct]()), ps)
		assert.Equal(t, ps, full)
		assert.Equal(t, ps, eps)
	})
}

func TestClearPadding(t *testing.T) {
	b := bytes.Repeat([]byte{0xff}, 10)
	clearPadding(b, 4, []span{{1, 2}, {3, 4}})
	assert.Equal(t, []byte{0xff, 0, 0xff, 0, 0xff, 0, 0xff, 0, 0xff, 0xff}, b, "trailing partial element untouched")

	b = bytes.Repeat([]byte{0xff}, 4)
	clearPadding(b, 4, nil)
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 4), b)
}
