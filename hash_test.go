package epsilon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedA struct{ Left, Right uint32 }
type namedB struct{ Up, Down uint32 }

func TestTypeHashIgnoresNames(t *testing.T) {
	a := Struct("A",
		Field[namedA, namedA, uint32, uint32]("left", Uint32(), func(v *namedA) *uint32 { return &v.Left }, func(v *namedA) *uint32 { return &v.Left }),
		Field("right", String(), func(v *namedA) *string { return nil }, func(v *namedA) *string { return nil }),
	)
	b := Struct("B",
		Field[namedB, namedB, uint32, uint32]("up", Uint32(), func(v *namedB) *uint32 { return &v.Up }, func(v *namedB) *uint32 { return &v.Up }),
		Field("down", String(), func(v *namedB) *string { return nil }, func(v *namedB) *string { return nil }),
	)
	assert.Equal(t, TypeHash(a), TypeHash(b))
	assert.Equal(t, AlignHash(a), AlignHash(b))

	assert.Equal(t, TypeHash(ZeroOf[namedA]()), TypeHash(ZeroOf[namedB]()))
	assert.Equal(t, AlignHash(ZeroOf[namedA]()), AlignHash(ZeroOf[namedB]()))
}

func TestTypeHashDistinguishesShapes(t *testing.T) {
	hashes := map[string]uint64{
		"uint":      TypeHash(Uint()),
		"int8":      TypeHash(Int8()),
		"int32":     TypeHash(Int32()),
		"rune":      TypeHash(Rune()),
		"string":    TypeHash(String()),
		"bytes":     TypeHash(Bytes()),
		"option":    TypeHash(Optional(String())),
		"tuple":     TypeHash(ZeroOf[Tuple2[uint32, uint32]]()),
		"struct":    TypeHash(ZeroOf[namedA]()),
		"range":     TypeHash(RangeOf(String())),
		"rangeFrom": TypeHash(RangeFromOf(String())),
		"unit":      TypeHash(UnitCodec()),
		"rangeFull": TypeHash(RangeFullOf()),
	}
	seen := make(map[uint64]string)
	for name, h := range hashes {
		if other, ok := seen[h]; ok {
			t.Errorf("%s and %s share type hash 0x%016x", name, other, h)
		}
		seen[h] = name
	}
}

func TestTypeHashIsStable(t *testing.T) {
	assert.Equal(t, TypeHash(personCodec), TypeHash(personCodec))
	assert.Equal(t, AlignHash(personCodec), AlignHash(personCodec))
	assert.Equal(t, TypeHash(shapeCodec), TypeHash(shapeCodec))
}

func TestZeroOfMatchesPrimitive(t *testing.T) {
	assert.Equal(t, TypeHash(Uint32()), TypeHash(ZeroOf[uint32]()))
	assert.Equal(t, AlignHash(Uint32()), AlignHash(ZeroOf[uint32]()))
	assert.Equal(t, Uint32().Layout(), ZeroOf[uint32]().Layout())
}

func TestPointerErasure(t *testing.T) {
	assert.Equal(t, TypeHash(String()), TypeHash(Pointer(String())))
	assert.Equal(t, AlignHash(String()), AlignHash(Pointer(String())))
	assert.Equal(t, TypeHash(String()), TypeHash(Atomic(String())))
	assert.Equal(t, TypeHash(Pointer(Pointer(String()))), TypeHash(Atomic(String())))
}

func TestCopyTypeChangesAlignHashOnly(t *testing.T) {
	zeroArr := ZeroOf[[2]uint32]()
	deepArr := ArrayDeep[uint32, uint32](Uint32(), 2)
	assert.Equal(t, TypeHash(zeroArr), TypeHash(deepArr))
	assert.NotEqual(t, AlignHash(zeroArr), AlignHash(deepArr))

	zeroVec := SliceZero(Uint32())
	deepVec := SliceDeep[uint32, uint32](Uint32())
	assert.Equal(t, TypeHash(zeroVec), TypeHash(deepVec))
	assert.NotEqual(t, AlignHash(zeroVec), AlignHash(deepVec))

	assert.NotEqual(t, TypeHash(String()), TypeHash(Bytes()))
	assert.Equal(t, AlignHash(String()), AlignHash(Bytes()))
}

func TestFieldOrderMatters(t *testing.T) {
	type packed struct {
		A, B uint32
		C    uint64
	}
	type padded struct {
		A uint32
		C uint64
		B uint32
	}
	assert.NotEqual(t, TypeHash(ZeroOf[packed]()), TypeHash(ZeroOf[padded]()))
	assert.NotEqual(t, AlignHash(ZeroOf[packed]()), AlignHash(ZeroOf[padded]()))
}

func TestHasherFold(t *testing.T) {
	h := NewHasher()
	var offset uintptr = 1
	h.foldStd(&offset, Layout{Size: 8, Align: 8})
	assert.Equal(t, uintptr(16), offset)

	a, b := NewHasher(), NewHasher()
	a.WriteString("ab")
	a.WriteString("c")
	b.WriteString("a")
	b.WriteString("bc")
	assert.NotEqual(t, a.Sum64(), b.Sum64())
}

func TestRuneIsNotZeroOfRune(t *testing.T) {
	// rune and int32 are the same type to reflection, so only Rune hashes as a character.
	assert.NotEqual(t, TypeHash(Rune()), TypeHash(ZeroOf[rune]()))
	assert.Equal(t, TypeHash(Int32()), TypeHash(ZeroOf[rune]()))

	b, err := EncodeBytes[rune, rune](Rune(), 'x')
	require.NoError(t, err)
	_, err = DecodeEps[rune, *rune](ZeroOf[rune](), b)
	assert.ErrorIs(t, err, ErrTypeHash)
	r, err := DecodeEps[rune, rune](Rune(), b)
	require.NoError(t, err)
	assert.Equal(t, 'x', r)
}
