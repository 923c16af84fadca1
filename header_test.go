package epsilon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HeaderTestSuite struct {
	suite.Suite
	stream []byte
}

func TestHeaderTestSuite(t *testing.T) {
	suite.Run(t, new(HeaderTestSuite))
}

func (s *HeaderTestSuite) SetupTest() {
	b, err := EncodeBytes[uint, uint](Uint(), 42)
	s.Require().NoError(err)
	s.stream = b
}

// tampered returns a 64-aligned copy of the stream after applying edit.
func (s *HeaderTestSuite) tampered(edit func(b []byte)) []byte {
	b := alignedAlloc(len(s.stream))
	copy(b, s.stream)
	edit(b)
	return b
}

// decodeBoth decodes b as a uint on both paths and returns both errors.
func decodeBoth(b []byte) (full, eps error) {
	_, full = DecodeFull[uint, uint](Uint(), bytes.NewReader(b))
	_, eps = DecodeEps[uint, uint](Uint(), b)
	return full, eps
}

func (s *HeaderTestSuite) TestLayout() {
	if PointerWidth != 8 {
		s.T().Skip("offsets below are for 64-bit targets")
	}
	b := s.stream
	ne := binary.NativeEndian

	s.Require().Len(b, 56)
	s.Equal("epserde ", string(b[0:8]))
	s.Equal(Magic, ne.Uint64(b[0:8]))
	s.Equal(VersionMajor, ne.Uint16(b[8:10]))
	s.Equal(VersionMinor, ne.Uint16(b[10:12]))
	s.Equal(byte(8), b[12])
	s.Equal([]byte{0, 0, 0}, b[13:16])
	s.Equal(TypeHash(Uint()), ne.Uint64(b[16:24]))
	s.Equal(AlignHash(Uint()), ne.Uint64(b[24:32]))
	s.Equal(uint64(4), ne.Uint64(b[32:40]))
	s.Equal("uint", string(b[40:44]))
	s.Equal([]byte{0, 0, 0, 0}, b[44:48])
	s.Equal(uint64(42), ne.Uint64(b[48:56]))
}

func (s *HeaderTestSuite) TestReadHeader() {
	hd, err := ReadHeader(NewSliceReader(s.stream))
	s.Require().NoError(err)
	s.Equal(Header{
		Magic:        Magic,
		Major:        VersionMajor,
		Minor:        VersionMinor,
		PointerWidth: PointerWidth,
		TypeHash:     TypeHash(Uint()),
		AlignHash:    AlignHash(Uint()),
		TypeName:     "uint",
	}, hd)
}

func (s *HeaderTestSuite) TestCheckHeaderConsumesHeaderOnly() {
	sr := NewSliceReader(s.stream)
	s.Require().NoError(CheckHeader(sr, Uint()))
	first := sr.Pos()

	rd, err := NewReader(bytes.NewReader(s.stream))
	s.Require().NoError(err)
	s.Require().NoError(CheckHeader(rd, Uint()))
	s.Equal(first, rd.Pos())

	// Checking twice reads the same header twice.
	sr.Reset()
	s.Require().NoError(CheckHeader(sr, Uint()))
	s.Equal(first, sr.Pos())

	v, err := Uint().DecodeEps(sr)
	s.Require().NoError(err)
	s.Equal(uint(42), v)
}

func (s *HeaderTestSuite) TestEndianness() {
	b := s.tampered(func(b []byte) { binary.NativeEndian.PutUint64(b, MagicRev) })
	full, eps := decodeBoth(b)
	s.ErrorIs(full, ErrEndianness)
	s.ErrorIs(eps, ErrEndianness)
	s.True(IsHeaderError(eps))
}

func (s *HeaderTestSuite) TestMagicCookie() {
	b := s.tampered(func(b []byte) { binary.NativeEndian.PutUint64(b, 0x0123456789abcdef) })
	full, eps := decodeBoth(b)
	s.ErrorIs(full, ErrMagicCookie)
	s.ErrorIs(eps, ErrMagicCookie)
}

func (s *HeaderTestSuite) TestVersions() {
	b := s.tampered(func(b []byte) { binary.NativeEndian.PutUint16(b[8:], VersionMajor+1) })
	full, eps := decodeBoth(b)
	s.ErrorIs(full, ErrMajorVersion)
	s.ErrorIs(eps, ErrMajorVersion)

	b = s.tampered(func(b []byte) { binary.NativeEndian.PutUint16(b[10:], VersionMinor+1) })
	full, eps = decodeBoth(b)
	s.ErrorIs(full, ErrMinorVersion)
	s.ErrorIs(eps, ErrMinorVersion)

	// Older minor versions are accepted.
	b = s.tampered(func(b []byte) { binary.NativeEndian.PutUint16(b[10:], 0) })
	full, eps = decodeBoth(b)
	s.NoError(full)
	s.NoError(eps)
}

func (s *HeaderTestSuite) TestPointerWidth() {
	b := s.tampered(func(b []byte) { b[12] = PointerWidth / 2 })
	full, eps := decodeBoth(b)
	s.ErrorIs(full, ErrPointerWidth)
	s.ErrorIs(eps, ErrPointerWidth)
}

func (s *HeaderTestSuite) TestTypeHashMismatch() {
	_, err := DecodeFull[int8, int8](Int8(), bytes.NewReader(s.stream))
	s.Require().ErrorIs(err, ErrTypeHash)
	var the *TypeHashError
	s.Require().True(errors.As(err, &the))
	s.Equal("uint", the.SerTypeName)
	s.Equal("int8", the.SelfTypeName)
	s.Equal(TypeHash(Uint()), the.SerTypeHash)
	s.Equal(TypeHash(Int8()), the.SelfTypeHash)
	s.True(IsHeaderError(err))

	_, err = DecodeEps[int8, int8](Int8(), s.stream)
	s.ErrorIs(err, ErrTypeHash)
}

func (s *HeaderTestSuite) TestAlignHashMismatch() {
	b, err := EncodeBytes[[2]uint32, *[2]uint32](ZeroOf[[2]uint32](), [2]uint32{1, 2})
	s.Require().NoError(err)

	_, err = DecodeFull(ArrayDeep[uint32, uint32](Uint32(), 2), bytes.NewReader(b))
	s.Require().ErrorIs(err, ErrAlignHash)
	s.NotErrorIs(err, ErrTypeHash)
	var ahe *AlignHashError
	s.Require().True(errors.As(err, &ahe))
	s.Equal(AlignHash(ZeroOf[[2]uint32]()), ahe.SerAlignHash)

	_, err = DecodeEps(ArrayDeep[uint32, uint32](Uint32(), 2), b)
	s.ErrorIs(err, ErrAlignHash)
}

func (s *HeaderTestSuite) TestTruncation() {
	for _, n := range []int{0, 7, 11, 20, 35, 41, len(s.stream) - 1} {
		full, eps := decodeBoth(s.stream[:n])
		s.ErrorIs(full, ErrRead, "full decode of %d bytes", n)
		s.ErrorIs(eps, ErrRead, "eps decode of %d bytes", n)
		s.False(IsHeaderError(eps))
	}
}

func (s *HeaderTestSuite) TestPeekHeader() {
	hd, pr, err := PeekHeader(bytes.NewReader(s.stream))
	s.Require().NoError(err)
	s.Equal("uint", hd.TypeName)
	s.Equal(TypeHash(Uint()), hd.TypeHash)

	v, err := DecodeFull[uint, uint](Uint(), pr)
	s.Require().NoError(err)
	s.Equal(uint(42), v)
	s.NoError(pr.Close())
}

func TestPeekHeaderLongName(t *testing.T) {
	name := string(bytes.Repeat([]byte("n"), 300))
	c := Struct[Unit, Unit](name)
	b, err := EncodeBytes(c, Unit{})
	require.NoError(t, err)

	hd, pr, err := PeekHeader(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, name, hd.TypeName)

	_, err = DecodeFull(c, pr)
	assert.NoError(t, err)

	_, _, err = PeekHeader(bytes.NewReader(b[:100]))
	assert.ErrorIs(t, err, ErrRead)
}
