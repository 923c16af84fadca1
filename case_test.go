package epsilon

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CaseTestSuite struct {
	suite.Suite
	value  person
	stream []byte
	path   string
}

func TestCaseTestSuite(t *testing.T) {
	suite.Run(t, new(CaseTestSuite))
}

func (s *CaseTestSuite) SetupTest() {
	s.value = samplePerson()
	b, err := EncodeBytes(personCodec, s.value)
	s.Require().NoError(err)
	s.stream = b
	s.path = filepath.Join(s.T().TempDir(), "person.eps")
	s.Require().NoError(Store(personCodec, s.value, s.path))
}

func (s *CaseTestSuite) checkView(cs *Case[personView]) {
	v := cs.Uncase()
	s.Equal(s.value.Name, v.Name)
	s.Equal(s.value.Tags, v.Tags)
	s.Equal(s.value.Scores, v.Scores)
	s.Equal(*s.value.Nick, *v.Nick)
	s.Equal(s.value.Origin, *v.Origin)
	s.True(within(cs.Bytes(), unsafe.Pointer(unsafe.StringData(v.Name))), "view must borrow from the store")
	s.True(within(cs.Bytes(), unsafe.Pointer(v.Origin)))
}

func (s *CaseTestSuite) skipUnsupported(err error) {
	if errors.Is(err, ErrMmapUnsupported) {
		s.T().Skip("memory mapping not supported here")
	}
}

func (s *CaseTestSuite) TestReadHeap() {
	cs, err := ReadHeap(personCodec, bytes.NewReader(s.stream), len(s.stream))
	s.Require().NoError(err)
	s.Equal(BackingHeap, cs.Backing())
	s.checkView(cs)

	store := cs.Bytes()
	s.Equal(s.stream, store)
	s.Zero(uintptr(unsafe.Pointer(unsafe.SliceData(store))) % MemoryAlignment)
	s.Equal(Roundup(len(s.stream), MemoryAlignment), cap(store))
	for _, b := range store[len(store):cap(store)] {
		s.Zero(b)
	}

	s.NoError(cs.Close())
	s.Equal(BackingNone, cs.Backing())
	s.Nil(cs.Bytes())
	s.Equal(personView{}, cs.Uncase())
}

func (s *CaseTestSuite) TestReadHeapErrors() {
	_, err := ReadHeap(personCodec, bytes.NewReader(s.stream), len(s.stream)+1)
	s.ErrorIs(err, ErrRead)

	_, err = ReadHeap(personCodec, bytes.NewReader(s.stream), -1)
	s.ErrorIs(err, ErrRead)

	_, err = ReadHeap(shapeCodec, bytes.NewReader(s.stream), len(s.stream))
	s.ErrorIs(err, ErrTypeHash)

	_, err = ReadHeap(personCodec, bytes.NewReader(s.stream), len(s.stream), WithBufferSize(1))
	s.ErrorIs(err, ErrSizeTooSmall)
}

func (s *CaseTestSuite) TestLoadHeap() {
	cs, err := LoadHeap(personCodec, s.path)
	s.Require().NoError(err)
	defer cs.Close()
	s.Equal(BackingHeap, cs.Backing())
	s.checkView(cs)

	_, err = LoadHeap(personCodec, filepath.Join(s.T().TempDir(), "missing"))
	s.ErrorIs(err, ErrFileOpen)
}

func (s *CaseTestSuite) TestLoadMapped() {
	cs, err := LoadMapped(personCodec, s.path, WithFlags(Sequential))
	s.skipUnsupported(err)
	s.Require().NoError(err)
	s.Equal(BackingMapped, cs.Backing())
	s.checkView(cs)
	s.NoError(cs.Close())
	s.Equal(BackingNone, cs.Backing())
	s.NoError(cs.Close(), "closing twice is harmless")
}

func (s *CaseTestSuite) TestReadMappedTruncated() {
	_, err := ReadMapped(personCodec, bytes.NewReader(s.stream[:10]), len(s.stream))
	s.skipUnsupported(err)
	s.ErrorIs(err, ErrRead)
}

func (s *CaseTestSuite) TestMapDirect() {
	cs, err := MapDirect(personCodec, s.path, WithFlags(RandomAccess))
	s.skipUnsupported(err)
	s.Require().NoError(err)
	s.Equal(BackingMapped, cs.Backing())
	s.checkView(cs)
	s.NoError(cs.Close())

	_, err = MapDirect(personCodec, filepath.Join(s.T().TempDir(), "missing"))
	s.ErrorIs(err, ErrFileOpen)
}

func (s *CaseTestSuite) TestStoreLoadFull() {
	v, err := LoadFull(personCodec, s.path)
	s.Require().NoError(err)
	s.Equal(s.value, v)

	_, err = LoadFull(personCodec, filepath.Join(s.T().TempDir(), "missing"))
	s.ErrorIs(err, ErrFileOpen)

	err = Store(personCodec, s.value, filepath.Join(s.T().TempDir(), "no", "such", "dir"))
	s.ErrorIs(err, ErrFileOpen)
}

func TestEncase(t *testing.T) {
	cs := Encase([]string{"a", "b"})
	assert.Equal(t, BackingNone, cs.Backing())
	assert.Equal(t, []string{"a", "b"}, cs.Uncase())
	assert.Nil(t, cs.Bytes())
	require.NoError(t, cs.Close())
	assert.Nil(t, cs.Uncase())
}

func TestBackingString(t *testing.T) {
	assert.Equal(t, "none", BackingNone.String())
	assert.Equal(t, "heap", BackingHeap.String())
	assert.Equal(t, "mapped", BackingMapped.String())
}
