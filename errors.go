package epsilon

import (
	"errors"
	"fmt"
)

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("epsilon: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrFileOpen indicates that a file could not be opened, created or stat'ed.
	ErrFileOpen = errors.New("epsilon: cannot open file")

	// ErrRead indicates that the source ended, or failed, before all expected bytes were read.
	ErrRead = errors.New("epsilon: read error")

	// ErrWrite indicates that the sink failed or accepted fewer bytes than requested.
	ErrWrite = errors.New("epsilon: write error")

	// ErrEndianness indicates that the magic cookie was found byte-reversed:
	// the stream was written on a machine of the opposite endianness.
	ErrEndianness = errors.New("epsilon: stream was written with the opposite endianness")

	// ErrMagicCookie indicates that the stream does not start with the magic cookie in
	// either byte order, so it was not produced by this codec.
	ErrMagicCookie = errors.New("epsilon: wrong magic cookie")

	// ErrMajorVersion indicates a stream whose major version differs from VersionMajor.
	ErrMajorVersion = errors.New("epsilon: major version mismatch")

	// ErrMinorVersion indicates a stream written by a newer minor version than VersionMinor.
	ErrMinorVersion = errors.New("epsilon: minor version too new")

	// ErrPointerWidth indicates a stream written on an architecture with a different word size.
	ErrPointerWidth = errors.New("epsilon: pointer width mismatch")

	// ErrAlignment indicates that a window of the input buffer does not satisfy the native
	// alignment of the type it should be reinterpreted as. Most likely the buffer was not
	// allocated with sufficient alignment.
	ErrAlignment = errors.New("epsilon: misaligned buffer")

	// ErrInvalidTag indicates a discriminant outside the range of valid tags.
	ErrInvalidTag = errors.New("epsilon: invalid tag")

	// ErrTypeHash is matched by every *TypeHashError.
	ErrTypeHash = errors.New("epsilon: wrong type hash")

	// ErrAlignHash is matched by every *AlignHashError.
	ErrAlignHash = errors.New("epsilon: wrong align hash")

	// ErrNilPointer indicates that a nil pointer reached a codec that erases indirections.
	ErrNilPointer = errors.New("epsilon: cannot serialize a nil pointer")

	// ErrArrayLength indicates a slice whose length differs from the fixed array length.
	ErrArrayLength = errors.New("epsilon: wrong fixed array length")

	// ErrIteratorLength indicates a sequence that yielded a different number of
	// elements than the length it declared.
	ErrIteratorLength = errors.New("epsilon: sequence length mismatch")

	// ErrUnknownVariant indicates an enum value that none of the declared variants matches.
	ErrUnknownVariant = errors.New("epsilon: value matches no enum variant")

	// ErrMmapUnsupported is returned by the mapped backing store on platforms without mmap.
	ErrMmapUnsupported = errors.New("epsilon: memory mapping is not supported on this platform")

	// ErrDiscardNegative indicates a Discard operation was attempted with a negative byte count.
	ErrDiscardNegative = errors.New("epsilon: cannot discard negative number of bytes")

	// ErrSizeTooSmall indicates a buffer size too small to be useful was requested.
	ErrSizeTooSmall = errors.New("epsilon: buffer size too small")

	// ErrWriteToNil indicates Reader.WriteTo was called with a nil io.Writer.
	ErrWriteToNil = errors.New("epsilon: WriteTo called with a nil io.Writer")

	// ErrInvalidRead indicates a writer reported an impossible byte count.
	ErrInvalidRead = errors.New("epsilon: invalid read result")

	// ErrInvalidWrite indicates a reader reported an impossible byte count.
	ErrInvalidWrite = errors.New("epsilon: invalid write result")
)

// TypeHashError reports a stream whose structural type differs from the requested one.
type TypeHashError struct {
	SelfTypeName string // type on which decoding was invoked
	SelfTypeHash uint64
	SerTypeName  string // type recorded in the stream
	SerTypeHash  uint64
}

func (e *TypeHashError) Error() string {
	return fmt.Sprintf("%s: stream holds %q (0x%016x) but %q (0x%016x) was requested",
		ErrTypeHash, e.SerTypeName, e.SerTypeHash, e.SelfTypeName, e.SelfTypeHash)
}

func (e *TypeHashError) Is(target error) bool { return target == ErrTypeHash }

// AlignHashError reports a stream whose type matches but whose memory layout does not:
// either it was written on an architecture with different alignment rules, or some
// field changed between zero-copy and deep-copy.
type AlignHashError struct {
	SelfTypeName  string
	SelfAlignHash uint64
	SerTypeName   string
	SerAlignHash  uint64
}

func (e *AlignHashError) Error() string {
	return fmt.Sprintf("%s: stream holds %q (0x%016x) but %q (0x%016x) was requested; "+
		"the writer used different alignment or a field changed copy type",
		ErrAlignHash, e.SerTypeName, e.SerAlignHash, e.SelfTypeName, e.SelfAlignHash)
}

func (e *AlignHashError) Is(target error) bool { return target == ErrAlignHash }
