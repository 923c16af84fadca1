package epsilon

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ReadWithPos is the source every full-copy decoder reads from. It tracks the
// number of bytes consumed since the start of the stream, which is the
// reference for all alignment padding.
type ReadWithPos interface {
	io.Reader
	// Pos returns the number of bytes consumed since the start of the stream.
	Pos() int64
	// ReadExact fills p entirely or fails with ErrRead.
	ReadExact(p []byte) error
	// SkipPadding consumes bytes until Pos is a multiple of align.
	SkipPadding(align uintptr) error
}

type ReaderPro interface {
	io.Reader
	io.ByteReader
	io.WriterTo
}

// Reader provides a buffered reader that tracks its position.
// It wraps bufio.Reader and tracks the first error. Subsequent reads become no-ops.
type Reader struct {
	r     ReaderPro
	count int64 // total bytes read
	err   error // first error encountered.
}

var (
	_ ReaderPro   = (*Reader)(nil)
	_ ReadWithPos = (*Reader)(nil)
)

// NewReaderSize creates a new Reader with a specified buffer size.
// A size of zero selects BUFFER_SIZE.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	if size <= 0 {
		size = BUFFER_SIZE
	}

	switch reader := r.(type) {
	// Read through the enclosing reader and continue from its position.
	case *Reader:
		return &Reader{r: reader, count: reader.count}, nil
	case *SliceReader:
		return &Reader{r: reader, count: reader.Pos()}, nil

	// already buffered or in memory, so we don't need buffering
	case *bufio.Reader:
		return &Reader{r: reader}, nil
	case *bytes.Reader:
		return &Reader{r: reader}, nil
	case *bytes.Buffer:
		return &Reader{r: reader}, nil
	}

	if size < 16 {
		return nil, ErrSizeTooSmall
	}

	// default use bufio
	return &Reader{r: bufio.NewReaderSize(r, size)}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, 0)
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	if err != nil && err != io.EOF {
		r.setError(err)
		return n, r.err
	}
	return n, err
}

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err == nil {
		r.count++
	} else {
		r.setError(err)
	}
	return b, r.err
}

// WriteTo implements io.WriterTo for efficient copying.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if w == nil {
		r.setError(ErrWriteToNil)
		return 0, r.err
	}

	n, err := r.r.WriteTo(w)
	r.count += n
	r.setError(err)
	return n, r.err
}

func (r *Reader) Pos() int64   { return r.count }
func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

// setError records the first non-nil error, wrapped as ErrRead.
// A clean end of stream in the middle of a value is a truncation.
func (r *Reader) setError(err error) {
	if r.err != nil || err == nil {
		return
	}
	if errors.Is(err, ErrRead) {
		r.err = err
		return
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	r.err = fmt.Errorf("%w: %w", ErrRead, err)
}

// ReadExact fills p entirely.
func (r *Reader) ReadExact(p []byte) error {
	if r.err != nil {
		return r.err
	}
	if len(p) == 0 {
		return nil
	}
	n, err := io.ReadFull(r.r, p)
	r.count += int64(n)
	r.setError(err)
	return r.err
}

// SkipPadding discards bytes until the position is aligned to align.
func (r *Reader) SkipPadding(align uintptr) error {
	if r.err != nil || align <= 1 {
		return r.err
	}
	n, err := Discard(r.r, PadAlignTo(r.count, int64(align)))
	r.count += n
	r.setError(err)
	return r.err
}
