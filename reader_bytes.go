package epsilon

import (
	"fmt"
	"io"
	"unsafe"
)

// SliceReader reads from a byte slice and hands out windows of it. It is the
// source of every epsilon-copy decoder: views returned by the codecs borrow
// from B and stay valid as long as B does.
type SliceReader struct {
	B []byte // source slice; B[0] is the start of the stream
	N int    // current read position
}

var (
	_ ReaderPro   = (*SliceReader)(nil)
	_ ReadWithPos = (*SliceReader)(nil)
)

// NewSliceReader creates a new SliceReader.
func NewSliceReader(b []byte) *SliceReader {
	return &SliceReader{B: b}
}

// Read implements the [io.Reader] interface.
func (r *SliceReader) Read(p []byte) (int, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (r *SliceReader) ReadByte() (byte, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	b := r.B[r.N]
	r.N++
	return b, nil
}

// WriteTo implements the [io.WriterTo] interface for efficiency.
func (r *SliceReader) WriteTo(w io.Writer) (int64, error) {
	if r.N >= len(r.B) {
		return 0, nil
	}
	n, err := w.Write(r.B[r.N:])
	if n < 0 || n > len(r.B)-r.N {
		return 0, ErrInvalidRead
	}
	r.N += n
	return int64(n), err
}

func (r *SliceReader) Pos() int64 { return int64(r.N) }

func (r *SliceReader) truncated(want int) error {
	return fmt.Errorf("%w: %w: need %d bytes at offset %d, %d available",
		ErrRead, io.ErrUnexpectedEOF, want, r.N, r.Available())
}

// ReadExact fills p entirely.
func (r *SliceReader) ReadExact(p []byte) error {
	if len(p) > r.Available() {
		return r.truncated(len(p))
	}
	r.N += copy(p, r.B[r.N:])
	return nil
}

// SkipPadding advances until the position is aligned to align.
func (r *SliceReader) SkipPadding(align uintptr) error {
	if align <= 1 {
		return nil
	}
	pad := int(PadAlignTo(uintptr(r.N), align))
	if pad > r.Available() {
		return r.truncated(pad)
	}
	r.N += pad
	return nil
}

// Window returns the next n bytes without copying and advances past them.
func (r *SliceReader) Window(n int) ([]byte, error) {
	if n < 0 || n > r.Available() {
		return nil, r.truncated(n)
	}
	w := r.B[r.N : r.N+n : r.N+n]
	r.N += n
	return w, nil
}

// Addr returns the absolute address of the current position.
func (r *SliceReader) Addr() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(r.B))) + uintptr(r.N)
}

// Reset rewinds to the start of the slice.
func (r *SliceReader) Reset() { r.N = 0 }

// Len returns the number of bytes read.
func (r *SliceReader) Len() int { return r.N }

// Size returns the size of the underlying byte slice.
func (r *SliceReader) Size() int { return len(r.B) }

// Available returns the number of bytes available for reading.
func (r *SliceReader) Available() int {
	length := len(r.B) - r.N
	if length <= 0 {
		return 0
	}
	return length
}
