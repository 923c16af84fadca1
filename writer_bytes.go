package epsilon

import (
	"io"
	"unsafe"
)

// AlignedBuffer is a growable in-memory sink whose storage always starts at a
// MemoryAlignment boundary, so its contents can be epsilon-decoded in place.
type AlignedBuffer struct {
	B []byte // written data, aligned
}

// NewAlignedBuffer creates an AlignedBuffer with the given initial capacity.
func NewAlignedBuffer(capacity int) *AlignedBuffer {
	return &AlignedBuffer{B: alignedAlloc(capacity)[:0]}
}

// alignedAlloc returns a zeroed slice of length n whose first byte sits at a
// MemoryAlignment boundary.
func alignedAlloc(n int) []byte {
	raw := make([]byte, n+MemoryAlignment)
	off := int(PadAlignTo(uintptr(unsafe.Pointer(unsafe.SliceData(raw))), MemoryAlignment))
	return raw[off : off+n : off+n]
}

// grow makes room for n more bytes.
func (w *AlignedBuffer) grow(n int) {
	if len(w.B)+n <= cap(w.B) {
		return
	}
	c := max(2*cap(w.B), len(w.B)+n, 512)
	nb := alignedAlloc(c)
	copy(nb, w.B)
	w.B = nb[:len(w.B)]
}

// Close does nothing.
func (w *AlignedBuffer) Close() error { return nil }

// Write implements the io.Writer interface.
func (w *AlignedBuffer) Write(p []byte) (int, error) {
	w.grow(len(p))
	w.B = append(w.B, p...)
	return len(p), nil
}

// WriteString implements the io.StringWriter interface for efficiency.
func (w *AlignedBuffer) WriteString(s string) (int, error) {
	w.grow(len(s))
	w.B = append(w.B, s...)
	return len(s), nil
}

// WriteByte implements the io.ByteWriter interface for efficiency.
func (w *AlignedBuffer) WriteByte(c byte) error {
	w.grow(1)
	w.B = append(w.B, c)
	return nil
}

// ReadFrom implements the io.ReaderFrom interface and reads data from r until EOF or an error occurs.
func (w *AlignedBuffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		w.grow(BUFFER_SIZE)
		n, err := r.Read(w.B[len(w.B):cap(w.B)])
		if n < 0 {
			return total, ErrInvalidWrite
		}
		w.B = w.B[:len(w.B)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Flush does nothing.
func (w *AlignedBuffer) Flush() error { return nil }

// Reset discards the written data and keeps the storage.
func (w *AlignedBuffer) Reset() { w.B = w.B[:0] }

// Len returns the number of bytes written.
func (w *AlignedBuffer) Len() int { return len(w.B) }

// Size returns the capacity of the underlying storage.
func (w *AlignedBuffer) Size() int { return cap(w.B) }

// Bytes returns the written data. The slice is MemoryAlignment aligned.
func (w *AlignedBuffer) Bytes() []byte { return w.B }
