package epsilon

import (
	"errors"
	"io"
)

// PeekableReader is a reader that allows peeking ahead at the underlying data stream.
type PeekableReader struct {
	R io.Reader // The underlying reader.
	B []byte    // The buffer for peeked data.
}

// PeekReader returns a PeekableReader. If the given reader is already a
// PeekableReader, it is returned directly.
func PeekReader(r io.Reader) *PeekableReader {
	if pr, ok := r.(*PeekableReader); ok {
		return pr
	}
	return &PeekableReader{R: r}
}

// Peek returns the next n bytes without advancing the reader. Fewer bytes are
// returned, together with the error, if the stream ends first.
func (r *PeekableReader) Peek(n int) ([]byte, error) {
	if len(r.B) >= n {
		return r.B[:n], nil
	}

	i := len(r.B)
	r.B = append(r.B, make([]byte, n-i)...)

	var err error
	for i < n {
		read, er := r.R.Read(r.B[i:])
		i += read
		if er != nil {
			err = er
			break
		}
	}
	r.B = r.B[:i]
	return r.B, err
}

// Read reads data into p. It first reads from the peeked buffer and then
// from the underlying reader if necessary.
func (r *PeekableReader) Read(p []byte) (n int, err error) {
	n = copy(p, r.B)
	if len(p) <= len(r.B) {
		r.B = r.B[n:]
		return n, nil
	}
	r.B = nil
	read, err := r.R.Read(p[n:])
	n += read
	return n, err
}

// Close closes the underlying reader if it implements io.Closer.
func (r *PeekableReader) Close() error {
	if c, ok := r.R.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// maxHeaderPeek bounds how much PeekHeader buffers looking for the end of the type name.
const maxHeaderPeek = 1 << 16

// PeekHeader reads the header at the start of r without consuming it. The
// returned reader replays the whole stream, header included, so it can be
// passed on to DecodeFull once the header has been inspected.
func PeekHeader(r io.Reader) (Header, *PeekableReader, error) {
	pr := PeekReader(r)
	for n := 64; ; n *= 2 {
		b, perr := pr.Peek(n)
		hd, err := ReadHeader(NewSliceReader(b))
		if err == nil || !errors.Is(err, ErrRead) || perr != nil || n >= maxHeaderPeek {
			return hd, pr, err
		}
	}
}
