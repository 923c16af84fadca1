package epsilon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

func serializeRoot[T, E any](w FieldWriter, c Codec[T, E], v T) error {
	if err := writeHeader(w, c); err != nil {
		return err
	}
	return WriteField(w, "ROOT", c, v)
}

// Encode writes a header followed by v to w and returns the number of bytes written.
// When w is a *Writer, padding stays relative to the start of w's stream.
func Encode[T, E any](c Codec[T, E], v T, w io.Writer, opts ...Option) (int64, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return 0, err
	}
	fw, err := NewWriterSize(w, cfg.bufferSize)
	if err != nil {
		return 0, err
	}
	fw.WithLogger(cfg.logger)
	start := fw.Count()
	if err := serializeRoot(fw, c, v); err != nil {
		return fw.Count() - start, err
	}
	n, err := fw.Result()
	return n - start, err
}

// EncodeWithSchema is Encode, additionally returning the schema of what was
// written, sorted by offset.
func EncodeWithSchema[T, E any](c Codec[T, E], v T, w io.Writer, opts ...Option) (*Schema, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	fw, err := NewWriterSize(w, cfg.bufferSize)
	if err != nil {
		return nil, err
	}
	fw.WithLogger(cfg.logger)
	sw := NewSchemaWriter(fw)
	if err := serializeRoot(sw, c, v); err != nil {
		return nil, err
	}
	if _, err := fw.Result(); err != nil {
		return nil, err
	}
	schema := sw.Schema()
	schema.Sort()
	return schema, nil
}

// EncodeBytes encodes v into a fresh buffer aligned to MemoryAlignment, ready
// for DecodeEps.
func EncodeBytes[T, E any](c Codec[T, E], v T, opts ...Option) ([]byte, error) {
	buf := NewAlignedBuffer(BUFFER_SIZE)
	if _, err := Encode(c, v, buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Store encodes v into the file at path, creating or truncating it.
func Store[T, E any](c Codec[T, E], v T, path string, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWrite, cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if _, err := Encode(c, v, bw, opts...); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// DecodeFull checks the header at the start of r and decodes an owned value.
func DecodeFull[T, E any](c Codec[T, E], r io.Reader, opts ...Option) (T, error) {
	var zero T
	cfg, err := newConfig(opts)
	if err != nil {
		return zero, err
	}
	rd, err := NewReaderSize(r, cfg.bufferSize)
	if err != nil {
		return zero, err
	}
	if err := CheckHeader(rd, c); err != nil {
		return zero, err
	}
	return c.DecodeFull(rd)
}

// DecodeEps checks the header at the start of b and decodes a view borrowing
// from b. The view is valid as long as b is neither modified nor released.
//
// Zero-copy members are reinterpreted in place, so b must be allocated with
// sufficient alignment (see AlignedBuffer and ReadHeap); otherwise decoding
// fails with ErrAlignment.
func DecodeEps[T, E any](c Codec[T, E], b []byte) (E, error) {
	var zero E
	r := NewSliceReader(b)
	if err := CheckHeader(r, c); err != nil {
		return zero, err
	}
	return c.DecodeEps(r)
}

// LoadFull decodes an owned value from the file at path.
func LoadFull[T, E any](c Codec[T, E], path string, opts ...Option) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer f.Close()
	return DecodeFull(c, f, opts...)
}

// IsHeaderError reports whether err was detected while checking a header,
// that is before any payload byte was decoded.
func IsHeaderError(err error) bool {
	for _, target := range []error{
		ErrEndianness, ErrMagicCookie, ErrMajorVersion, ErrMinorVersion,
		ErrPointerWidth, ErrTypeHash, ErrAlignHash,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
