package epsilon

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

type writer interface {
	io.Writer
	io.ReaderFrom
	io.Closer
}

type WriterPro interface {
	writer
	io.ByteWriter
	io.StringWriter
	Size() int
	Flush() error
}

// FieldWriter is the sink every codec serializes into. It tracks the number
// of bytes written since the start of the stream, which is the reference for
// all alignment padding.
//
// Implementations must produce byte-identical output: decorators may observe
// fields, padding and zero-copy blocks but never change what is written.
type FieldWriter interface {
	io.Writer
	// Pos returns the number of bytes written since the start of the stream.
	Pos() int64
	// WritePadding writes zeros until Pos is a multiple of align.
	WritePadding(align uintptr) error
	// WriteZeroCopy pads to align, then writes the memory image p of a
	// zero-copy value (or slice of values) named typeName.
	WriteZeroCopy(typeName string, align uintptr, p []byte) error
	// BeginField and EndField bracket the serialization of a named field.
	BeginField(name, typeName string)
	EndField()
	// Logger returns the logger for non-fatal advisories.
	Logger() *slog.Logger
}

// Writer provides a buffered writer that tracks its position.
// It wraps bufio.Writer for efficiency and tracks the first error that occurs.
// After an error, all subsequent write operations become no-ops.
type Writer struct {
	w     WriterPro
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	depth int
	log   *slog.Logger
}

var (
	_ WriterPro   = (*Writer)(nil)
	_ FieldWriter = (*Writer)(nil)
)

// NewWriterSize creates a new Writer with a specified buffer size.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	if size <= 0 {
		size = BUFFER_SIZE
	}

	switch bw := w.(type) {
	// Write through the enclosing Writer so both agree on the stream position.
	case *Writer:
		return &Writer{w: bw, count: bw.count, depth: bw.depth + 1, log: bw.log}, nil

	// prevent unpredictable double-buffering.
	case *bufio.Writer:
		return &Writer{w: &bufioWriterAdapter{bw}, depth: 1}, nil

	// underlying is a buf so we don't need buffering
	case *AlignedBuffer:
		return &Writer{w: bw}, nil
	case *bytes.Buffer:
		return &Writer{w: &bytesBufferWriterAdapter{bw}}, nil
	}

	// default use bufio
	return &Writer{w: &bufioWriterAdapter{bufio.NewWriterSize(w, size)}}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// WithLogger sets the logger used for advisories and returns the writer for chaining.
func (w *Writer) WithLogger(log *slog.Logger) *Writer {
	w.log = log
	return w
}

// Logger returns the configured logger, or slog.Default().
func (w *Writer) Logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}

// Close closes the underlying writer if it implements io.Closer.
func (w *Writer) Close() error {
	return w.w.Close()
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	w.setError(err)
	return n, w.err
}

// WriteString implements the io.StringWriter interface.
func (w *Writer) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(str)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.w.WriteByte(v)
	if err == nil {
		w.count++
	}
	w.setError(err)
	return w.err
}

// ReadFrom implements io.ReaderFrom for efficient copying.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	if r == nil || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.ReadFrom(r)
	w.count += n
	w.setError(err)
	return n, w.err
}

func (w *Writer) Size() int    { return w.w.Size() }
func (w *Writer) Pos() int64   { return w.count }
func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error, wrapped as ErrWrite.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err != nil || err == nil {
		return
	}
	if !errors.Is(err, ErrWrite) {
		err = fmt.Errorf("%w: %w", ErrWrite, err)
	}
	w.err = err
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	// Only the outermost writer should be responsible for the final flush.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int64) error {
	if w.err != nil || n <= 0 {
		return w.err
	}
	if n <= BUFFER_SIZE {
		_, err := w.Write(empty[:n])
		return err
	}
	_, err := io.CopyN(w, ZeroReader, n)
	w.setError(err)
	return w.err
}

// WritePadding writes zero bytes until the position is aligned to align.
func (w *Writer) WritePadding(align uintptr) error {
	if align <= 1 {
		return w.err
	}
	return w.WriteZeros(PadAlignTo(w.count, int64(align)))
}

// WriteZeroCopy pads to align and writes p.
func (w *Writer) WriteZeroCopy(_ string, align uintptr, p []byte) error {
	if err := w.WritePadding(align); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

func (w *Writer) BeginField(string, string) {}
func (w *Writer) EndField()                 {}
