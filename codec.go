package epsilon

// Copy classifies how a type travels through the codec.
type Copy uint8

const (
	// Zero types have a fixed, reference-free layout: they are written as one
	// bulk copy and epsilon-decoded by reinterpreting the input bytes.
	Zero Copy = iota
	// Deep types are written and decoded field by field.
	Deep
)

func (c Copy) String() string {
	if c == Zero {
		return "Zero"
	}
	return "Deep"
}

// Layout is the native size and alignment of a zero-copy type.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// TypeInfo describes the shape of a serializable type.
type TypeInfo interface {
	// TypeName is a human-readable name used in diagnostics only.
	TypeName() string
	// TypeHash folds the structural shape of the type.
	TypeHash(h *Hasher)
	// AlignHash folds the memory layout of the type, as if placed at *offset.
	AlignHash(h *Hasher, offset *uintptr)
	// Copy reports the copy classification.
	Copy() Copy
}

// Codec serializes values of type T and decodes them either into a fresh T
// (full-copy) or into a view E borrowing from the input buffer (epsilon-copy).
type Codec[T, E any] interface {
	TypeInfo
	// Serialize writes v without any header.
	Serialize(w FieldWriter, v T) error
	// DecodeFull reads back a value written by Serialize.
	DecodeFull(r ReadWithPos) (T, error)
	// DecodeEps decodes a view whose leaves point into the reader's buffer.
	DecodeEps(r *SliceReader) (E, error)
}

// ZeroCodec is a Codec whose values are bit-copyable. Containers built from a
// ZeroCodec use the bulk path; containers built from a Codec use the
// per-element path. The interface is sealed: zero-copy codecs are only
// obtained from this package (primitives and ZeroOf).
type ZeroCodec[T, E any] interface {
	Codec[T, E]
	Layout() Layout
	padding() []span
	zeroCopy()
}

// span is a byte range [lo, hi) of a memory image.
type span struct{ lo, hi uintptr }

// clearPadding zeroes the padding of every element of size bytes in b.
func clearPadding(b []byte, size uintptr, pads []span) {
	if len(pads) == 0 || size == 0 {
		return
	}
	for base := uintptr(0); base+size <= uintptr(len(b)); base += size {
		for _, p := range pads {
			clear(b[base+p.lo : base+p.hi])
		}
	}
}

// writeZeroValue writes the memory image of v with its padding zeroed.
// v is a private copy, so its padding can be cleared in place.
func writeZeroValue[T, E any](w FieldWriter, c ZeroCodec[T, E], v T) error {
	l := c.Layout()
	b := bytesOf(&v)
	clearPadding(b, l.Size, c.padding())
	return w.WriteZeroCopy(c.TypeName(), l.Align, b)
}

// WriteField serializes v as the named field of a record.
func WriteField[T, E any](w FieldWriter, name string, c Codec[T, E], v T) error {
	w.BeginField(name, c.TypeName())
	err := c.Serialize(w, v)
	w.EndField()
	return err
}
