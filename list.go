package epsilon

import (
	"fmt"
	"math"
)

// preallocLimit bounds the capacity reserved up front for deep sequences, so
// a corrupted length fails on read instead of on allocation.
const preallocLimit = 1024

func writeLen(w FieldWriter, n int) error {
	return WriteField[uint, uint](w, "len", Uint(), uint(n))
}

func readLen(r ReadWithPos) (int, error) {
	n, err := Uint().DecodeFull(r)
	if err != nil {
		return 0, err
	}
	if int(n) < 0 {
		return 0, fmt.Errorf("%w: length %d at offset %d overflows int", ErrRead, n, r.Pos())
	}
	return int(n), nil
}

// checkRemaining fails early when r is in memory and cannot hold n bytes.
func checkRemaining(r ReadWithPos, n uint64) error {
	if sr, ok := r.(*SliceReader); ok && n > uint64(sr.Available()) {
		return sr.truncated(int(min(n, uint64(^uint(0)>>1))))
	}
	return nil
}

// byteLen is n elements of the given size in bytes.
func byteLen(r ReadWithPos, n int, size uintptr) (int, error) {
	if size != 0 && uint64(n) > math.MaxInt/uint64(size) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes at offset %d overflow int", ErrRead, n, size, r.Pos())
	}
	return n * int(size), nil
}

// sliceZero is a length-prefixed sequence of zero-copy elements, written as
// one bulk copy after padding to the element alignment.
type sliceZero[T, E any] struct {
	elem ZeroCodec[T, E]
}

// SliceZero returns the codec of a sequence of zero-copy elements. Its
// epsilon view is a slice aliasing the input buffer.
func SliceZero[T, E any](elem ZeroCodec[T, E]) Codec[[]T, []T] {
	return sliceZero[T, E]{elem: elem}
}

func (s sliceZero[T, E]) TypeName() string { return "[]" + s.elem.TypeName() }
func (s sliceZero[T, E]) Copy() Copy       { return Deep }

func (s sliceZero[T, E]) TypeHash(h *Hasher) {
	h.WriteString("Vec")
	s.elem.TypeHash(h)
}

func (s sliceZero[T, E]) AlignHash(h *Hasher, _ *uintptr) {
	h.WriteUint(uint64(s.elem.Layout().Size))
	var local uintptr
	s.elem.AlignHash(h, &local)
}

func (s sliceZero[T, E]) Serialize(w FieldWriter, v []T) error {
	if err := writeLen(w, len(v)); err != nil {
		return err
	}
	l := s.elem.Layout()
	b := sliceBytes(v)
	pads := s.elem.padding()
	if len(pads) == 0 {
		return w.WriteZeroCopy(s.elem.TypeName(), l.Align, b)
	}
	// The caller's elements keep whatever their padding holds; the stream
	// gets a scrubbed copy.
	var scratch []byte
	if len(b) <= CHUNK_SIZE {
		bp := chunkPool.Get().(*[]byte)
		defer chunkPool.Put(bp)
		scratch = (*bp)[:len(b)]
	} else {
		scratch = make([]byte, len(b))
	}
	copy(scratch, b)
	clearPadding(scratch, l.Size, pads)
	return w.WriteZeroCopy(s.elem.TypeName(), l.Align, scratch)
}

func (s sliceZero[T, E]) DecodeFull(r ReadWithPos) ([]T, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	l := s.elem.Layout()
	if err := r.SkipPadding(l.Align); err != nil {
		return nil, err
	}
	size, err := byteLen(r, n, l.Size)
	if err != nil {
		return nil, err
	}
	if err := checkRemaining(r, uint64(size)); err != nil {
		return nil, err
	}
	v := make([]T, n)
	if err := r.ReadExact(sliceBytes(v)); err != nil {
		return nil, err
	}
	return v, nil
}

func (s sliceZero[T, E]) DecodeEps(r *SliceReader) ([]T, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	l := s.elem.Layout()
	if err := r.SkipPadding(l.Align); err != nil {
		return nil, err
	}
	size, err := byteLen(r, n, l.Size)
	if err != nil {
		return nil, err
	}
	b, err := r.Window(size)
	if err != nil {
		return nil, err
	}
	return castSlice[T](b, n, l.Align, s.elem.TypeName())
}

// sliceDeep is a length-prefixed sequence whose elements are written one by one.
type sliceDeep[T, E any] struct {
	elem Codec[T, E]
}

// SliceDeep returns the codec of a sequence of deep-copy elements. Its
// epsilon view is a slice of the element views.
func SliceDeep[T, E any](elem Codec[T, E]) Codec[[]T, []E] {
	return sliceDeep[T, E]{elem: elem}
}

func (s sliceDeep[T, E]) TypeName() string { return "[]" + s.elem.TypeName() }
func (s sliceDeep[T, E]) Copy() Copy       { return Deep }

func (s sliceDeep[T, E]) TypeHash(h *Hasher) {
	h.WriteString("Vec")
	s.elem.TypeHash(h)
}

func (s sliceDeep[T, E]) AlignHash(h *Hasher, _ *uintptr) {
	var local uintptr
	s.elem.AlignHash(h, &local)
}

func (s sliceDeep[T, E]) Serialize(w FieldWriter, v []T) error {
	if err := writeLen(w, len(v)); err != nil {
		return err
	}
	for i := range v {
		if err := WriteField(w, "item", s.elem, v[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s sliceDeep[T, E]) DecodeFull(r ReadWithPos) ([]T, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	v := make([]T, 0, min(n, preallocLimit))
	for range n {
		item, err := s.elem.DecodeFull(r)
		if err != nil {
			return nil, err
		}
		v = append(v, item)
	}
	return v, nil
}

func (s sliceDeep[T, E]) DecodeEps(r *SliceReader) ([]E, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	v := make([]E, 0, min(n, preallocLimit))
	for range n {
		item, err := s.elem.DecodeEps(r)
		if err != nil {
			return nil, err
		}
		v = append(v, item)
	}
	return v, nil
}

// arrayDeep is a fixed-length sequence of deep elements. The length is part
// of the type, so nothing but the elements is written.
type arrayDeep[T, E any] struct {
	elem Codec[T, E]
	n    int
}

// ArrayDeep returns the codec of an n-element array of deep-copy elements,
// carried as a slice. Fixed arrays of zero-copy elements go through ZeroOf.
func ArrayDeep[T, E any](elem Codec[T, E], n int) Codec[[]T, []E] {
	return arrayDeep[T, E]{elem: elem, n: n}
}

func (a arrayDeep[T, E]) TypeName() string {
	return fmt.Sprintf("[%d]%s", a.n, a.elem.TypeName())
}

func (a arrayDeep[T, E]) Copy() Copy { return Deep }

func (a arrayDeep[T, E]) TypeHash(h *Hasher) {
	h.WriteString("[;]")
	a.elem.TypeHash(h)
	h.WriteUint(uint64(a.n))
}

func (a arrayDeep[T, E]) AlignHash(h *Hasher, _ *uintptr) {
	var local uintptr
	a.elem.AlignHash(h, &local)
}

func (a arrayDeep[T, E]) Serialize(w FieldWriter, v []T) error {
	if len(v) != a.n {
		return fmt.Errorf("%w: %s got %d elements", ErrArrayLength, a.TypeName(), len(v))
	}
	for i := range v {
		if err := WriteField(w, "item", a.elem, v[i]); err != nil {
			return err
		}
	}
	return nil
}

func (a arrayDeep[T, E]) DecodeFull(r ReadWithPos) ([]T, error) {
	v := make([]T, a.n)
	for i := range v {
		item, err := a.elem.DecodeFull(r)
		if err != nil {
			return nil, err
		}
		v[i] = item
	}
	return v, nil
}

func (a arrayDeep[T, E]) DecodeEps(r *SliceReader) ([]E, error) {
	v := make([]E, a.n)
	for i := range v {
		item, err := a.elem.DecodeEps(r)
		if err != nil {
			return nil, err
		}
		v[i] = item
	}
	return v, nil
}
