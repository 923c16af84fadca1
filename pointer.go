package epsilon

import "sync/atomic"

// Indirections are erased: only the pointee is written, with the pointee's
// own classification, and nothing on disk records the indirection. A stream
// written through Pointer can be decoded through Atomic, or through the
// pointee codec alone, and vice versa.

type pointer[T, E any] struct {
	elem Codec[T, E]
}

// Pointer returns the codec of a non-nil *T. The epsilon view is the
// pointee's view.
func Pointer[T, E any](elem Codec[T, E]) Codec[*T, E] {
	return pointer[T, E]{elem: elem}
}

func (p pointer[T, E]) TypeName() string                    { return "*" + p.elem.TypeName() }
func (p pointer[T, E]) TypeHash(h *Hasher)                  { p.elem.TypeHash(h) }
func (p pointer[T, E]) AlignHash(h *Hasher, offset *uintptr) { p.elem.AlignHash(h, offset) }
func (p pointer[T, E]) Copy() Copy                          { return Deep }

func (p pointer[T, E]) Serialize(w FieldWriter, v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	return p.elem.Serialize(w, *v)
}

func (p pointer[T, E]) DecodeFull(r ReadWithPos) (*T, error) {
	v, err := p.elem.DecodeFull(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (p pointer[T, E]) DecodeEps(r *SliceReader) (E, error) {
	return p.elem.DecodeEps(r)
}

type atomicPointer[T, E any] struct {
	pointer[T, E]
}

// Atomic returns the codec of a shared *atomic.Pointer[T] holding a non-nil
// value. Decoding yields a fresh atomic.Pointer.
func Atomic[T, E any](elem Codec[T, E]) Codec[*atomic.Pointer[T], E] {
	return atomicPointer[T, E]{pointer[T, E]{elem: elem}}
}

func (a atomicPointer[T, E]) TypeName() string { return "atomic.Pointer[" + a.elem.TypeName() + "]" }

func (a atomicPointer[T, E]) Serialize(w FieldWriter, v *atomic.Pointer[T]) error {
	if v == nil {
		return ErrNilPointer
	}
	return a.pointer.Serialize(w, v.Load())
}

func (a atomicPointer[T, E]) DecodeFull(r ReadWithPos) (*atomic.Pointer[T], error) {
	v, err := a.pointer.DecodeFull(r)
	if err != nil {
		return nil, err
	}
	var p atomic.Pointer[T]
	p.Store(v)
	return &p, nil
}
