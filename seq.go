package epsilon

import (
	"fmt"
	"iter"
)

// Sequences are written exactly like slices, from an iterator whose length is
// known in advance. They decode as slices: full-copy decoding yields an
// iterator over an owned slice, epsilon-copy decoding the slice view itself.
// A stream written through SeqZero or SeqDeep can be read with SliceZero or
// SliceDeep and vice versa.

func values[T any](v []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, x := range v {
			if !yield(x) {
				return
			}
		}
	}
}

// eachOf calls each on every element yielded by seq, failing if seq yields
// more or fewer than n.
func eachOf[T any](name string, seq iter.Seq[T], n int, each func(T) error) error {
	var got int
	if seq == nil {
		seq = func(func(T) bool) {}
	}
	for x := range seq {
		if got == n {
			return fmt.Errorf("%w: %s declared %d elements, yielded more", ErrIteratorLength, name, n)
		}
		got++
		if err := each(x); err != nil {
			return err
		}
	}
	if got != n {
		return fmt.Errorf("%w: %s declared %d elements, yielded %d", ErrIteratorLength, name, n, got)
	}
	return nil
}

type seqZero[T, E any] struct {
	sliceZero[T, E]
	n int
}

// SeqZero returns the codec of n zero-copy elements produced by an iterator.
// Each element is written in place; nothing is buffered.
func SeqZero[T, E any](elem ZeroCodec[T, E], n int) Codec[iter.Seq[T], []T] {
	return seqZero[T, E]{sliceZero: sliceZero[T, E]{elem: elem}, n: n}
}

func (s seqZero[T, E]) TypeName() string { return "iter.Seq[" + s.elem.TypeName() + "]" }

func (s seqZero[T, E]) Serialize(w FieldWriter, seq iter.Seq[T]) error {
	if err := writeLen(w, s.n); err != nil {
		return err
	}
	if err := w.WritePadding(s.elem.Layout().Align); err != nil {
		return err
	}
	return eachOf(s.TypeName(), seq, s.n, func(x T) error {
		return writeZeroValue(w, s.elem, x)
	})
}

func (s seqZero[T, E]) DecodeFull(r ReadWithPos) (iter.Seq[T], error) {
	v, err := s.sliceZero.DecodeFull(r)
	if err != nil {
		return nil, err
	}
	return values(v), nil
}

type seqDeep[T, E any] struct {
	sliceDeep[T, E]
	n int
}

// SeqDeep returns the codec of n deep-copy elements produced by an iterator.
func SeqDeep[T, E any](elem Codec[T, E], n int) Codec[iter.Seq[T], []E] {
	return seqDeep[T, E]{sliceDeep: sliceDeep[T, E]{elem: elem}, n: n}
}

func (s seqDeep[T, E]) TypeName() string { return "iter.Seq[" + s.elem.TypeName() + "]" }

func (s seqDeep[T, E]) Serialize(w FieldWriter, seq iter.Seq[T]) error {
	if err := writeLen(w, s.n); err != nil {
		return err
	}
	return eachOf(s.TypeName(), seq, s.n, func(x T) error {
		return WriteField(w, "item", s.elem, x)
	})
}

func (s seqDeep[T, E]) DecodeFull(r ReadWithPos) (iter.Seq[T], error) {
	v, err := s.sliceDeep.DecodeFull(r)
	if err != nil {
		return nil, err
	}
	return values(v), nil
}
