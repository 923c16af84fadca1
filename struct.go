package epsilon

import (
	"fmt"
	"sync"
)

// FieldCodec is one field of a deep record R whose epsilon view is V.
// It is built with Field.
type FieldCodec[R, V any] interface {
	fieldName() string
	info() TypeInfo
	serialize(w FieldWriter, r *R) error
	decodeFull(rd ReadWithPos, r *R) error
	decodeEps(rd *SliceReader, v *V) error
}

type field[R, V, F, FE any] struct {
	name string
	c    Codec[F, FE]
	get  func(*R) *F
	view func(*V) *FE
}

// Field describes a record field: its name (diagnostics only), its codec, and
// how to reach it in the record and in the record's view.
func Field[R, V, F, FE any](name string, c Codec[F, FE], get func(*R) *F, view func(*V) *FE) FieldCodec[R, V] {
	return field[R, V, F, FE]{name: name, c: c, get: get, view: view}
}

func (f field[R, V, F, FE]) fieldName() string { return f.name }
func (f field[R, V, F, FE]) info() TypeInfo    { return f.c }

func (f field[R, V, F, FE]) serialize(w FieldWriter, r *R) error {
	return WriteField(w, f.name, f.c, *f.get(r))
}

func (f field[R, V, F, FE]) decodeFull(rd ReadWithPos, r *R) error {
	v, err := f.c.DecodeFull(rd)
	if err != nil {
		return err
	}
	*f.get(r) = v
	return nil
}

func (f field[R, V, F, FE]) decodeEps(rd *SliceReader, v *V) error {
	fe, err := f.c.DecodeEps(rd)
	if err != nil {
		return err
	}
	*f.view(v) = fe
	return nil
}

// record is a deep aggregate: its fields are written in declaration order
// with no padding of their own. The record is opaque to its container: its
// layout is folded from a local offset of zero.
type record[R, V any] struct {
	name   string
	shape  func(h *Hasher) // folds the shape tag; nil for plain records
	fields []FieldCodec[R, V]
	advise *sync.Once // nil when the advisory does not apply
}

// Struct returns the codec of a deep record. This is the glue a code
// generator would emit for a record type: one Field per member, in
// declaration order.
//
// If every field turns out to be zero-copy, serialization logs a one-time
// advisory that the record could be bit-copied through ZeroOf instead.
func Struct[R, V any](name string, fields ...FieldCodec[R, V]) Codec[R, V] {
	return &record[R, V]{name: name, fields: fields, advise: new(sync.Once)}
}

func (s *record[R, V]) TypeName() string { return s.name }
func (s *record[R, V]) Copy() Copy       { return Deep }

func (s *record[R, V]) TypeHash(h *Hasher) {
	if s.shape != nil {
		s.shape(h)
	} else {
		h.WriteString("struct")
	}
	h.WriteUint(uint64(len(s.fields)))
	for _, f := range s.fields {
		f.info().TypeHash(h)
	}
}

func (s *record[R, V]) AlignHash(h *Hasher, _ *uintptr) {
	var local uintptr
	for _, f := range s.fields {
		f.info().AlignHash(h, &local)
	}
}

func (s *record[R, V]) allZero() bool {
	for _, f := range s.fields {
		if f.info().Copy() != Zero {
			return false
		}
	}
	return len(s.fields) > 0
}

func (s *record[R, V]) Serialize(w FieldWriter, v R) error {
	if s.advise != nil {
		s.advise.Do(func() {
			if s.allZero() {
				w.Logger().Warn("epsilon: deep record has only zero-copy fields; declaring it zero-copy would be faster",
					"type", s.name)
			}
		})
	}
	for _, f := range s.fields {
		if err := f.serialize(w, &v); err != nil {
			return err
		}
	}
	return nil
}

func (s *record[R, V]) DecodeFull(r ReadWithPos) (R, error) {
	var v R
	for _, f := range s.fields {
		if err := f.decodeFull(r, &v); err != nil {
			return v, fmt.Errorf("%s.%s: %w", s.name, f.fieldName(), err)
		}
	}
	return v, nil
}

func (s *record[R, V]) DecodeEps(r *SliceReader) (V, error) {
	var v V
	for _, f := range s.fields {
		if err := f.decodeEps(r, &v); err != nil {
			return v, fmt.Errorf("%s.%s: %w", s.name, f.fieldName(), err)
		}
	}
	return v, nil
}
