package epsilon

import "fmt"

// VariantCodec is one variant of a tagged union R whose epsilon view is V.
// It is built with Variant.
type VariantCodec[R, V any] interface {
	variantName() string
	info() TypeInfo
	matches(r R) bool
	serialize(w FieldWriter, r R) error
	decodeFull(rd ReadWithPos) (R, error)
	decodeEps(rd *SliceReader) (V, error)
}

type variant[R, V, F, FE any] struct {
	name     string
	c        Codec[F, FE]
	unwrap   func(R) (F, bool)
	wrap     func(F) R
	wrapView func(FE) V
}

// Variant describes a variant carrying a payload of codec c. unwrap extracts
// the payload when a value is this variant; wrap and wrapView rebuild the
// union value and its view. Variants without data use UnitCodec.
func Variant[R, V, F, FE any](name string, c Codec[F, FE], unwrap func(R) (F, bool), wrap func(F) R, wrapView func(FE) V) VariantCodec[R, V] {
	return variant[R, V, F, FE]{name: name, c: c, unwrap: unwrap, wrap: wrap, wrapView: wrapView}
}

func (v variant[R, V, F, FE]) variantName() string { return v.name }
func (v variant[R, V, F, FE]) info() TypeInfo      { return v.c }

func (v variant[R, V, F, FE]) matches(r R) bool {
	_, ok := v.unwrap(r)
	return ok
}

func (v variant[R, V, F, FE]) serialize(w FieldWriter, r R) error {
	f, _ := v.unwrap(r)
	return WriteField(w, v.name, v.c, f)
}

func (v variant[R, V, F, FE]) decodeFull(rd ReadWithPos) (R, error) {
	f, err := v.c.DecodeFull(rd)
	if err != nil {
		var zero R
		return zero, err
	}
	return v.wrap(f), nil
}

func (v variant[R, V, F, FE]) decodeEps(rd *SliceReader) (V, error) {
	fe, err := v.c.DecodeEps(rd)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.wrapView(fe), nil
}

// enum writes the index of the variant as a uint, then its payload.
type enum[R, V any] struct {
	name     string
	variants []VariantCodec[R, V]
}

// Enum returns the codec of a tagged union. Variants are tried in order and
// the first one matching a value is written.
func Enum[R, V any](name string, variants ...VariantCodec[R, V]) Codec[R, V] {
	return enum[R, V]{name: name, variants: variants}
}

func (e enum[R, V]) TypeName() string { return e.name }
func (e enum[R, V]) Copy() Copy       { return Deep }

func (e enum[R, V]) TypeHash(h *Hasher) {
	h.WriteString("enum")
	h.WriteUint(uint64(len(e.variants)))
	for _, v := range e.variants {
		h.WriteString(v.variantName())
		v.info().TypeHash(h)
	}
}

func (e enum[R, V]) AlignHash(h *Hasher, _ *uintptr) {
	for _, v := range e.variants {
		var local uintptr
		v.info().AlignHash(h, &local)
	}
}

func (e enum[R, V]) Serialize(w FieldWriter, r R) error {
	for i, v := range e.variants {
		if !v.matches(r) {
			continue
		}
		if err := WriteField[uint, uint](w, "tag", Uint(), uint(i)); err != nil {
			return err
		}
		return v.serialize(w, r)
	}
	return fmt.Errorf("%w: %s got %T", ErrUnknownVariant, e.name, r)
}

func (e enum[R, V]) readTag(r ReadWithPos) (VariantCodec[R, V], error) {
	tag, err := Uint().DecodeFull(r)
	if err != nil {
		return nil, err
	}
	if tag >= uint(len(e.variants)) {
		return nil, fmt.Errorf("%w: %s has no variant %d", ErrInvalidTag, e.name, tag)
	}
	return e.variants[tag], nil
}

func (e enum[R, V]) DecodeFull(r ReadWithPos) (R, error) {
	v, err := e.readTag(r)
	if err != nil {
		var zero R
		return zero, err
	}
	return v.decodeFull(r)
}

func (e enum[R, V]) DecodeEps(r *SliceReader) (V, error) {
	v, err := e.readTag(r)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.decodeEps(r)
}
