package epsilon

import "fmt"

type option[T, E any] struct {
	elem Codec[T, E]
}

// Optional returns the codec of an optional value, nil meaning absent. A tag
// byte, 0 or 1, precedes the payload.
func Optional[T, E any](elem Codec[T, E]) Codec[*T, *E] {
	return option[T, E]{elem: elem}
}

func (o option[T, E]) TypeName() string { return "Option[" + o.elem.TypeName() + "]" }
func (o option[T, E]) Copy() Copy       { return Deep }

func (o option[T, E]) TypeHash(h *Hasher) {
	h.WriteString("Option")
	o.elem.TypeHash(h)
}

func (o option[T, E]) AlignHash(h *Hasher, _ *uintptr) {
	var local uintptr
	o.elem.AlignHash(h, &local)
}

func (o option[T, E]) Serialize(w FieldWriter, v *T) error {
	if v == nil {
		return WriteField[uint8, uint8](w, "tag", Uint8(), 0)
	}
	if err := WriteField[uint8, uint8](w, "tag", Uint8(), 1); err != nil {
		return err
	}
	return WriteField(w, "some", o.elem, *v)
}

func readTag(r ReadWithPos) (bool, error) {
	tag, err := Uint8().DecodeFull(r)
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: option tag %d at offset %d", ErrInvalidTag, tag, r.Pos()-1)
}

func (o option[T, E]) DecodeFull(r ReadWithPos) (*T, error) {
	some, err := readTag(r)
	if err != nil || !some {
		return nil, err
	}
	v, err := o.elem.DecodeFull(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (o option[T, E]) DecodeEps(r *SliceReader) (*E, error) {
	some, err := readTag(r)
	if err != nil || !some {
		return nil, err
	}
	v, err := o.elem.DecodeEps(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
