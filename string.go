package epsilon

// str writes a string exactly as a sequence of bytes. UTF-8 validity is not
// checked in either direction.
type str struct{}

// String returns the codec of a string. Its epsilon view is a string sharing
// memory with the input buffer.
func String() Codec[string, string] { return str{} }

func (str) TypeName() string   { return "string" }
func (str) TypeHash(h *Hasher) { h.WriteString("String") }
func (str) Copy() Copy         { return Deep }

// AlignHash matches a sequence of uint8.
func (str) AlignHash(h *Hasher, offset *uintptr) {
	SliceZero(Uint8()).AlignHash(h, offset)
}

func (str) Serialize(w FieldWriter, v string) error {
	if err := writeLen(w, len(v)); err != nil {
		return err
	}
	return w.WriteZeroCopy("uint8", 1, stringBytes(v))
}

func (str) DecodeFull(r ReadWithPos) (string, error) {
	n, err := readLen(r)
	if err != nil {
		return "", err
	}
	if err := checkRemaining(r, uint64(n)); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if err := r.ReadExact(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (str) DecodeEps(r *SliceReader) (string, error) {
	n, err := readLen(r)
	if err != nil {
		return "", err
	}
	b, err := r.Window(n)
	if err != nil {
		return "", err
	}
	return castString(b), nil
}

// Bytes returns the codec of a byte string. Its epsilon view aliases the
// input buffer and must not be modified.
func Bytes() Codec[[]byte, []byte] { return SliceZero(Uint8()) }
