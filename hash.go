package epsilon

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hasher folds shape names and layout numbers into a 64-bit fingerprint.
type Hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// WriteString folds s followed by a 0xff separator, so that adjacent names
// cannot run into each other.
func (h *Hasher) WriteString(s string) {
	_, _ = h.d.WriteString(s)
	h.buf[0] = 0xff
	_, _ = h.d.Write(h.buf[:1])
}

// WriteUint folds v as eight native-endian bytes.
func (h *Hasher) WriteUint(v uint64) {
	binary.NativeEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
}

// Sum64 returns the current fingerprint.
func (h *Hasher) Sum64() uint64 { return h.d.Sum64() }

// foldStd folds a field of the given layout placed at *offset, following the
// sequential layout rule, and advances *offset past it.
func (h *Hasher) foldStd(offset *uintptr, l Layout) {
	pad := PadAlignTo(*offset, l.Align)
	h.WriteUint(uint64(pad))
	h.WriteUint(uint64(l.Size))
	*offset += pad + l.Size
}

// TypeHash returns the structural fingerprint of t.
func TypeHash(t TypeInfo) uint64 {
	h := NewHasher()
	t.TypeHash(h)
	return h.Sum64()
}

// AlignHash returns the layout fingerprint of t, laid out from offset 0.
func AlignHash(t TypeInfo) uint64 {
	h := NewHasher()
	var offset uintptr
	t.AlignHash(h, &offset)
	return h.Sum64()
}
