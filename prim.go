package epsilon

import "unsafe"

// prim is the zero-copy codec of a fixed-width scalar. Its epsilon view is
// the value itself.
type prim[T any] struct{ name string }

func (p prim[T]) TypeName() string   { return p.name }
func (p prim[T]) TypeHash(h *Hasher) { h.WriteString(p.name) }
func (p prim[T]) Copy() Copy         { return Zero }
func (prim[T]) zeroCopy()            {}
func (prim[T]) padding() []span      { return nil }

func (p prim[T]) Layout() Layout {
	var z T
	return Layout{Size: unsafe.Sizeof(z), Align: unsafe.Alignof(z)}
}

func (p prim[T]) AlignHash(h *Hasher, offset *uintptr) {
	h.foldStd(offset, p.Layout())
}

func (p prim[T]) Serialize(w FieldWriter, v T) error {
	return w.WriteZeroCopy(p.name, p.Layout().Align, bytesOf(&v))
}

func (p prim[T]) DecodeFull(r ReadWithPos) (T, error) {
	var v T
	if err := r.SkipPadding(p.Layout().Align); err != nil {
		return v, err
	}
	err := r.ReadExact(bytesOf(&v))
	return v, err
}

func (p prim[T]) DecodeEps(r *SliceReader) (T, error) {
	return p.DecodeFull(r)
}

// boolean decodes any nonzero byte as true, so a corrupted stream never
// yields a bool that is neither true nor false.
type boolean struct{ prim[bool] }

func (boolean) DecodeFull(r ReadWithPos) (bool, error) {
	b, err := Uint8().DecodeFull(r)
	return b != 0, err
}

func (b boolean) DecodeEps(r *SliceReader) (bool, error) { return b.DecodeFull(r) }

// Unit is the zero-size value.
type Unit = struct{}

func Bool() ZeroCodec[bool, bool]                   { return boolean{prim[bool]{"bool"}} }
func Int() ZeroCodec[int, int]                      { return prim[int]{"int"} }
func Int8() ZeroCodec[int8, int8]                   { return prim[int8]{"int8"} }
func Int16() ZeroCodec[int16, int16]                { return prim[int16]{"int16"} }
func Int32() ZeroCodec[int32, int32]                { return prim[int32]{"int32"} }
func Int64() ZeroCodec[int64, int64]                { return prim[int64]{"int64"} }
func Uint() ZeroCodec[uint, uint]                   { return prim[uint]{"uint"} }
func Uint8() ZeroCodec[uint8, uint8]                { return prim[uint8]{"uint8"} }
func Uint16() ZeroCodec[uint16, uint16]             { return prim[uint16]{"uint16"} }
func Uint32() ZeroCodec[uint32, uint32]             { return prim[uint32]{"uint32"} }
func Uint64() ZeroCodec[uint64, uint64]             { return prim[uint64]{"uint64"} }
func Uintptr() ZeroCodec[uintptr, uintptr]          { return prim[uintptr]{"uintptr"} }
func Float32() ZeroCodec[float32, float32]          { return prim[float32]{"float32"} }
func Float64() ZeroCodec[float64, float64]          { return prim[float64]{"float64"} }
func Complex64() ZeroCodec[complex64, complex64]    { return prim[complex64]{"complex64"} }
func Complex128() ZeroCodec[complex128, complex128] { return prim[complex128]{"complex128"} }

// Rune is a Unicode code point. It hashes as "char", differently from Int32.
// Go cannot tell rune from int32 by reflection, so inside ZeroOf a rune is
// an int32: a stream written with Rune must be decoded with Rune.
func Rune() ZeroCodec[rune, rune] { return prim[rune]{"char"} }

// UnitCodec writes nothing.
func UnitCodec() ZeroCodec[Unit, Unit] { return prim[Unit]{"()"} }
