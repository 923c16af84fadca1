package epsilon

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// zeroInfo is everything the codec needs to know about a bit-copyable type,
// derived once by reflection.
type zeroInfo struct {
	layout Layout
	pads   []span // padding inside the memory image, cleared on write
	err    error  // non-nil if the type is not bit-copyable
}

// zeroInfoCache avoids walking the same type by reflection on every call.
// Using a concurrent map makes it safe for concurrent codecs.
var zeroInfoCache = xsync.NewMap[reflect.Type, *zeroInfo]()

type tuple interface{ isTuple() }

var tupleType = reflect.TypeFor[tuple]()

// Tuple2 to Tuple4 are fixed tuples. With bit-copyable members they are
// zero-copy through ZeroOf and hash as tuples rather than as records.
type (
	Tuple2[A, B any] struct {
		F0 A
		F1 B
	}
	Tuple3[A, B, C any] struct {
		F0 A
		F1 B
		F2 C
	}
	Tuple4[A, B, C, D any] struct {
		F0 A
		F1 B
		F2 C
		F3 D
	}
)

func (Tuple2[A, B]) isTuple()       {}
func (Tuple3[A, B, C]) isTuple()    {}
func (Tuple4[A, B, C, D]) isTuple() {}

func loadZeroInfo(t reflect.Type) *zeroInfo {
	if zi, ok := zeroInfoCache.Load(t); ok {
		return zi
	}
	zi := &zeroInfo{
		layout: Layout{Size: t.Size(), Align: uintptr(t.Align())},
		err:    checkBitCopy(t),
	}
	if zi.err == nil {
		zi.pads = paddingOf(t, 0, nil)
	}
	zeroInfoCache.Store(t, zi)
	return zi
}

// checkBitCopy rejects any type holding references or runtime-sized data.
func checkBitCopy(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkBitCopy(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if err := checkBitCopy(t.Field(i).Type); err != nil {
				return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%s is a %s", t, t.Kind())
}

// paddingOf appends the padding byte ranges of t, placed at base, to out.
func paddingOf(t reflect.Type, base uintptr, out []span) []span {
	switch t.Kind() {
	case reflect.Array:
		inner := paddingOf(t.Elem(), 0, nil)
		if len(inner) == 0 {
			return out
		}
		size := t.Elem().Size()
		for i := range uintptr(t.Len()) {
			for _, p := range inner {
				out = append(out, span{lo: base + i*size + p.lo, hi: base + i*size + p.hi})
			}
		}
	case reflect.Struct:
		var end uintptr
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Offset > end {
				out = append(out, span{lo: base + end, hi: base + f.Offset})
			}
			out = paddingOf(f.Type, base+f.Offset, out)
			end = f.Offset + f.Type.Size()
		}
		if t.Size() > end {
			out = append(out, span{lo: base + end, hi: base + t.Size()})
		}
	}
	return out
}

func hashShape(h *Hasher, t reflect.Type) {
	switch t.Kind() {
	case reflect.Array:
		h.WriteString("[;]")
		hashShape(h, t.Elem())
		h.WriteUint(uint64(t.Len()))
	case reflect.Struct:
		if t.Implements(tupleType) {
			h.WriteString("()")
		} else {
			h.WriteString("struct")
		}
		h.WriteUint(uint64(t.NumField()))
		for i := range t.NumField() {
			hashShape(h, t.Field(i).Type)
		}
	default:
		h.WriteString(t.Kind().String())
	}
}

// alignInner folds the layout of t placed at *offset, then the inner layout
// of its fields (or element) from a local offset of zero.
func alignInner(h *Hasher, t reflect.Type, offset *uintptr) {
	h.foldStd(offset, Layout{Size: t.Size(), Align: uintptr(t.Align())})
	switch t.Kind() {
	case reflect.Array:
		var local uintptr
		alignInner(h, t.Elem(), &local)
	case reflect.Struct:
		var local uintptr
		for i := range t.NumField() {
			alignInner(h, t.Field(i).Type, &local)
		}
	}
}

// fixed is the zero-copy codec of a bit-copyable Go type. Its epsilon view
// is a pointer into the input buffer.
type fixed[T any] struct {
	rt reflect.Type
}

// ZeroOf returns the zero-copy codec of T: a scalar, a fixed array, a struct
// or a tuple whose members are all bit-copyable.
//
// Using the codec of a T that holds pointers, slices, strings, maps,
// interfaces, channels or funcs panics: declaring such a type zero-copy is a
// programming error, not a data condition.
func ZeroOf[T any]() ZeroCodec[T, *T] {
	return fixed[T]{rt: reflect.TypeFor[T]()}
}

func (f fixed[T]) info() *zeroInfo {
	zi := loadZeroInfo(f.rt)
	if zi.err != nil {
		panic(fmt.Sprintf("epsilon: %s declared zero-copy but is not bit-copyable: %v", f.rt, zi.err))
	}
	return zi
}

func (f fixed[T]) TypeName() string { return f.rt.String() }
func (f fixed[T]) Copy() Copy       { return Zero }
func (f fixed[T]) Layout() Layout   { return f.info().layout }
func (f fixed[T]) padding() []span  { return f.info().pads }
func (fixed[T]) zeroCopy()          {}

func (f fixed[T]) TypeHash(h *Hasher) {
	f.info()
	hashShape(h, f.rt)
}

func (f fixed[T]) AlignHash(h *Hasher, offset *uintptr) {
	f.info()
	alignInner(h, f.rt, offset)
}

func (f fixed[T]) Serialize(w FieldWriter, v T) error {
	return writeZeroValue[T, *T](w, f, v)
}

func (f fixed[T]) DecodeFull(r ReadWithPos) (T, error) {
	var v T
	if err := r.SkipPadding(f.info().layout.Align); err != nil {
		return v, err
	}
	err := r.ReadExact(bytesOf(&v))
	return v, err
}

func (f fixed[T]) DecodeEps(r *SliceReader) (*T, error) {
	zi := f.info()
	if err := r.SkipPadding(zi.layout.Align); err != nil {
		return nil, err
	}
	b, err := r.Window(int(zi.layout.Size))
	if err != nil {
		return nil, err
	}
	return castRef[T](b, zi.layout.Align, f.rt.String())
}
