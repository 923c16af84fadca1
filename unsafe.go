package epsilon

import (
	"fmt"
	"unsafe"
)

// This file holds the only conversions between byte windows and typed memory.
//
// Views built from castRef and castSlice alias the window they were cut from.
// Every container view in the package is either one of these, a string or
// []byte aliasing the window, or a composite of such views (slices of views,
// structs of views, pointers to views). A view valid for a buffer is therefore
// valid for any shorter borrow of the same buffer, which is what Case relies
// on when it hands out the view for as long as it keeps the buffer alive.

// bytesOf returns the memory image of *p.
func bytesOf[T any](p *T) []byte {
	n := unsafe.Sizeof(*p)
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// sliceBytes returns the memory image of the elements of s.
func sliceBytes[T any](s []T) []byte {
	var z T
	n := uintptr(len(s)) * unsafe.Sizeof(z)
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n)
}

func checkAligned(b []byte, align uintptr, typeName string) error {
	if align <= 1 || len(b) == 0 {
		return nil
	}
	if addr := uintptr(unsafe.Pointer(unsafe.SliceData(b))); addr%align != 0 {
		return fmt.Errorf("%w: %s at address 0x%x needs alignment %d", ErrAlignment, typeName, addr, align)
	}
	return nil
}

// castRef reinterprets b, which must be exactly the size of T, as a *T.
func castRef[T any](b []byte, align uintptr, typeName string) (*T, error) {
	var z T
	if unsafe.Sizeof(z) == 0 {
		return new(T), nil
	}
	if err := checkAligned(b, align, typeName); err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// castSlice reinterprets b, which must hold exactly n values of T, as a []T.
func castSlice[T any](b []byte, n int, align uintptr, typeName string) ([]T, error) {
	var z T
	if unsafe.Sizeof(z) == 0 || n == 0 {
		return make([]T, n), nil
	}
	if err := checkAligned(b, align, typeName); err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// castString reinterprets b as a string without copying.
func castString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// stringBytes returns the bytes of s without copying. They must not be modified.
func stringBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
