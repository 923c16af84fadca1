package epsilon

import (
	"io"

	"golang.org/x/exp/constraints"
)

const BUFFER_SIZE = 4096

// MemoryAlignment is the alignment of every heap backing store. It covers the
// native alignment of any type the codec can reinterpret.
const MemoryAlignment = 64

// empty is only ever read from.
var empty [BUFFER_SIZE]byte

// ZeroReader is an io.Reader that reads an infinite stream of zero bytes.
var ZeroReader io.Reader = zeroReader{}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func Ptr[T any](v T) *T { return &v } // Ptr makes test setup of optional values cleaner.

// PadAlignTo returns the smallest non-negative p such that (v + p) is a multiple
// of align. align must be a power of two.
func PadAlignTo[T constraints.Integer](v, align T) T { return -v & (align - 1) }

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// Discard consumes exactly n bytes from r.
func Discard(r io.Reader, n int64) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 {
		return 0, ErrDiscardNegative
	}
	bp := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(bp)
	var total int64
	for total < n {
		chunk := (*bp)[:min(n-total, CHUNK_SIZE)]
		skip, err := io.ReadFull(r, chunk)
		total += int64(skip)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
