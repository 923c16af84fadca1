package epsilon

import "sync"

const CHUNK_SIZE = 32 * 1024

// chunkPool holds scratch buffers for discarding large runs of bytes and for
// scrubbing padded zero-copy slices.
var chunkPool = sync.Pool{
	New: func() any {
		b := make([]byte, CHUNK_SIZE)
		return &b
	},
}
