package epsilon

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Flags tune the mapped backing stores.
type Flags uint32

const (
	// Sequential advises the kernel that the mapping will be read sequentially.
	Sequential Flags = 1 << iota
	// RandomAccess advises the kernel that the mapping will be read randomly.
	RandomAccess
	// TransparentHugePages asks for transparent huge pages where supported.
	TransparentHugePages
)

// Backing is the kind of memory a Case owns.
type Backing uint8

const (
	BackingNone   Backing = iota // the view lives in ordinary memory
	BackingHeap                  // an aligned heap buffer
	BackingMapped                // a memory-mapped region
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingMapped:
		return "mapped"
	}
	return "none"
}

// Case couples an epsilon-copy view with the memory it borrows from. The
// Case is the sole owner of that memory: the view returned by Uncase is valid
// until Close.
type Case[E any] struct {
	view    E
	backing Backing
	store   []byte // the bytes the view was decoded from
	region  []byte // the whole mapping, when backing is BackingMapped
	log     *slog.Logger
}

// Encase wraps a value that needs no backing store.
func Encase[E any](v E) *Case[E] {
	return &Case[E]{view: v, backing: BackingNone}
}

// Uncase returns the view.
func (c *Case[E]) Uncase() E { return c.view }

// Backing returns the kind of memory owned by the Case.
func (c *Case[E]) Backing() Backing { return c.backing }

// Bytes returns the serialized bytes backing the view. They must not be modified.
func (c *Case[E]) Bytes() []byte { return c.store }

// Close releases the backing store. The view, and anything obtained from it,
// must not be used afterwards.
func (c *Case[E]) Close() error {
	var zero E
	c.view = zero
	c.store = nil
	if c.backing != BackingMapped || c.region == nil {
		c.backing = BackingNone
		return nil
	}
	region := c.region
	c.region = nil
	c.backing = BackingNone
	if c.log != nil {
		c.log.Debug("epsilon: unmapping backing store", "size", len(region))
	}
	return munmap(region)
}

// decodeInto is the second phase of construction: the store is at its final
// address, so the view can borrow from it.
func decodeInto[T, E any](c Codec[T, E], cs *Case[E]) (*Case[E], error) {
	view, err := DecodeEps(c, cs.store)
	if err != nil {
		_ = cs.Close()
		return nil, err
	}
	cs.view = view
	return cs, nil
}

// ReadHeap reads size bytes from r into a heap buffer aligned to
// MemoryAlignment and decodes a view borrowing from it.
func ReadHeap[T, E any](c Codec[T, E], r io.Reader, size int, opts ...Option) (*Case[E], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrRead, size)
	}
	// The capacity is rounded up and the tail stays zero.
	buf := alignedAlloc(Roundup(size, MemoryAlignment))
	if _, err := io.ReadFull(r, buf[:size]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	cfg.logger.Debug("epsilon: heap backing store", "type", c.TypeName(), "size", size)
	return decodeInto(c, &Case[E]{backing: BackingHeap, store: buf[:size], log: cfg.logger})
}

func openSized(path string) (*os.File, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	return f, int(st.Size()), nil
}

// LoadHeap reads the file at path into a heap backing store.
func LoadHeap[T, E any](c Codec[T, E], path string, opts ...Option) (*Case[E], error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadHeap(c, f, size, opts...)
}

// ReadMapped reads size bytes from r into an anonymous memory mapping, makes
// it read-only, and decodes a view borrowing from it.
func ReadMapped[T, E any](c Codec[T, E], r io.Reader, size int, opts ...Option) (*Case[E], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	region, err := mmapAnon(size, cfg.flags)
	if err != nil {
		return nil, err
	}
	cs := &Case[E]{backing: BackingMapped, region: region, store: region[:size], log: cfg.logger}
	if _, err := io.ReadFull(r, cs.store); err != nil {
		_ = cs.Close()
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if err := protectReadOnly(region); err != nil {
		_ = cs.Close()
		return nil, err
	}
	cfg.logger.Debug("epsilon: anonymous mapped backing store", "type", c.TypeName(), "size", size)
	return decodeInto(c, cs)
}

// LoadMapped reads the file at path into an anonymous mapping.
func LoadMapped[T, E any](c Codec[T, E], path string, opts ...Option) (*Case[E], error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMapped(c, f, size, opts...)
}

// MapDirect maps the file at path read-only and decodes a view borrowing
// from the mapping. Nothing is copied: pages are loaded on demand.
func MapDirect[T, E any](c Codec[T, E], path string, opts ...Option) (*Case[E], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	region, err := mmapFile(f, size, cfg.flags)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("epsilon: file mapped backing store", "type", c.TypeName(), "path", path, "size", size)
	return decodeInto(c, &Case[E]{backing: BackingMapped, region: region, store: region[:size], log: cfg.logger})
}
