//go:build linux || darwin || freebsd

package epsilon

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func advise(region []byte, flags Flags) error {
	if flags&Sequential != 0 {
		if err := unix.Madvise(region, unix.MADV_SEQUENTIAL); err != nil {
			return fmt.Errorf("epsilon: madvise sequential: %w", err)
		}
	}
	if flags&RandomAccess != 0 {
		if err := unix.Madvise(region, unix.MADV_RANDOM); err != nil {
			return fmt.Errorf("epsilon: madvise random: %w", err)
		}
	}
	if flags&TransparentHugePages != 0 {
		return adviseHugePages(region)
	}
	return nil
}

// mmapAnon maps n bytes of private anonymous memory, readable and writable.
func mmapAnon(n int, flags Flags) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	region, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("epsilon: mmap %d anonymous bytes: %w", n, err)
	}
	if err := advise(region, flags); err != nil {
		_ = unix.Munmap(region)
		return nil, err
	}
	return region, nil
}

// mmapFile maps the first n bytes of f, private and read-only.
func mmapFile(f *os.File, n int, flags Flags) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	region, err := unix.Mmap(int(f.Fd()), 0, n, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %s: %w", ErrFileOpen, f.Name(), err)
	}
	if err := advise(region, flags); err != nil {
		_ = unix.Munmap(region)
		return nil, err
	}
	return region, nil
}

func protectReadOnly(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	if err := unix.Mprotect(region, unix.PROT_READ); err != nil {
		return fmt.Errorf("epsilon: mprotect: %w", err)
	}
	return nil
}

func munmap(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	return unix.Munmap(region)
}
